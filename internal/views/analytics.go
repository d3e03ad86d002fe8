package views

import (
	"fmt"
	"math"
	"time"

	"estateview/server/internal/models"

	"github.com/sirupsen/logrus"
)

// DefaultWindowDays is the analysis window used when the caller does not ask
// for a specific one.
const DefaultWindowDays = 30

// AnalyticsStore is the storage surface the aggregator reads from.
type AnalyticsStore interface {
	PropertyViewCount(propertyID string) (int64, bool, error)
	DailyViewCounts(propertyID string, since time.Time) ([]models.DailyViewCount, error)
	UserViewTotals(userID string) (totalViews, propertyCount int64, err error)
	UserRecentViewCounts(userID string, since time.Time) (recentViews, activeProperties int64, err error)
}

// Aggregator computes windowed view statistics from the raw view log plus
// the denormalized counters. All date bucketing is UTC.
type Aggregator struct {
	store  AnalyticsStore
	logger *logrus.Logger
	now    func() time.Time
}

func NewAggregator(store AnalyticsStore, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// PropertyAnalytics reports total and windowed view counts for one property.
// daysBack <= 0 falls back to the default window.
func (a *Aggregator) PropertyAnalytics(propertyID string, daysBack int) (*models.PropertyViewAnalytics, error) {
	if daysBack <= 0 {
		daysBack = DefaultWindowDays
	}

	totalViews, found, err := a.store.PropertyViewCount(propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to read view counter: %w", err)
	}
	if !found {
		return nil, ErrPropertyNotFound
	}

	since := a.now().AddDate(0, 0, -daysBack)
	daily, err := a.store.DailyViewCounts(propertyID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to read view log: %w", err)
	}

	analytics := &models.PropertyViewAnalytics{
		TotalViews:   totalViews,
		ViewsByDay:   make(map[string]int64, len(daily)),
		DaysAnalyzed: daysBack,
	}

	// Rows arrive oldest first, so on equal counts the earliest day stays
	// the peak.
	for _, day := range daily {
		analytics.RecentViews += day.Count
		analytics.ViewsByDay[day.Date] = day.Count
		if day.Count > analytics.PeakViews {
			analytics.PeakViews = day.Count
			analytics.PeakDay = day.Date
		}
	}

	if len(daily) > 0 {
		analytics.AverageDailyViews = int64(math.Round(float64(analytics.RecentViews) / float64(len(daily))))
	}

	return analytics, nil
}

// UserAnalytics aggregates view activity across all of a user's properties
// over the default window.
func (a *Aggregator) UserAnalytics(userID string) (*models.UserViewAnalytics, error) {
	totalViews, propertyCount, err := a.store.UserViewTotals(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read property totals: %w", err)
	}

	since := a.now().AddDate(0, 0, -DefaultWindowDays)
	recentViews, activeProperties, err := a.store.UserRecentViewCounts(userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to read recent views: %w", err)
	}

	analytics := &models.UserViewAnalytics{
		TotalViews:    totalViews,
		RecentViews:   recentViews,
		UniqueViewers: activeProperties,
		PropertyCount: propertyCount,
	}
	if propertyCount > 0 {
		analytics.AverageViewsPerProperty = int64(math.Round(float64(totalViews) / float64(propertyCount)))
	}

	return analytics, nil
}
