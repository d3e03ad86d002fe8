package tours

import (
	"fmt"
	"math"
	"time"

	"estateview/server/internal/models"
)

// StatisticsStore is the storage surface the rollup reads from.
type StatisticsStore interface {
	TourStatusCounts(ownerID string) (map[string]int64, error)
	UpcomingTourCount(ownerID string, now time.Time) (int64, error)
}

// StatisticsAggregator rolls up an agent's tour counts by status.
type StatisticsAggregator struct {
	store StatisticsStore
	now   func() time.Time
}

func NewStatisticsAggregator(store StatisticsStore) *StatisticsAggregator {
	return &StatisticsAggregator{
		store: store,
		now:   time.Now,
	}
}

// Statistics returns the agent's tour pipeline rollup. The conversion rate
// is the completed share of all tours, as a rounded percentage.
func (a *StatisticsAggregator) Statistics(userID string) (*models.TourStatistics, error) {
	counts, err := a.store.TourStatusCounts(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tours: %w", err)
	}

	upcoming, err := a.store.UpcomingTourCount(userID, a.now())
	if err != nil {
		return nil, fmt.Errorf("failed to count upcoming tours: %w", err)
	}

	stats := &models.TourStatistics{
		PendingTours:   counts[models.TourStatusPending],
		ConfirmedTours: counts[models.TourStatusConfirmed],
		CompletedTours: counts[models.TourStatusCompleted],
		CancelledTours: counts[models.TourStatusCancelled],
		NoShowTours:    counts[models.TourStatusNoShow],
		UpcomingTours:  upcoming,
	}
	for _, count := range counts {
		stats.TotalTours += count
	}
	if stats.TotalTours > 0 {
		stats.ConversionRate = int64(math.Round(float64(stats.CompletedTours) / float64(stats.TotalTours) * 100))
	}

	return stats, nil
}
