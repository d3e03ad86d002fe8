package models

// DailyViewCount is one calendar-date bucket of recorded views.
type DailyViewCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// PropertyViewAnalytics is the windowed view report for a single property.
// TotalViews comes from the denormalized counter and is all-time; the
// remaining fields cover the analyzed window only.
type PropertyViewAnalytics struct {
	TotalViews        int64            `json:"total_views"`
	RecentViews       int64            `json:"recent_views"`
	AverageDailyViews int64            `json:"average_daily_views"`
	PeakDay           string           `json:"peak_day"`
	PeakViews         int64            `json:"peak_views"`
	ViewsByDay        map[string]int64 `json:"views_by_day"`
	DaysAnalyzed      int              `json:"days_analyzed"`
}

// UserViewAnalytics aggregates view activity across all of a user's
// properties. UniqueViewers counts the user's properties with at least one
// view in the window, not distinct visitor identities; the name is kept for
// compatibility with the existing dashboard payload.
type UserViewAnalytics struct {
	TotalViews              int64 `json:"totalViews"`
	RecentViews             int64 `json:"recentViews"`
	UniqueViewers           int64 `json:"uniqueViewers"`
	AverageViewsPerProperty int64 `json:"averageViewsPerProperty"`
	PropertyCount           int64 `json:"propertyCount"`
}

// TourStatistics is the per-agent tour pipeline rollup.
type TourStatistics struct {
	TotalTours     int64 `json:"total_tours"`
	PendingTours   int64 `json:"pending_tours"`
	ConfirmedTours int64 `json:"confirmed_tours"`
	CompletedTours int64 `json:"completed_tours"`
	CancelledTours int64 `json:"cancelled_tours"`
	NoShowTours    int64 `json:"no_show_tours"`
	UpcomingTours  int64 `json:"upcoming_tours"`
	ConversionRate int64 `json:"conversion_rate"`
}
