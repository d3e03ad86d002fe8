// Package metrics exposes the server's prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ViewsRecorded counts property views that resulted in a new row.
	ViewsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "estateview_views_recorded_total",
		Help: "Number of unique property views recorded.",
	})

	// DuplicateViews counts view requests deduplicated against an existing row.
	DuplicateViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "estateview_views_duplicate_total",
		Help: "Number of view requests that were already recorded.",
	})

	// TourTransitions counts tour status changes by target status.
	TourTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estateview_tour_transitions_total",
		Help: "Number of tour status transitions by target status.",
	}, []string{"status"})
)
