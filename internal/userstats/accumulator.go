// Package userstats keeps the denormalized per-user dashboard counters in
// step with the entities they summarize.
package userstats

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Stats field names accepted by ApplyDelta, as used by the dashboard payload.
const (
	FieldTotalProperties   = "totalProperties"
	FieldPropertiesForSale = "propertiesForSale"
	FieldPropertiesForRent = "propertiesForRent"
	FieldTotalCustomers    = "totalCustomers"
	FieldTotalRevenue      = "totalRevenue"
	FieldMonthlyRevenue    = "monthlyRevenue"
	FieldTotalLeads        = "totalLeads"
	FieldActiveLeads       = "activeLeads"
	FieldConvertedLeads    = "convertedLeads"
)

// columns maps stats field names to their counter columns. totalCities is
// deliberately absent: it is never delta-adjusted, only recomputed.
var columns = map[string]string{
	FieldTotalProperties:   "total_properties",
	FieldPropertiesForSale: "properties_for_sale",
	FieldPropertiesForRent: "properties_for_rent",
	FieldTotalCustomers:    "total_customers",
	FieldTotalRevenue:      "total_revenue",
	FieldMonthlyRevenue:    "monthly_revenue",
	FieldTotalLeads:        "total_leads",
	FieldActiveLeads:       "active_leads",
	FieldConvertedLeads:    "converted_leads",
}

// Store is the storage surface the accumulator needs.
type Store interface {
	EnsureUserStats(userID string, now time.Time) error
	ApplyStatsDeltas(userID string, deltas map[string]float64, now time.Time) error
	CountActiveCities(userID string) (int64, error)
	SetTotalCities(userID string, n int64, now time.Time) error
}

// Accumulator applies incremental counter updates to a user's stats row.
// Stats are best-effort denormalization, not the source of truth: every
// method logs failures and returns nothing, so a stats hiccup can never fail
// the property/lead/revenue write that triggered it.
type Accumulator struct {
	store  Store
	logger *logrus.Logger
	now    func() time.Time
}

func NewAccumulator(store Store, logger *logrus.Logger) *Accumulator {
	return &Accumulator{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// ApplyDelta adds each delta to the named stats field. Unknown field names
// are ignored.
func (a *Accumulator) ApplyDelta(userID string, deltas map[string]float64) {
	applicable := make(map[string]float64, len(deltas))
	for field, delta := range deltas {
		column, ok := columns[field]
		if !ok {
			a.logger.WithField("field", field).Debug("Ignoring unknown stats field")
			continue
		}
		applicable[column] = delta
	}
	if len(applicable) == 0 {
		return
	}

	now := a.now()
	if err := a.store.EnsureUserStats(userID, now); err != nil {
		a.logger.WithError(err).WithField("user_id", userID).Error("Failed to ensure stats row")
		return
	}
	if err := a.store.ApplyStatsDeltas(userID, applicable, now); err != nil {
		a.logger.WithError(err).WithField("user_id", userID).Error("Failed to apply stats deltas")
	}
}

// RecomputeTotalCities replaces totalCities with the count of distinct
// trimmed city names among the user's active properties. Incremental deltas
// would drift here because city values can be edited in place.
func (a *Accumulator) RecomputeTotalCities(userID string) {
	count, err := a.store.CountActiveCities(userID)
	if err != nil {
		a.logger.WithError(err).WithField("user_id", userID).Error("Failed to count cities")
		return
	}

	now := a.now()
	if err := a.store.EnsureUserStats(userID, now); err != nil {
		a.logger.WithError(err).WithField("user_id", userID).Error("Failed to ensure stats row")
		return
	}
	if err := a.store.SetTotalCities(userID, count, now); err != nil {
		a.logger.WithError(err).WithField("user_id", userID).Error("Failed to update city count")
	}
}
