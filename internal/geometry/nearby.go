// Package geometry provides the radius search over geolocated listings.
package geometry

import (
	"sort"

	"estateview/server/internal/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// PropertyDistance pairs a property with its distance from the search point.
type PropertyDistance struct {
	models.Property
	DistanceKm float64 `json:"distance_km"`
}

// FilterNearby returns the properties within radiusKm of (lat, lng), nearest
// first. Properties without coordinates are skipped.
func FilterNearby(properties []models.Property, lat, lng, radiusKm float64) []PropertyDistance {
	center := orb.Point{lng, lat}

	var nearby []PropertyDistance
	for _, p := range properties {
		if p.Latitude == nil || p.Longitude == nil {
			continue
		}
		distKm := geo.Distance(center, orb.Point{*p.Longitude, *p.Latitude}) / 1000
		if distKm <= radiusKm {
			nearby = append(nearby, PropertyDistance{Property: p, DistanceKm: distKm})
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	return nearby
}
