// Package cablemap builds a routing graph out of submarine cable and landing
// point geometries and plans animatable paths between arbitrary points on it.
package cablemap

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// Coordinate is a WGS84 longitude/latitude pair.
type Coordinate struct {
	Lng float64
	Lat float64
}

// Key returns the coarse vertex identity for this coordinate. Both components
// are rounded to 3 decimal places (~111m), so landings within rounding
// distance of each other collapse to the same graph vertex. That collapse is
// what deduplicates near-identical landing points across datasets.
func (c Coordinate) Key() string {
	return fmt.Sprintf("%.3f,%.3f", c.Lng, c.Lat)
}

// Haversine returns the great-circle distance between a and b in kilometers.
// Non-numeric input propagates as NaN.
func Haversine(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
