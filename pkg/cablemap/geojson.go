package cablemap

import (
	geojson "github.com/paulmach/go.geojson"
)

// CablesFromGeoJSON extracts named line features from a cable dataset.
// MultiLineString parts are flattened into one ordered sequence, matching how
// Build treats a cable as a single run between its outermost endpoints.
// Features that are not lines are ignored.
func CablesFromGeoJSON(fc *geojson.FeatureCollection) []Cable {
	var cables []Cable
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		var coords []Coordinate
		switch {
		case f.Geometry.IsLineString():
			coords = toCoordinates(f.Geometry.LineString)
		case f.Geometry.IsMultiLineString():
			for _, part := range f.Geometry.MultiLineString {
				coords = append(coords, toCoordinates(part)...)
			}
		default:
			continue
		}
		if len(coords) < 2 {
			continue
		}
		cables = append(cables, Cable{Name: featureName(f), Coords: coords})
	}
	return cables
}

// LandingsFromGeoJSON extracts named point features from a landing point
// dataset.
func LandingsFromGeoJSON(fc *geojson.FeatureCollection) []Landing {
	var landings []Landing
	for _, f := range fc.Features {
		if f.Geometry == nil || !f.Geometry.IsPoint() || len(f.Geometry.Point) < 2 {
			continue
		}
		landings = append(landings, Landing{
			Name:  featureName(f),
			Coord: Coordinate{Lng: f.Geometry.Point[0], Lat: f.Geometry.Point[1]},
		})
	}
	return landings
}

func featureName(f *geojson.Feature) string {
	if name, err := f.PropertyString("name"); err == nil {
		return name
	}
	if id, ok := f.ID.(string); ok {
		return id
	}
	return ""
}

func toCoordinates(line [][]float64) []Coordinate {
	out := make([]Coordinate, 0, len(line))
	for _, p := range line {
		if len(p) < 2 {
			continue
		}
		out = append(out, Coordinate{Lng: p[0], Lat: p[1]})
	}
	return out
}
