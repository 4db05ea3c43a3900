package cablemap

import (
	"testing"

	geojson "github.com/paulmach/go.geojson"
)

const cableFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "Celtic Link"},
      "geometry": {
        "type": "MultiLineString",
        "coordinates": [[[-5.6, 50.0], [-7.0, 50.5]], [[-7.0, 50.5], [-8.5, 51.5]]]
      }
    },
    {
      "type": "Feature",
      "properties": {"name": "Short Hop"},
      "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}
    },
    {
      "type": "Feature",
      "properties": {"name": "Not A Cable"},
      "geometry": {"type": "Point", "coordinates": [3, 3]}
    }
  ]
}`

const landingFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "Porthcurno, United Kingdom"},
      "geometry": {"type": "Point", "coordinates": [-5.655, 50.043]}
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}
    }
  ]
}`

func TestCablesFromGeoJSON(t *testing.T) {
	fc, err := geojson.UnmarshalFeatureCollection([]byte(cableFixture))
	if err != nil {
		t.Fatal(err)
	}
	cables := CablesFromGeoJSON(fc)
	if len(cables) != 2 {
		t.Fatalf("expected 2 cables, got %d", len(cables))
	}
	if cables[0].Name != "Celtic Link" {
		t.Errorf("cable name = %q", cables[0].Name)
	}
	// Multi-part geometry flattens into one ordered run.
	if len(cables[0].Coords) != 4 {
		t.Errorf("flattened coordinate count = %d, want 4", len(cables[0].Coords))
	}
	if first := cables[0].Coords[0]; first != (Coordinate{Lng: -5.6, Lat: 50.0}) {
		t.Errorf("first coordinate = %v", first)
	}
}

func TestLandingsFromGeoJSON(t *testing.T) {
	fc, err := geojson.UnmarshalFeatureCollection([]byte(landingFixture))
	if err != nil {
		t.Fatal(err)
	}
	landings := LandingsFromGeoJSON(fc)
	if len(landings) != 1 {
		t.Fatalf("expected 1 landing, got %d", len(landings))
	}
	if landings[0].Name != "Porthcurno, United Kingdom" {
		t.Errorf("landing name = %q", landings[0].Name)
	}
	if landings[0].Coord.Key() != "-5.655,50.043" {
		t.Errorf("landing key = %q", landings[0].Coord.Key())
	}
}
