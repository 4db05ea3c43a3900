// Package sources fetches the static geo datasets the viewer draws from: the
// submarine cable map, its landing points, and a world basemap. Everything
// goes through the shared download cache and every failure is survivable.
package sources

import (
	"fmt"
	"io"

	geojson "github.com/paulmach/go.geojson"

	"github.com/jaintle/tracepath/pkg/cablemap"
	"github.com/jaintle/tracepath/pkg/utils"
)

func fetchFeatureCollection(url, cacheDir, label string) (*geojson.FeatureCollection, error) {
	r, err := utils.GetCachedReader(url, cacheDir, label)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return fc, nil
}

// FetchCableMap loads the cable and landing point datasets. Callers treat an
// error as "run without cable routing", not as fatal.
func FetchCableMap(cacheDir string) ([]cablemap.Cable, []cablemap.Landing, error) {
	cableFC, err := fetchFeatureCollection(CableGeoURL, cacheDir, "[cables]")
	if err != nil {
		return nil, nil, err
	}
	landingFC, err := fetchFeatureCollection(LandingPointGeoURL, cacheDir, "[landings]")
	if err != nil {
		return nil, nil, err
	}
	return cablemap.CablesFromGeoJSON(cableFC), cablemap.LandingsFromGeoJSON(landingFC), nil
}

// FetchWorld loads the basemap geometry. A missing basemap degrades to a
// plain ocean background.
func FetchWorld(cacheDir string) (*geojson.FeatureCollection, error) {
	return fetchFeatureCollection(WorldGeoURL, cacheDir, "[world]")
}
