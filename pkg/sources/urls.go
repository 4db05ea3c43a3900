package sources

const (
	// Submarine cable map public API (geojson).
	CableGeoURL        = "https://www.submarinecablemap.com/api/v3/cable/cable-geo.json"
	LandingPointGeoURL = "https://www.submarinecablemap.com/api/v3/landing-point/landing-point-geo.json"

	// Natural Earth 110m countries, used for the basemap raster.
	WorldGeoURL = "https://raw.githubusercontent.com/nvkelso/natural-earth-vector/master/geojson/ne_110m_admin_0_countries.geojson"
)
