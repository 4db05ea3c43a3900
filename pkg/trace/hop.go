// Package trace defines the hop record shared by the probe and the viewer,
// the websocket wire messages that carry it, and parsing of raw traceroute
// output.
package trace

// Hop is one recorded point along a network path. Geolocation fields are
// filled by enrichment and may be absent; Lat/Lng are pointers so "unknown"
// survives the JSON round trip.
type Hop struct {
	Index   int      `json:"index"`
	IP      string   `json:"ip"`
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Org     string   `json:"org,omitempty"`
	RTTms   float64  `json:"rtt_ms,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// Location reports the hop's coordinate when enrichment produced one.
func (h Hop) Location() (lng, lat float64, ok bool) {
	if h.Lat == nil || h.Lng == nil {
		return 0, 0, false
	}
	return *h.Lng, *h.Lat, true
}

// Locate attaches a coordinate to the hop.
func (h *Hop) Locate(lat, lng float64) {
	h.Lat = &lat
	h.Lng = &lng
}

// Message types on the hop stream.
const (
	MsgStart = "trace_start" // carries the trace target
	MsgHop   = "hop"         // one Hop record
	MsgEnd   = "trace_end"   // explicit end-of-stream marker
	MsgError = "trace_error"
)

// Message is the envelope pushed over the hop stream websocket.
type Message struct {
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
	Hop    *Hop   `json:"hop,omitempty"`
	Error  string `json:"error,omitempty"`
}
