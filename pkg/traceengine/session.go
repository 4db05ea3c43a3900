package traceengine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/biter777/countries"

	"github.com/jaintle/tracepath/pkg/cablemap"
	"github.com/jaintle/tracepath/pkg/geo"
	"github.com/jaintle/tracepath/pkg/trace"
)

// StatusSink receives HUD rows; the engine implements it.
type StatusSink interface {
	SetHopStatus(target string, rows []HopStatus)
}

// Session owns one trace: the append-only hop sequence, the markers placed
// for these hops, and the playback for the current route. Restarting a trace
// tears all of that down first; the cable graph and planner carry over
// untouched.
type Session struct {
	surface  Surface
	status   StatusSink
	planner  *cablemap.Planner
	resolver *geo.Resolver // nil when no geo database is available
	driver   *AnimationDriver

	mu      sync.Mutex
	target  string
	hops    []trace.Hop
	legs    []cablemap.Leg
	markers []string
}

func NewSession(surface Surface, status StatusSink, planner *cablemap.Planner, resolver *geo.Resolver) *Session {
	driver := NewAnimationDriver(surface)
	driver.StyleFunc = func(seg cablemap.Segment) LineStyle {
		style := driver.Style
		if seg.Cable == "" {
			style.Color = ColorFallback
		}
		return style
	}
	return &Session{
		surface:  surface,
		status:   status,
		planner:  planner,
		resolver: resolver,
		driver:   driver,
	}
}

// Start clears the previous trace: playback is stopped (and swept off the
// surface) before any state is dropped, so no orphaned animation keeps
// mutating a torn-down layer set.
func (s *Session) Start(target string) {
	s.driver.Stop()

	s.mu.Lock()
	markers := s.markers
	s.markers = nil
	s.hops = nil
	s.legs = nil
	s.target = target
	s.mu.Unlock()

	for _, id := range markers {
		s.surface.RemoveLayer(id)
	}
	s.pushStatus()
	log.Printf("session: trace to %s started", target)
}

// OnHop ingests one streamed hop: enrich, append, mark, replan, replay.
// Hops arrive one at a time; each full replan replaces the in-flight
// animation at its next suspension point.
func (s *Session) OnHop(h trace.Hop) {
	if s.resolver != nil {
		if _, _, ok := h.Location(); !ok {
			s.resolver.Enrich(&h)
		}
	}

	s.mu.Lock()
	s.hops = append(s.hops, h)
	hops := make([]trace.Hop, len(s.hops))
	copy(hops, s.hops)
	s.mu.Unlock()

	if lng, lat, ok := h.Location(); ok {
		at := cablemap.Coordinate{Lng: lng, Lat: lat}
		id := fmt.Sprintf("hop/%d", h.Index)
		s.surface.AddMarker(id, at, hopLabel(h))
		s.surface.ShowPopup(at, hopPopup(h), 4*time.Second)
		s.surface.FlyTo(at, 0)

		s.mu.Lock()
		s.markers = append(s.markers, id)
		s.mu.Unlock()
	}

	legs := s.planner.PlanRoute(hops, nil)
	var segments []cablemap.Segment
	for _, leg := range legs {
		segments = append(segments, leg.Segments...)
	}

	s.mu.Lock()
	s.legs = legs
	s.mu.Unlock()
	s.pushStatus()

	if len(segments) > 0 {
		s.driver.Play(segments)
	}
}

// OnEnd handles the explicit end-of-stream marker.
func (s *Session) OnEnd() {
	s.mu.Lock()
	n := len(s.hops)
	target := s.target
	s.mu.Unlock()
	log.Printf("session: trace to %s complete, %d hops", target, n)
}

// Close tears the session down, cancelling any in-flight playback.
func (s *Session) Close() {
	s.driver.Stop()
}

// Hops returns a snapshot of the accumulated hop sequence.
func (s *Session) Hops() []trace.Hop {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]trace.Hop, len(s.hops))
	copy(out, s.hops)
	return out
}

// Legs returns the most recent route plan.
func (s *Session) Legs() []cablemap.Leg {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]cablemap.Leg, len(s.legs))
	copy(out, s.legs)
	return out
}

func (s *Session) pushStatus() {
	if s.status == nil {
		return
	}
	s.mu.Lock()
	rows := make([]HopStatus, 0, len(s.hops))
	decisions := make(map[int]string, len(s.legs))
	for _, leg := range s.legs {
		decisions[leg.HopB] = leg.Decision.String()
	}
	for _, h := range s.hops {
		row := HopStatus{
			Index:    h.Index,
			IP:       h.IP,
			Place:    hopPlace(h),
			Decision: decisions[h.Index],
		}
		if s.resolver != nil {
			row.Provider = s.resolver.Classify(h)
		}
		rows = append(rows, row)
	}
	target := s.target
	s.mu.Unlock()
	s.status.SetHopStatus(target, rows)
}

func hopPlace(h trace.Hop) string {
	name := h.City
	if h.Country != "" {
		cn := countries.ByName(h.Country).String()
		if cn == "Unknown" {
			cn = h.Country
		}
		if name != "" {
			name += ", "
		}
		name += cn
	}
	return name
}

func hopLabel(h trace.Hop) string {
	if h.City != "" {
		return fmt.Sprintf("%d %s", h.Index, h.City)
	}
	return fmt.Sprintf("%d %s", h.Index, h.IP)
}

func hopPopup(h trace.Hop) string {
	txt := fmt.Sprintf("hop %d  %s", h.Index, h.IP)
	if place := hopPlace(h); place != "" {
		txt += "\n" + place
	}
	if h.Org != "" {
		txt += "\n" + h.Org
	}
	if h.RTTms > 0 {
		txt += fmt.Sprintf("\n%.1f ms", h.RTTms)
	}
	return txt
}
