package cablemap

import (
	"fmt"
	"log"

	"github.com/jaintle/tracepath/pkg/trace"
)

// Decision records why a hop pair was routed the way it was, so callers and
// tests can assert on the reason instead of reverse-engineering geometry.
type Decision int

const (
	// DecisionNoCoordinates: one or both hops have no geolocation; the pair
	// contributes nothing.
	DecisionNoCoordinates Decision = iota
	// DecisionDirectFallback: a straight hop-to-hop (or landing-to-landing)
	// line was used instead of cable geometry.
	DecisionDirectFallback
	// DecisionCableRouted: the pair follows cable geometry through the graph.
	DecisionCableRouted
)

func (d Decision) String() string {
	switch d {
	case DecisionNoCoordinates:
		return "no-coordinates"
	case DecisionDirectFallback:
		return "direct-fallback"
	case DecisionCableRouted:
		return "cable-routed"
	}
	return "unknown"
}

// Segment is one animatable leg: an ordered polyline of at least two
// coordinates. Cable is set when the geometry came from a cable edge.
type Segment struct {
	Coords []Coordinate
	Cable  string
}

// Leg is the plan for one consecutive hop pair.
type Leg struct {
	HopA, HopB int // hop indexes, for diagnostics
	Decision   Decision
	Reason     string
	Segments   []Segment

	// Chosen landings and their distance from the hops, zero-valued on
	// fallback legs.
	LandingA, LandingB string
	DistAKm, DistBKm   float64
	PathLen            int
}

// Planner turns an ordered hop sequence into animation segments by routing
// each consecutive pair through the cable graph. A nil graph (datasets failed
// to load) puts the planner in global direct-line mode. The graph is never
// mutated, so one Planner is safe to reuse across replans within a session.
type Planner struct {
	graph *Graph

	// Trace controls the per-pair diagnostic log line.
	Trace bool
}

func NewPlanner(g *Graph) *Planner {
	return &Planner{graph: g}
}

// PlanRoute walks consecutive hop pairs in order and hands each finished Leg
// to emit as soon as it is decided, so playback can start before the whole
// route is planned. The same legs are also returned for inspection.
func (p *Planner) PlanRoute(hops []trace.Hop, emit func(Leg)) []Leg {
	var legs []Leg
	for i := 0; i+1 < len(hops); i++ {
		leg := p.planPair(hops[i], hops[i+1])
		if p.Trace {
			log.Printf("route: hops %d->%d %s (%s) landings=[%s %s] dist=[%.0fkm %.0fkm] path=%d segments=%d",
				leg.HopA, leg.HopB, leg.Decision, leg.Reason,
				leg.LandingA, leg.LandingB, leg.DistAKm, leg.DistBKm, leg.PathLen, len(leg.Segments))
		}
		legs = append(legs, leg)
		if emit != nil {
			emit(leg)
		}
	}
	return legs
}

func (p *Planner) planPair(a, b trace.Hop) Leg {
	leg := Leg{HopA: a.Index, HopB: b.Index}

	aLng, aLat, okA := a.Location()
	bLng, bLat, okB := b.Location()
	if !okA || !okB {
		leg.Decision = DecisionNoCoordinates
		leg.Reason = "hop without geolocation"
		return leg
	}
	from := Coordinate{Lng: aLng, Lat: aLat}
	to := Coordinate{Lng: bLng, Lat: bLat}

	// No landings, or landings but not a single usable cable: the graph can
	// never route anything, so the whole session runs on direct lines.
	if p.graph == nil || p.graph.NumLandings() == 0 || p.graph.NumVertices() == 0 {
		return directLeg(leg, from, to, "cable datasets empty or unavailable")
	}

	keyA, distA, okA := p.graph.Nearest(from)
	keyB, distB, okB := p.graph.Nearest(to)
	if !okA || !okB {
		return directLeg(leg, from, to, "no landing resolved")
	}
	landA, okA := p.graph.LandingCoord(keyA)
	landB, okB := p.graph.LandingCoord(keyB)
	if !okA || !okB {
		return directLeg(leg, from, to, "resolved landing missing from table")
	}

	leg.LandingA, leg.LandingB = keyA, keyB
	leg.DistAKm, leg.DistBKm = distA, distB

	path := p.graph.FindPath(keyA, keyB)
	leg.Segments = append(leg.Segments, Segment{Coords: []Coordinate{from, landA}})
	if path == nil {
		// Landings resolved but the graph has no connecting path; bridge the
		// middle with a straight line rather than failing the pair.
		leg.Decision = DecisionDirectFallback
		leg.Reason = "no cable path between landings"
		leg.Segments = append(leg.Segments, Segment{Coords: []Coordinate{landA, landB}})
	} else {
		leg.Decision = DecisionCableRouted
		leg.PathLen = len(path)
		leg.Reason = fmt.Sprintf("cable path through %d landings", len(path))
		for i := 0; i+1 < len(path); i++ {
			e, ok := p.graph.edgeBetween(path[i], path[i+1])
			if !ok {
				// Cannot happen for a path FindPath produced; guard anyway.
				u, _ := p.graph.LandingCoord(path[i])
				v, _ := p.graph.LandingCoord(path[i+1])
				leg.Segments = append(leg.Segments, Segment{Coords: []Coordinate{u, v}})
				continue
			}
			leg.Segments = append(leg.Segments, Segment{Coords: e.Geometry, Cable: e.Cable})
		}
	}
	leg.Segments = append(leg.Segments, Segment{Coords: []Coordinate{landB, to}})
	return leg
}

func directLeg(leg Leg, from, to Coordinate, reason string) Leg {
	leg.Decision = DecisionDirectFallback
	leg.Reason = reason
	leg.Segments = []Segment{{Coords: []Coordinate{from, to}}}
	return leg
}
