package cablemap

import (
	"testing"

	"github.com/jaintle/tracepath/pkg/trace"
)

func locatedHop(index int, c Coordinate) trace.Hop {
	h := trace.Hop{Index: index, IP: "192.0.2.1"}
	h.Locate(c.Lat, c.Lng)
	return h
}

func TestPlanRouteCablePath(t *testing.T) {
	cables, landings := atlanticFixture()
	g := Build(cables, landings)
	p := NewPlanner(g)

	// Hops sit exactly on the two landings, which are ~5300 km apart and
	// joined by a single cable edge.
	hops := []trace.Hop{locatedHop(1, porthcurno), locatedHop(2, masticNY)}
	legs := p.PlanRoute(hops, nil)
	if len(legs) != 1 {
		t.Fatalf("expected 1 leg, got %d", len(legs))
	}
	leg := legs[0]
	if leg.Decision != DecisionCableRouted {
		t.Fatalf("decision = %s, want cable-routed (%s)", leg.Decision, leg.Reason)
	}
	if len(leg.Segments) != 3 {
		t.Fatalf("expected hop->landing, cable, landing->hop segments, got %d", len(leg.Segments))
	}
	if leg.PathLen != 2 {
		t.Errorf("path length = %d, want 2", leg.PathLen)
	}

	// The middle segment must carry the cable's literal geometry.
	mid := leg.Segments[1]
	if mid.Cable != "Atlantic Crossing" {
		t.Errorf("middle segment cable = %q", mid.Cable)
	}
	if len(mid.Coords) != 3 || mid.Coords[0] != porthcurno || mid.Coords[2] != masticNY {
		t.Errorf("middle segment does not follow cable geometry: %v", mid.Coords)
	}

	// Approach and departure segments join the hops to their landings.
	if leg.Segments[0].Coords[0] != porthcurno || leg.Segments[2].Coords[1] != masticNY {
		t.Errorf("endpoint segments misplaced")
	}
}

func TestPlanRouteEmptyCableDataset(t *testing.T) {
	_, landings := atlanticFixture()
	p := NewPlanner(Build(nil, landings))

	hops := []trace.Hop{
		locatedHop(1, Coordinate{Lng: -5, Lat: 50}),
		locatedHop(2, Coordinate{Lng: -73, Lat: 41}),
		locatedHop(3, Coordinate{Lng: -9, Lat: 38}),
	}
	legs := p.PlanRoute(hops, nil)
	if len(legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(legs))
	}
	for _, leg := range legs {
		if leg.Decision != DecisionDirectFallback {
			t.Errorf("leg %d->%d decision = %s, want direct fallback", leg.HopA, leg.HopB, leg.Decision)
		}
		if len(leg.Segments) != 1 {
			t.Errorf("leg %d->%d has %d segments, want exactly 1", leg.HopA, leg.HopB, len(leg.Segments))
		}
	}
}

func TestPlanRouteNilGraph(t *testing.T) {
	p := NewPlanner(nil)
	hops := []trace.Hop{
		locatedHop(1, Coordinate{Lng: 0, Lat: 0}),
		locatedHop(2, Coordinate{Lng: 10, Lat: 10}),
	}
	legs := p.PlanRoute(hops, nil)
	if len(legs) != 1 || legs[0].Decision != DecisionDirectFallback {
		t.Fatalf("nil graph must fall back to direct lines: %+v", legs)
	}
	seg := legs[0].Segments[0]
	if len(seg.Coords) != 2 {
		t.Fatalf("direct segment should be a 2-point line, got %d points", len(seg.Coords))
	}
}

func TestPlanRouteSkipsUnlocatedHops(t *testing.T) {
	cables, landings := atlanticFixture()
	p := NewPlanner(Build(cables, landings))

	hops := []trace.Hop{
		locatedHop(1, porthcurno),
		{Index: 2, IP: "198.51.100.7"}, // never geolocated
		locatedHop(3, masticNY),
	}
	legs := p.PlanRoute(hops, nil)
	if len(legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(legs))
	}
	for _, leg := range legs {
		if leg.Decision != DecisionNoCoordinates {
			t.Errorf("leg %d->%d decision = %s, want no-coordinates", leg.HopA, leg.HopB, leg.Decision)
		}
		if len(leg.Segments) != 0 {
			t.Errorf("unlocated pair emitted %d segments", len(leg.Segments))
		}
	}
}

func TestPlanRouteDisconnectedLandings(t *testing.T) {
	// Two separate cable systems; hops resolve to landings in different
	// components, so the middle leg is bridged with a straight line.
	a := Coordinate{Lng: 0, Lat: 0}
	b := Coordinate{Lng: 10, Lat: 0}
	c := Coordinate{Lng: 100, Lat: 0}
	d := Coordinate{Lng: 110, Lat: 0}
	g := Build(
		[]Cable{
			{Name: "ab", Coords: []Coordinate{a, b}},
			{Name: "cd", Coords: []Coordinate{c, d}},
		},
		[]Landing{
			{Name: "A", Coord: a}, {Name: "B", Coord: b},
			{Name: "C", Coord: c}, {Name: "D", Coord: d},
		},
	)
	p := NewPlanner(g)
	hops := []trace.Hop{locatedHop(1, a), locatedHop(2, d)}
	legs := p.PlanRoute(hops, nil)
	if len(legs) != 1 {
		t.Fatalf("expected 1 leg, got %d", len(legs))
	}
	leg := legs[0]
	if leg.Decision != DecisionDirectFallback {
		t.Errorf("decision = %s, want direct fallback", leg.Decision)
	}
	if len(leg.Segments) != 3 {
		t.Errorf("expected approach, bridge, departure segments, got %d", len(leg.Segments))
	}
}

func TestPlanRouteEmitsIncrementally(t *testing.T) {
	_, landings := atlanticFixture()
	p := NewPlanner(Build(nil, landings))

	hops := []trace.Hop{
		locatedHop(1, Coordinate{Lng: 0, Lat: 0}),
		locatedHop(2, Coordinate{Lng: 1, Lat: 1}),
		locatedHop(3, Coordinate{Lng: 2, Lat: 2}),
	}
	var order []int
	legs := p.PlanRoute(hops, func(leg Leg) { order = append(order, leg.HopA) })
	if len(order) != len(legs) {
		t.Fatalf("emit called %d times for %d legs", len(order), len(legs))
	}
	for i := 1; i < len(order); i++ {
		if order[i] <= order[i-1] {
			t.Fatalf("legs emitted out of hop order: %v", order)
		}
	}
}

func TestPlanRouteAlwaysRoutesLocatedPairs(t *testing.T) {
	cables, landings := atlanticFixture()
	graphs := []*Graph{nil, Build(nil, nil), Build(nil, landings), Build(cables, landings)}
	hops := []trace.Hop{locatedHop(1, Coordinate{Lng: -5, Lat: 49}), locatedHop(2, Coordinate{Lng: -70, Lat: 40})}
	for i, g := range graphs {
		legs := NewPlanner(g).PlanRoute(hops, nil)
		if len(legs) != 1 || len(legs[0].Segments) == 0 {
			t.Errorf("graph variant %d left a located pair unrouted: %+v", i, legs)
		}
	}
}
