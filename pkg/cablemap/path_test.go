package cablemap

import (
	"reflect"
	"testing"
)

// triangle builds A-B, A-C, B-C edges with adjacency order fixed by cable
// insertion order.
func triangleGraph() (*Graph, [3]string) {
	a := Coordinate{Lng: 0, Lat: 0}
	b := Coordinate{Lng: 10, Lat: 0}
	c := Coordinate{Lng: 20, Lat: 0}
	cables := []Cable{
		{Name: "ab", Coords: []Coordinate{a, b}},
		{Name: "ac", Coords: []Coordinate{a, c}},
		{Name: "bc", Coords: []Coordinate{b, c}},
	}
	landings := []Landing{
		{Name: "A", Coord: a}, {Name: "B", Coord: b}, {Name: "C", Coord: c},
	}
	return Build(cables, landings), [3]string{a.Key(), b.Key(), c.Key()}
}

func TestFindPathTrivial(t *testing.T) {
	g, keys := triangleGraph()
	got := g.FindPath(keys[0], keys[0])
	if !reflect.DeepEqual(got, []string{keys[0]}) {
		t.Errorf("start==end should return the singleton path, got %v", got)
	}
}

func TestFindPathFirstFoundNotShortest(t *testing.T) {
	g, keys := triangleGraph()
	// A's first edge is A->B (cable "ab" was inserted before "ac"), so the
	// depth-first traversal reaches C through B even though A->C exists.
	got := g.FindPath(keys[0], keys[2])
	want := []string{keys[0], keys[1], keys[2]}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindPath = %v, want first-found path %v", got, want)
	}
}

func TestFindPathDisconnected(t *testing.T) {
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
	if got := g.FindPath(a.Key(), d.Key()); got != nil {
		t.Errorf("path across disconnected components: %v", got)
	}
}

func TestFindPathTwoLandings(t *testing.T) {
	cables, landings := atlanticFixture()
	g := Build(cables, landings)
	got := g.FindPath(porthcurno.Key(), masticNY.Key())
	want := []string{porthcurno.Key(), masticNY.Key()}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindPath = %v, want %v", got, want)
	}
}

func TestFindPathDoesNotRevisit(t *testing.T) {
	g, keys := triangleGraph()
	got := g.FindPath(keys[1], keys[2])
	// B's first edge leads back to A; the walk must not loop through B again.
	for i, k := range got {
		for j := i + 1; j < len(got); j++ {
			if got[j] == k {
				t.Fatalf("path revisits %s: %v", k, got)
			}
		}
	}
	if got == nil || got[len(got)-1] != keys[2] {
		t.Fatalf("path does not reach target: %v", got)
	}
}
