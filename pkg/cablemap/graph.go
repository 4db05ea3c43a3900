package cablemap

// ProximityKm is the maximum distance between a cable endpoint and a landing
// point for the cable to be attached to that landing during graph
// construction.
const ProximityKm = 50.0

// Landing is a named point where a cable reaches shore.
type Landing struct {
	Name  string
	Coord Coordinate
}

// Cable is a named line geometry. Multi-part cables are flattened to one
// ordered coordinate sequence before Build sees them.
type Cable struct {
	Name   string
	Coords []Coordinate
}

// Edge is one directed cable hop between two landing vertices. Geometry runs
// from the source landing toward To.
type Edge struct {
	To       string
	Cable    string
	Geometry []Coordinate
}

// Graph is a symmetric adjacency over landing keys, plus the table of every
// loaded landing (keyed the same way) so a key can be mapped back to its real,
// unrounded coordinate. Both are read-only after Build.
type Graph struct {
	adj      map[string][]Edge
	landings map[string]Coordinate
}

// Build assembles the cable graph. The data is noisy real-world geometry, so
// construction is best effort: cables whose endpoints cannot both be matched
// to distinct landings within ProximityKm are dropped without error. The
// resulting adjacency only ever contains landings that terminate at least one
// cable; isolated landings live only in the landing table.
func Build(cables []Cable, landings []Landing) *Graph {
	g := &Graph{
		adj:      make(map[string][]Edge),
		landings: make(map[string]Coordinate, len(landings)),
	}
	// Later landings overwrite earlier ones on key collision. Accepted
	// coarsening loss; the coordinates differ by under the key resolution.
	for _, l := range landings {
		g.landings[l.Coord.Key()] = l.Coord
	}

	for _, c := range cables {
		if len(c.Coords) < 2 {
			continue
		}
		startKey, _, okA := g.nearestWithin(c.Coords[0], ProximityKm)
		endKey, _, okB := g.nearestWithin(c.Coords[len(c.Coords)-1], ProximityKm)
		if !okA || !okB || startKey == endKey {
			continue
		}
		g.adj[startKey] = append(g.adj[startKey], Edge{
			To:       endKey,
			Cable:    c.Name,
			Geometry: c.Coords,
		})
		g.adj[endKey] = append(g.adj[endKey], Edge{
			To:       startKey,
			Cable:    c.Name,
			Geometry: reversed(c.Coords),
		})
	}
	return g
}

// LandingCoord maps a key back to the real coordinate of the landing it was
// derived from.
func (g *Graph) LandingCoord(key string) (Coordinate, bool) {
	c, ok := g.landings[key]
	return c, ok
}

// Edges returns the outgoing edges of a vertex in insertion order.
func (g *Graph) Edges(key string) []Edge {
	return g.adj[key]
}

// NumLandings reports the size of the landing table, including landings that
// ended up with no incident cable.
func (g *Graph) NumLandings() int {
	return len(g.landings)
}

// NumVertices reports the number of landings with at least one incident cable.
func (g *Graph) NumVertices() int {
	return len(g.adj)
}

// Nearest scans the landing table for the entry closest to p. No distance
// limit is applied; the caller decides whether the distance is acceptable.
// Exact ties go to whichever entry is seen first.
func (g *Graph) Nearest(p Coordinate) (key string, distKm float64, ok bool) {
	best := -1.0
	for k, c := range g.landings {
		d := Haversine(p, c)
		if best < 0 || d < best {
			best = d
			key = k
		}
	}
	if best < 0 {
		return "", 0, false
	}
	return key, best, true
}

// nearestWithin is Nearest constrained to a maximum distance, used while
// attaching cable endpoints during Build.
func (g *Graph) nearestWithin(p Coordinate, maxKm float64) (string, float64, bool) {
	key, d, ok := g.Nearest(p)
	if !ok || d > maxKm {
		return "", 0, false
	}
	return key, d, true
}

func reversed(coords []Coordinate) []Coordinate {
	out := make([]Coordinate, len(coords))
	for i, c := range coords {
		out[len(coords)-1-i] = c
	}
	return out
}
