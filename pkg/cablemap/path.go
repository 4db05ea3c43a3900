package cablemap

// FindPath runs a depth-first search from start to end over the cable
// adjacency and returns the first path the traversal finds in edge order, or
// nil when end is unreachable. It deliberately does NOT return a shortest
// path: downstream behavior depends on the first-found ordering, so the
// traversal must stay depth-first over edges in insertion order.
//
// The search keeps an explicit stack of path frames instead of recursing;
// path membership doubles as the per-branch visited set, so sibling branches
// never share exclusion state.
func (g *Graph) FindPath(start, end string) []string {
	if start == end {
		return []string{start}
	}
	if len(g.adj[start]) == 0 {
		return nil
	}

	stack := [][]string{{start}}
	for len(stack) > 0 {
		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur := path[len(path)-1]
		if cur == end {
			return path
		}

		// Push in reverse so the first edge is explored first, matching the
		// order a recursive descent would visit.
		edges := g.adj[cur]
		for i := len(edges) - 1; i >= 0; i-- {
			to := edges[i].To
			if containsKey(path, to) {
				continue
			}
			next := make([]string, len(path), len(path)+1)
			copy(next, path)
			next = append(next, to)
			stack = append(stack, next)
		}
	}
	return nil
}

// edgeBetween returns the stored edge from u to v, if one exists. When
// parallel cables connect the same pair of landings the first inserted wins,
// mirroring the edge order FindPath traverses.
func (g *Graph) edgeBetween(u, v string) (Edge, bool) {
	for _, e := range g.adj[u] {
		if e.To == v {
			return e, true
		}
	}
	return Edge{}, false
}

func containsKey(path []string, key string) bool {
	for _, p := range path {
		if p == key {
			return true
		}
	}
	return false
}
