// Package joiner merges skeleton fragments that share endpoints into longer
// continuous polylines.
//
// Each pass builds a weighted undirected multigraph whose vertices are the
// quantized fragment endpoints and whose lines are the fragments themselves,
// finds the longest simple path through it and merges the fragments along
// that path. Passes repeat until no two open fragments share an endpoint.
package joiner

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"

	"github.com/dabreegster/polygon-width/internal/geometry"
	"github.com/dabreegster/polygon-width/internal/monitoring"
)

// MaxSearchSteps bounds the number of DFS expansions in one longest-path
// search. Skeleton graphs are tens of fragments so the limit is only reached
// for unusually dense inputs, in which case the longest path found so far is
// merged.
var MaxSearchSteps = 200000

// Join merges fragments that share endpoints. Fragments that connect to
// nothing are returned as they are. The input slice is not modified.
func Join(lines []orb.LineString) []orb.LineString {
	working := make([]orb.LineString, len(lines))
	copy(working, lines)

	for {
		g := build(working)
		path := g.longestPath()
		if len(path.lines) < 2 {
			return working
		}

		merged := g.merge(working, path)
		used := make(map[int64]bool, len(path.lines))
		for _, uid := range path.lines {
			used[uid] = true
		}
		next := make([]orb.LineString, 0, len(working)-len(path.lines)+1)
		for i, ls := range working {
			if !used[int64(i)] {
				next = append(next, ls)
			}
		}
		working = append(next, merged)
	}
}

// fragmentGraph is the ephemeral graph for one joining pass.
type fragmentGraph struct {
	g     *multi.WeightedUndirectedGraph
	nodes map[geometry.Key]int64
	order []int64 // node ids in ascending order
	adj   map[int64][]edge
}

type edge struct {
	to     int64
	uid    int64
	weight float64
}

type path struct {
	nodes  []int64
	lines  []int64
	length float64
}

func build(lines []orb.LineString) *fragmentGraph {
	fg := &fragmentGraph{
		g:     multi.NewWeightedUndirectedGraph(),
		nodes: make(map[geometry.Key]int64),
		adj:   make(map[int64][]edge),
	}

	nodeFor := func(p orb.Point) graph.Node {
		k := geometry.Quantize(p)
		id, ok := fg.nodes[k]
		if !ok {
			id = int64(len(fg.nodes))
			fg.nodes[k] = id
		}
		return multi.Node(id)
	}

	for i, ls := range lines {
		if len(ls) < 2 || geometry.SamePoint(ls[0], ls[len(ls)-1]) {
			// Closed fragments cannot be extended at either end.
			continue
		}
		fg.g.SetWeightedLine(multi.WeightedLine{
			F:   nodeFor(ls[0]),
			T:   nodeFor(ls[len(ls)-1]),
			W:   planar.Length(ls),
			UID: int64(i),
		})
	}

	for _, n := range graph.NodesOf(fg.g.Nodes()) {
		id := n.ID()
		fg.order = append(fg.order, id)
		for _, to := range graph.NodesOf(fg.g.From(id)) {
			for _, l := range graph.WeightedLinesOf(fg.g.WeightedLines(id, to.ID())) {
				fg.adj[id] = append(fg.adj[id], edge{to: to.ID(), uid: l.ID(), weight: l.Weight()})
			}
		}
	}
	sort.Slice(fg.order, func(i, j int) bool { return fg.order[i] < fg.order[j] })
	for id, edges := range fg.adj {
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].to != edges[j].to {
				return edges[i].to < edges[j].to
			}
			return edges[i].uid < edges[j].uid
		})
		fg.adj[id] = edges
	}
	return fg
}

// longestPath searches every simple path from every vertex and returns the
// one with the greatest total length and at least two lines. A path may end
// on its own start vertex. The first maximum found wins.
func (fg *fragmentGraph) longestPath() path {
	var (
		best    path
		steps   int
		visited = make(map[int64]bool)
		used    = make(map[int64]bool)
		nodes   []int64
		lines   []int64
	)

	consider := func(length float64) {
		if len(lines) >= 2 && length > best.length {
			best = path{
				nodes:  append([]int64(nil), nodes...),
				lines:  append([]int64(nil), lines...),
				length: length,
			}
		}
	}

	var visit func(at int64, length float64)
	visit = func(at int64, length float64) {
		consider(length)
		for _, e := range fg.adj[at] {
			if steps >= MaxSearchSteps || used[e.uid] {
				continue
			}
			start := nodes[0]
			if visited[e.to] && e.to != start {
				continue
			}
			steps++

			used[e.uid] = true
			nodes = append(nodes, e.to)
			lines = append(lines, e.uid)
			if e.to == start {
				consider(length + e.weight)
			} else {
				visited[e.to] = true
				visit(e.to, length+e.weight)
				visited[e.to] = false
			}
			nodes = nodes[:len(nodes)-1]
			lines = lines[:len(lines)-1]
			used[e.uid] = false
		}
	}

	for _, start := range fg.order {
		if steps >= MaxSearchSteps {
			break
		}
		visited[start] = true
		nodes = append(nodes[:0], start)
		visit(start, 0)
		visited[start] = false
	}
	if steps >= MaxSearchSteps {
		monitoring.Logf("[Joiner] search budget of %d steps exhausted over %d fragments, using best path so far",
			MaxSearchSteps, fg.g.Edges().Len())
	}
	return best
}

// merge concatenates the fragments along p into one polyline, reversing
// fragments so consecutive pieces meet and dropping the repeated joint.
func (fg *fragmentGraph) merge(lines []orb.LineString, p path) orb.LineString {
	keys := make(map[int64]geometry.Key, len(fg.nodes))
	for k, id := range fg.nodes {
		keys[id] = k
	}

	var out orb.LineString
	for i, uid := range p.lines {
		ls := lines[uid]
		if geometry.Quantize(ls[0]) != keys[p.nodes[i]] {
			ls = ls.Clone()
			ls.Reverse()
		}
		for _, pt := range ls {
			if len(out) > 0 && geometry.SamePoint(out[len(out)-1], pt) {
				continue
			}
			out = append(out, pt)
		}
	}
	return out
}
