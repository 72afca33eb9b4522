// Package skeleton approximates the straight skeleton of a polygon.
//
// The boundary is densified into point sites and triangulated in GEOS; the
// circumcentres of Delaunay triangles are Voronoi vertices, and those of
// triangles lying inside the polygon trace its medial axis. Chains of those
// vertices between branch points and leaves become the skeleton arcs. Leaf
// arcs are extended to the polygon corner they approach, which is where a
// straight skeleton ends.
package skeleton

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"

	"github.com/dabreegster/polygon-width/internal/geometry"
	"github.com/dabreegster/polygon-width/internal/monitoring"
)

// jitterScale bounds the deterministic perturbation applied to every site
// so that evenly spaced boundary points are never exactly co-circular.
const jitterScale = 1e-7

// sliverTolerance is the minimum distance between a triangle's centroid and
// the boundary. Thinner triangles are slivers between nearly collinear
// boundary sites whose circumcentres lie far away.
const sliverTolerance = 1e-3

// Options controls the approximation.
type Options struct {
	// DensifyStep is the maximum spacing between boundary sites. Smaller
	// steps follow the true skeleton more closely at quadratic cost.
	DensifyStep float64
	// SimplifyTolerance is the Douglas-Peucker tolerance applied to each
	// arc. Zero keeps every Voronoi vertex.
	SimplifyTolerance float64
}

// DefaultOptions matches the tuning defaults.
var DefaultOptions = Options{DensifyStep: 1.0, SimplifyTolerance: 0.05}

type site struct {
	p        orb.Point // translated and jittered
	original orb.Point
	vertex   bool // a vertex of the input polygon rather than a densified point
}

// Extract returns the skeleton arcs of poly. With inward set, arcs come from
// triangles inside the polygon; otherwise from triangles in its concavities
// and around its exterior. The result may be empty.
func Extract(poly orb.Polygon, inward bool, opts Options) []orb.LineString {
	if len(poly) == 0 || len(poly[0]) < 3 {
		return nil
	}
	if opts.DensifyStep <= 0 {
		opts.DensifyStep = DefaultOptions.DensifyStep
	}

	origin := poly.Bound().Center()
	sites := densify(poly, origin, opts.DensifyStep)
	if len(sites) < 3 {
		return nil
	}
	pts := make([]orb.Point, len(sites))
	for i, s := range sites {
		pts[i] = s.p
	}

	shape, err := geometry.NewShape(poly)
	if err != nil {
		monitoring.Logf("[Skeleton] polygon skipped: %v", err)
		return nil
	}
	tris, err := triangulate(pts)
	if err != nil {
		monitoring.Logf("[Skeleton] polygon skipped: %v", err)
		return nil
	}
	kept := selectTriangles(shape, pts, tris, origin, inward)
	adj := adjacency(tris, kept)

	var arcs []orb.LineString
	for _, chain := range chains(adj) {
		arc := make(orb.LineString, 0, len(chain)+2)
		for _, k := range chain {
			arc = append(arc, untranslate(tris[kept[k]].cc, origin))
		}
		if len(adj[chain[0]]) == 1 {
			if corner, ok := leafCorner(sites, tris[kept[chain[0]]]); ok {
				arc = append(orb.LineString{corner}, arc...)
			}
		}
		last := chain[len(chain)-1]
		if len(adj[last]) == 1 && last != chain[0] {
			if corner, ok := leafCorner(sites, tris[kept[last]]); ok {
				arc = append(arc, corner)
			}
		}

		arc = dedupe(arc)
		if len(arc) < 2 {
			continue
		}
		if opts.SimplifyTolerance > 0 {
			arc = simplify.DouglasPeucker(opts.SimplifyTolerance).LineString(arc.Clone())
		}
		if len(arc) >= 2 && planar.Length(arc) > 0 {
			arcs = append(arcs, arc)
		}
	}
	return arcs
}

// densify turns every ring into sites no more than step apart, translated to
// origin, de-duplicated and jittered.
func densify(poly orb.Polygon, origin orb.Point, step float64) []site {
	var sites []site
	index := make(map[geometry.Key]int)
	add := func(p orb.Point, vertex bool) {
		k := geometry.Quantize(p)
		if i, ok := index[k]; ok {
			sites[i].vertex = sites[i].vertex || vertex
			return
		}
		index[k] = len(sites)
		sites = append(sites, site{original: p, vertex: vertex})
	}

	for _, ring := range poly {
		ring = geometry.Closed(ring)
		for i := 0; i+1 < len(ring); i++ {
			a, b := ring[i], ring[i+1]
			add(a, true)
			segments := int(math.Ceil(planar.Distance(a, b) / step))
			for j := 1; j < segments; j++ {
				t := float64(j) / float64(segments)
				add(orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}, false)
			}
		}
	}

	for i := range sites {
		jx, jy := jitter(uint64(i))
		sites[i].p = orb.Point{
			sites[i].original[0] - origin[0] + jx,
			sites[i].original[1] - origin[1] + jy,
		}
	}
	return sites
}

// jitter derives a repeatable offset in [-jitterScale, jitterScale) for each
// coordinate from a splitmix64 hash of i.
func jitter(i uint64) (float64, float64) {
	next := func() float64 {
		i += 0x9e3779b97f4a7c15
		z := i
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31
		return (float64(z>>11)/float64(1<<53)*2 - 1) * jitterScale
	}
	return next(), next()
}

func untranslate(p, origin orb.Point) orb.Point {
	return orb.Point{p[0] + origin[0], p[1] + origin[1]}
}

// selectTriangles returns the indices of triangles that lie on the requested
// side of the polygon boundary, judged by both their centroid and their
// circumcentre. Slivers along the boundary are skipped.
func selectTriangles(shape *geometry.Shape, pts []orb.Point, tris []triangle, origin orb.Point, inward bool) []int {
	var kept []int
	for i, t := range tris {
		if !t.ok {
			continue
		}
		a, b, c := pts[t.v[0]], pts[t.v[1]], pts[t.v[2]]
		centroid := untranslate(orb.Point{(a[0] + b[0] + c[0]) / 3, (a[1] + b[1] + c[1]) / 3}, origin)
		if shape.DistanceToBoundary(centroid) < sliverTolerance {
			continue
		}
		cc := untranslate(t.cc, origin)
		if shape.Covers(centroid) == inward && shape.Covers(cc) == inward {
			kept = append(kept, i)
		}
	}
	return kept
}

// adjacency links kept triangles that share an edge. Node k of the result
// is tris[kept[k]].
func adjacency(tris []triangle, kept []int) [][]int {
	owners := make(map[edgeKey][]int)
	for k, ti := range kept {
		for _, e := range tris[ti].edges() {
			owners[e] = append(owners[e], k)
		}
	}
	adj := make([][]int, len(kept))
	for k, ti := range kept {
		for _, e := range tris[ti].edges() {
			for _, o := range owners[e] {
				if o != k {
					adj[k] = append(adj[k], o)
				}
			}
		}
	}
	return adj
}

// chains splits the Voronoi graph into maximal paths whose interior nodes
// have degree two. Cycles with no branch point come out as closed chains.
func chains(adj [][]int) [][]int {
	visited := make(map[edgeKey]bool)
	var out [][]int

	walk := func(from, to int) []int {
		chain := []int{from, to}
		visited[newEdgeKey(from, to)] = true
		prev, cur := from, to
		for len(adj[cur]) == 2 {
			next := adj[cur][0]
			if next == prev {
				next = adj[cur][1]
			}
			if visited[newEdgeKey(cur, next)] {
				break
			}
			visited[newEdgeKey(cur, next)] = true
			chain = append(chain, next)
			prev, cur = cur, next
		}
		return chain
	}

	for k, nbs := range adj {
		if len(nbs) == 2 {
			continue
		}
		for _, nb := range nbs {
			if !visited[newEdgeKey(k, nb)] {
				out = append(out, walk(k, nb))
			}
		}
	}
	for k, nbs := range adj {
		for _, nb := range nbs {
			if !visited[newEdgeKey(k, nb)] {
				out = append(out, walk(k, nb))
			}
		}
	}
	return out
}

// leafCorner picks the input polygon vertex of a leaf triangle nearest to its
// circumcentre, if it has one.
func leafCorner(sites []site, t triangle) (orb.Point, bool) {
	best, found := math.Inf(1), false
	var corner orb.Point
	for _, v := range t.v {
		if !sites[v].vertex {
			continue
		}
		if d := planar.DistanceSquared(sites[v].p, t.cc); d < best {
			best, corner, found = d, sites[v].original, true
		}
	}
	return corner, found
}

func dedupe(ls orb.LineString) orb.LineString {
	out := ls[:0]
	for _, p := range ls {
		if len(out) > 0 && geometry.SamePoint(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
