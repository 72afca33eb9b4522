package skeleton

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-geos"

	"github.com/dabreegster/polygon-width/internal/geometry"
)

// triangle is a Delaunay triangle over indices into a site slice, with its
// circumcentre.
type triangle struct {
	v  [3]int
	cc orb.Point
	ok bool // false when the vertices are collinear
}

type edgeKey [2]int

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

func (t triangle) edges() [3]edgeKey {
	return [3]edgeKey{
		newEdgeKey(t.v[0], t.v[1]),
		newEdgeKey(t.v[1], t.v[2]),
		newEdgeKey(t.v[2], t.v[0]),
	}
}

// circumcircle returns the centre and squared radius of the circle through
// a, b and c. Collinear points report false and an infinite radius.
func circumcircle(a, b, c orb.Point) (orb.Point, float64, bool) {
	bx, by := b[0]-a[0], b[1]-a[1]
	cx, cy := c[0]-a[0], c[1]-a[1]
	d := 2 * (bx*cy - by*cx)
	if d == 0 {
		return orb.Point{}, math.Inf(1), false
	}
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	return orb.Point{a[0] + ux, a[1] + uy}, ux*ux + uy*uy, true
}

// triangulate builds the Delaunay triangulation of pts in GEOS and maps the
// corners of each triangle back to indices into pts. GEOS keeps input
// coordinates exactly, so the lookup is by value.
func triangulate(pts []orb.Point) (tris []triangle, err error) {
	if len(pts) < 3 {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			tris, err = nil, fmt.Errorf("delaunay triangulation: %v", r)
		}
	}()

	ctx := geos.NewContext()
	sites, err := geometry.ToGEOS(ctx, orb.MultiPoint(pts))
	if err != nil {
		return nil, err
	}
	defer sites.Destroy()

	tin := sites.DelaunayTriangulation(0, false)
	defer tin.Destroy()
	out, err := geometry.FromGEOS(tin)
	if err != nil {
		return nil, err
	}

	index := make(map[orb.Point]int, len(pts))
	for i, p := range pts {
		index[p] = i
	}
	for _, poly := range polygons(out) {
		if len(poly) == 0 || len(poly[0]) < 3 {
			continue
		}
		var v [3]int
		mapped := true
		for j := range v {
			k, ok := index[poly[0][j]]
			if !ok {
				mapped = false
				break
			}
			v[j] = k
		}
		if !mapped {
			continue
		}
		cc, _, ok := circumcircle(pts[v[0]], pts[v[1]], pts[v[2]])
		tris = append(tris, triangle{v: v, cc: cc, ok: ok})
	}
	return tris, nil
}

func polygons(g orb.Geometry) []orb.Polygon {
	switch g := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}
	case orb.MultiPolygon:
		return g
	case orb.Collection:
		var out []orb.Polygon
		for _, part := range g {
			out = append(out, polygons(part)...)
		}
		return out
	}
	return nil
}
