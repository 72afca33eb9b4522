package geometry

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-geos"
)

// Shape is a polygon parsed once into GEOS, with its boundary and a prepared
// copy for repeated predicates.
type Shape struct {
	ctx      *geos.Context
	polygon  *geos.Geom // owns the geometry prepared refers to
	prepared *geos.PrepGeom
	boundary *geos.Geom
}

// NewShape parses poly. Rings are closed if needed; GEOS still rejects rings
// with fewer than four points.
func NewShape(poly orb.Polygon) (s *Shape, err error) {
	if len(poly) == 0 {
		return nil, errors.New("empty polygon")
	}
	defer recoverGEOS(&err)

	ctx := geos.NewContext()
	g, err := ToGEOS(ctx, poly)
	if err != nil {
		return nil, err
	}
	return &Shape{
		ctx:      ctx,
		polygon:  g,
		prepared: g.Prepare(),
		boundary: g.Boundary(),
	}, nil
}

// ContainsLine reports whether ls lies inside the polygon: no point of ls is
// outside it and at least one is in its interior. Vertices may touch the
// boundary.
func (s *Shape) ContainsLine(ls orb.LineString) (ok bool) {
	if len(ls) < 2 {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	g, err := ToGEOS(s.ctx, ls)
	if err != nil {
		return false
	}
	defer g.Destroy()
	return s.prepared.Contains(g)
}

// Covers reports whether p is inside the polygon or on its boundary.
func (s *Shape) Covers(p orb.Point) bool {
	pt := s.point(p)
	defer pt.Destroy()
	return s.prepared.Covers(pt)
}

// DistanceToBoundary is the shortest distance from p to any ring of the
// polygon, exterior or hole.
func (s *Shape) DistanceToBoundary(p orb.Point) float64 {
	pt := s.point(p)
	defer pt.Destroy()
	return s.boundary.Distance(pt)
}

// BoundaryHits returns where ls meets the polygon boundary. Where ls runs
// along the boundary, both ends of the shared stretch are reported.
func (s *Shape) BoundaryHits(ls orb.LineString) (hits []orb.Point, err error) {
	if len(ls) < 2 {
		return nil, nil
	}
	defer recoverGEOS(&err)

	g, err := ToGEOS(s.ctx, ls)
	if err != nil {
		return nil, err
	}
	defer g.Destroy()

	meet := s.boundary.Intersection(g)
	defer meet.Destroy()
	if meet.IsEmpty() {
		return nil, nil
	}
	out, err := FromGEOS(meet)
	if err != nil {
		return nil, err
	}
	return points(out), nil
}

func (s *Shape) point(p orb.Point) *geos.Geom {
	return s.ctx.NewPoint([]float64{p[0], p[1]})
}
