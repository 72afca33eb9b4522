// Package projection maps a batch of WGS84 geometries onto a local Euclidean
// plane measured in metres, and back again.
//
// The plane is anchored to the bounding box of the whole batch: x runs east
// from the western edge and y runs south from the northern edge, so (0, 0) is
// the top-left corner like screen coordinates. A single Plane must be shared
// by every polygon of a batch and used again to reproject the outputs.
package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/project"
)

// precision is the rounding applied to geodetic output (6 decimal places).
const precision = 1e6

var (
	// ErrEmptyBounds is returned when the input geometry has no points.
	ErrEmptyBounds = errors.New("projection: empty bounds")
	// ErrDegenerateBounds is returned when the bounds have no extent in
	// longitude or latitude.
	ErrDegenerateBounds = errors.New("projection: degenerate bounds")
)

// Plane is the projection context for one batch. It is read-only once built
// and safe to share between goroutines.
type Plane struct {
	Bound  orb.Bound
	Width  float64 // metres along the southern edge
	Height float64 // metres along the western edge
}

// New derives a Plane from the bounding box of g.
func New(g orb.Geometry) (*Plane, error) {
	if g == nil {
		return nil, ErrEmptyBounds
	}
	b := g.Bound()
	if b.IsEmpty() {
		return nil, ErrEmptyBounds
	}
	if b.Max[0] == b.Min[0] || b.Max[1] == b.Min[1] {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateBounds, b)
	}

	bottomLeft := orb.Point{b.Min[0], b.Min[1]}
	bottomRight := orb.Point{b.Max[0], b.Min[1]}
	topLeft := orb.Point{b.Min[0], b.Max[1]}

	return &Plane{
		Bound:  b,
		Width:  geo.DistanceHaversine(bottomLeft, bottomRight),
		Height: geo.DistanceHaversine(bottomLeft, topLeft),
	}, nil
}

// ToPlane converts a (lon, lat) point into plane metres.
func (p *Plane) ToPlane(pt orb.Point) orb.Point {
	dLon := p.Bound.Max[0] - p.Bound.Min[0]
	dLat := p.Bound.Max[1] - p.Bound.Min[1]
	x := p.Width * (pt[0] - p.Bound.Min[0]) / dLon
	y := p.Height - p.Height*(pt[1]-p.Bound.Min[1])/dLat
	return orb.Point{x, y}
}

// ToGeodetic converts plane metres back into (lon, lat), rounded to six
// decimal places.
func (p *Plane) ToGeodetic(pt orb.Point) orb.Point {
	dLon := p.Bound.Max[0] - p.Bound.Min[0]
	dLat := p.Bound.Max[1] - p.Bound.Min[1]
	lon := p.Bound.Min[0] + pt[0]/p.Width*dLon
	lat := p.Bound.Min[1] + (p.Height-pt[1])/p.Height*dLat
	return orb.Point{round(lon), round(lat)}
}

// PolygonToPlane returns a projected copy of poly.
func (p *Plane) PolygonToPlane(poly orb.Polygon) orb.Polygon {
	return project.Polygon(poly.Clone(), p.ToPlane)
}

// GeometryToPlane returns a projected copy of g.
func (p *Plane) GeometryToPlane(g orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(g), p.ToPlane)
}

// GeometryToGeodetic returns a copy of g converted from plane metres to WGS84.
func (p *Plane) GeometryToGeodetic(g orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(g), p.ToGeodetic)
}

func round(v float64) float64 {
	return math.Round(v*precision) / precision
}
