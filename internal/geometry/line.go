package geometry

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/twpayne/go-geos"
)

// Line is a LineString parsed into GEOS for linear referencing. Offsets are
// arc lengths from the first vertex.
type Line struct {
	ctx     *geos.Context
	geom    *geos.Geom
	ls      orb.LineString
	offsets []float64 // offset of each vertex
}

// NewLine parses ls, which needs at least two points.
func NewLine(ls orb.LineString) (l *Line, err error) {
	if len(ls) < 2 {
		return nil, errors.New("line needs at least two points")
	}
	defer recoverGEOS(&err)

	ctx := geos.NewContext()
	g, err := ToGEOS(ctx, ls)
	if err != nil {
		return nil, err
	}
	offsets := make([]float64, len(ls))
	for i := 1; i < len(ls); i++ {
		offsets[i] = offsets[i-1] + planar.Distance(ls[i-1], ls[i])
	}
	return &Line{ctx: ctx, geom: g, ls: ls, offsets: offsets}, nil
}

// Length is the arc length of the whole line.
func (l *Line) Length() float64 {
	return l.offsets[len(l.offsets)-1]
}

// Locate returns the offset of the point on the line closest to p. Ties
// resolve to the earliest segment.
func (l *Line) Locate(p orb.Point) float64 {
	pt := l.ctx.NewPoint([]float64{p[0], p[1]})
	defer pt.Destroy()
	return l.geom.Project(pt)
}

// Interpolate returns the point at offset, clamped to the ends of the line.
func (l *Line) Interpolate(offset float64) (orb.Point, error) {
	if offset <= 0 {
		return l.ls[0], nil
	}
	if offset >= l.Length() {
		return l.ls[len(l.ls)-1], nil
	}

	g := l.geom.Interpolate(offset)
	defer g.Destroy()
	out, err := FromGEOS(g)
	if err != nil {
		return orb.Point{}, err
	}
	p, ok := out.(orb.Point)
	if !ok {
		return orb.Point{}, fmt.Errorf("interpolate returned %s", out.GeoJSONType())
	}
	return p, nil
}

// SubLine slices the line between two offsets, keeping every vertex that
// lies strictly between them. The offsets may be given in either order; the
// result always runs in the direction of the line. It returns false when the
// slice has no length.
func (l *Line) SubLine(from, to float64) (orb.LineString, bool) {
	if from > to {
		from, to = to, from
	}
	if to-from <= lengthEpsilon {
		return nil, false
	}

	start, err := l.Interpolate(from)
	if err != nil {
		return nil, false
	}
	end, err := l.Interpolate(to)
	if err != nil {
		return nil, false
	}

	result := orb.LineString{start}
	for i := 1; i < len(l.ls); i++ {
		if l.offsets[i] <= from {
			continue
		}
		if l.offsets[i] >= to {
			break
		}
		if !SamePoint(result[len(result)-1], l.ls[i]) {
			result = append(result, l.ls[i])
		}
	}
	if !SamePoint(result[len(result)-1], end) {
		result = append(result, end)
	}
	if len(result) < 2 {
		return nil, false
	}
	return result, true
}
