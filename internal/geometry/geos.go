package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/twpayne/go-geos"
)

// ToGEOS copies g into a GEOS geometry owned by ctx. Polygon rings are
// closed first because GEOS rejects open rings.
func ToGEOS(ctx *geos.Context, g orb.Geometry) (*geos.Geom, error) {
	data, err := wkb.Marshal(closeRings(g))
	if err != nil {
		return nil, fmt.Errorf("encode %s as wkb: %w", g.GeoJSONType(), err)
	}
	out, err := ctx.NewGeomFromWKB(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s in geos: %w", g.GeoJSONType(), err)
	}
	return out, nil
}

// FromGEOS copies a GEOS geometry back into orb.
func FromGEOS(g *geos.Geom) (orb.Geometry, error) {
	out, err := wkb.Unmarshal(g.ToWKB())
	if err != nil {
		return nil, fmt.Errorf("decode geos wkb: %w", err)
	}
	return out, nil
}

func closeRings(g orb.Geometry) orb.Geometry {
	switch g := g.(type) {
	case orb.Polygon:
		out := make(orb.Polygon, len(g))
		for i, ring := range g {
			out[i] = Closed(ring)
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(g))
		for i, poly := range g {
			out[i] = closeRings(poly).(orb.Polygon)
		}
		return out
	}
	return g
}

// points returns the point parts of g and the endpoints of its line parts.
func points(g orb.Geometry) []orb.Point {
	switch g := g.(type) {
	case orb.Point:
		return []orb.Point{g}
	case orb.MultiPoint:
		return g
	case orb.LineString:
		if len(g) == 0 {
			return nil
		}
		return []orb.Point{g[0], g[len(g)-1]}
	case orb.MultiLineString:
		var out []orb.Point
		for _, ls := range g {
			out = append(out, points(ls)...)
		}
		return out
	case orb.Collection:
		var out []orb.Point
		for _, part := range g {
			out = append(out, points(part)...)
		}
		return out
	}
	return nil
}

// recoverGEOS turns a panic raised by a failed GEOS call into err.
func recoverGEOS(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("geos: %v", r)
	}
}
