// Package geometry holds the planar helpers shared by the width pipeline:
// quantized point keys, angles, and the bridge to GEOS used for boundary
// intersections, containment, distances and linear referencing.
//
// All functions assume planar coordinates in metres (see internal/projection).
// Shape and Line each own a GEOS context, so values built from different
// goroutines never contend on one context.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// QuantizePrecision is the multiplier applied before rounding coordinates for
// equality checks. 1e3 in a metre plane means points within a millimetre are
// treated as identical.
const QuantizePrecision = 1e3

// lengthEpsilon is the length below which a slice is treated as degenerate.
const lengthEpsilon = 1e-12

// Key is a quantized point usable as a map key.
type Key struct {
	X, Y int64
}

// Quantize rounds a point to QuantizePrecision.
func Quantize(p orb.Point) Key {
	return Key{
		X: int64(math.Round(p[0] * QuantizePrecision)),
		Y: int64(math.Round(p[1] * QuantizePrecision)),
	}
}

// SamePoint reports whether two points quantize to the same key.
func SamePoint(a, b orb.Point) bool {
	return Quantize(a) == Quantize(b)
}

// AngleDegrees returns the direction from a to b as atan2(dy, dx) in degrees.
func AngleDegrees(a, b orb.Point) float64 {
	return math.Atan2(b[1]-a[1], b[0]-a[0]) * 180 / math.Pi
}

// ProjectAway moves p by distance along the given angle (degrees).
func ProjectAway(p orb.Point, angleDegrees, distance float64) orb.Point {
	sin, cos := math.Sincos(angleDegrees * math.Pi / 180)
	return orb.Point{p[0] + distance*cos, p[1] + distance*sin}
}

// UnsignedArea is the absolute planar area enclosed by a ring.
func UnsignedArea(r orb.Ring) float64 {
	return math.Abs(planar.Area(orb.Polygon{r}))
}

// Closed returns ring with its first point repeated at the end if it is not
// already closed.
func Closed(ring orb.Ring) orb.Ring {
	if len(ring) == 0 || ring[0] == ring[len(ring)-1] {
		return ring
	}
	out := make(orb.Ring, len(ring), len(ring)+1)
	copy(out, ring)
	return append(out, ring[0])
}

// PolygonArea is the area of the exterior ring less the area of every hole.
func PolygonArea(poly orb.Polygon) float64 {
	if len(poly) == 0 {
		return 0
	}
	area := UnsignedArea(poly[0])
	for _, hole := range poly[1:] {
		area -= UnsignedArea(hole)
	}
	return math.Max(area, 0)
}
