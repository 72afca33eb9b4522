// Package sampler walks a polyline at a fixed arc-length interval.
package sampler

import (
	"iter"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/dabreegster/polygon-width/internal/geometry"
)

// Walk yields the point and tangent angle (degrees) at offsets 0, step,
// 2*step, ... strictly below the length of ls. Each range over the returned
// sequence starts a fresh walk. A non-positive step or a line without length
// yields nothing.
func Walk(ls orb.LineString, step float64) iter.Seq2[orb.Point, float64] {
	return func(yield func(orb.Point, float64) bool) {
		if step <= 0 || len(ls) < 2 {
			return
		}
		length := planar.Length(ls)
		if length <= 0 {
			return
		}

		c := cursor{ls: ls}
		for i := 0; ; i++ {
			offset := float64(i) * step
			if offset >= length {
				return
			}
			if !yield(c.advance(offset)) {
				return
			}
		}
	}
}

// cursor tracks the current segment so a walk is linear in the number of
// vertices.
type cursor struct {
	ls       orb.LineString
	seg      int
	segStart float64
	// lastAngle is the angle of the latest non-degenerate segment seen.
	lastAngle float64
}

// advance returns the point and angle at offset, which must not decrease
// between calls.
func (c *cursor) advance(offset float64) (orb.Point, float64) {
	for ; c.seg+1 < len(c.ls); c.seg++ {
		a, b := c.ls[c.seg], c.ls[c.seg+1]
		segLen := planar.Distance(a, b)
		if segLen == 0 {
			continue
		}
		c.lastAngle = geometry.AngleDegrees(a, b)
		if offset <= c.segStart+segLen {
			t := (offset - c.segStart) / segLen
			return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}, c.lastAngle
		}
		c.segStart += segLen
	}
	// Accumulated drift ran past the last segment.
	return c.ls[len(c.ls)-1], c.lastAngle
}
