package sampler

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	p     orb.Point
	angle float64
}

func collect(ls orb.LineString, step float64) []sample {
	var out []sample
	for p, angle := range Walk(ls, step) {
		out = append(out, sample{p, angle})
	}
	return out
}

func TestWalkStraightLine(t *testing.T) {
	got := collect(orb.LineString{{0, 0}, {10, 0}}, 2.5)
	require.Len(t, got, 4)
	for i, s := range got {
		assert.InDelta(t, float64(i)*2.5, s.p[0], 1e-9)
		assert.InDelta(t, 0, s.p[1], 1e-9)
		assert.InDelta(t, 0, s.angle, 1e-9)
	}
}

func TestWalkExcludesNonCoincidentEnd(t *testing.T) {
	got := collect(orb.LineString{{0, 0}, {0, 9}}, 4)
	require.Len(t, got, 3)
	assert.InDelta(t, 8, got[2].p[1], 1e-9)
	assert.InDelta(t, 90, got[2].angle, 1e-9)
}

func TestWalkCorner(t *testing.T) {
	ls := orb.LineString{{0, 0}, {10, 0}, {10, -10}}
	got := collect(ls, 4)
	require.Len(t, got, 5)

	// 8 is still on the first segment, 12 is 2 along the second.
	assert.InDelta(t, 0, got[2].angle, 1e-9)
	assert.InDelta(t, -90, got[3].angle, 1e-9)
	assert.InDelta(t, 10, got[3].p[0], 1e-9)
	assert.InDelta(t, -2, got[3].p[1], 1e-9)
	assert.InDelta(t, -6, got[4].p[1], 1e-9)
}

func TestWalkSkipsZeroLengthSegments(t *testing.T) {
	ls := orb.LineString{{0, 0}, {0, 0}, {5, 0}, {5, 0}, {5, 5}}
	got := collect(ls, 3)
	require.Len(t, got, 4)
	assert.InDelta(t, 0, got[0].angle, 1e-9, "first sample takes the first real segment's angle")
	assert.InDelta(t, 3, got[1].p[0], 1e-9)
	assert.InDelta(t, 90, got[2].angle, 1e-9)
	assert.InDelta(t, 1, got[2].p[1], 1e-9)
}

func TestWalkDegenerate(t *testing.T) {
	assert.Empty(t, collect(orb.LineString{{0, 0}, {10, 0}}, 0))
	assert.Empty(t, collect(orb.LineString{{0, 0}, {10, 0}}, -1))
	assert.Empty(t, collect(orb.LineString{{1, 1}}, 1))
	assert.Empty(t, collect(orb.LineString{{1, 1}, {1, 1}}, 1))
	assert.Empty(t, collect(nil, 1))
}

func TestWalkRestartsAndStopsEarly(t *testing.T) {
	ls := orb.LineString{{0, 0}, {100, 0}}
	seq := Walk(ls, 1)

	first := 0
	for range seq {
		first++
		if first == 3 {
			break
		}
	}
	assert.Equal(t, 3, first)

	second := 0
	for p := range seq {
		if second == 0 {
			assert.Equal(t, orb.Point{0, 0}, p, "a new range starts from the beginning")
		}
		second++
	}
	assert.Equal(t, 100, second)
}

func TestCursorDriftFallback(t *testing.T) {
	c := cursor{ls: orb.LineString{{0, 0}, {3, 4}}}
	p, angle := c.advance(5 + 1e-9)
	assert.Equal(t, orb.Point{3, 4}, p)
	assert.InDelta(t, math.Atan2(4, 3)*180/math.Pi, angle, 1e-9)
}
