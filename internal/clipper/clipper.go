// Package clipper cuts a straight probe line down to the part of a polygon
// that surrounds a reference point.
package clipper

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/dabreegster/polygon-width/internal/geometry"
	"github.com/dabreegster/polygon-width/internal/monitoring"
)

// Clip intersects the probe from start to end with the boundary of shape and
// returns the two hits nearest to midpoint as a two-point line.
//
// Hits that quantize to the same point count once, so a probe that only
// grazes a vertex has a single hit and produces no result, and the two
// returned points are never coincident. When midpointRatio is positive, a
// pair whose nearer/farther distance ratio is below it is rejected: that
// asymmetry comes from probes catching a corner on one side.
func Clip(shape *geometry.Shape, midpoint, start, end orb.Point, midpointRatio float64) (orb.LineString, bool) {
	type hit struct {
		p     orb.Point
		dist  float64
		along float64
	}

	points, err := shape.BoundaryHits(orb.LineString{start, end})
	if err != nil {
		monitoring.Logf("[Clipper] sample at %v skipped: %v", midpoint, err)
		return nil, false
	}

	var hits []hit
	seen := make(map[geometry.Key]bool)
	for _, p := range points {
		k := geometry.Quantize(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		hits = append(hits, hit{p: p, dist: planar.Distance(p, midpoint), along: planar.Distance(p, start)})
	}
	if len(hits) < 2 {
		return nil, false
	}

	// Equal distances resolve in order from start.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].along < hits[j].along
	})
	near, far := hits[0], hits[1]

	if midpointRatio > 0 && far.dist > 0 && near.dist/far.dist < midpointRatio {
		return nil, false
	}
	return orb.LineString{near.p, far.p}, true
}
