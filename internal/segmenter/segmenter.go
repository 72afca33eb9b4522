// Package segmenter splits a sampled centerline into runs of similar width.
package segmenter

import (
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/floats"

	"github.com/dabreegster/polygon-width/internal/geometry"
	"github.com/dabreegster/polygon-width/internal/monitoring"
)

// Sample is one measured width at a point on a centerline.
type Sample struct {
	Point orb.Point
	Width float64
}

// Segment is a piece of the centerline with the range of widths measured
// along it.
type Segment struct {
	Line     orb.LineString
	MinWidth float64
	MaxWidth float64
}

// Split groups samples, given in order along ls, into greedy runs. A run
// starting at sample i extends while the next width is within granularity of
// sample i's width; the first sample outside the tolerance (or the last
// sample) closes the run and also starts the next one. Each run becomes the
// part of ls between its first and last sample, so the geometry between
// samples is kept. Runs with no length are dropped.
func Split(ls orb.LineString, samples []Sample, granularity float64) []Segment {
	n := len(samples)
	if n < 2 || len(ls) < 2 {
		return nil
	}

	line, err := geometry.NewLine(ls)
	if err != nil {
		monitoring.Logf("[Segmenter] centerline skipped: %v", err)
		return nil
	}

	widths := make([]float64, n)
	for i, s := range samples {
		widths[i] = s.Width
	}

	var out []Segment
	for i := 0; i < n-1; {
		j := i + 1
		for j < n-1 && math.Abs(widths[i]-widths[j]) <= granularity {
			j++
		}

		if !geometry.SamePoint(samples[i].Point, samples[j].Point) {
			from := line.Locate(samples[i].Point)
			to := line.Locate(samples[j].Point)
			if slice, ok := line.SubLine(from, to); ok {
				run := widths[i : j+1]
				out = append(out, Segment{
					Line:     slice,
					MinWidth: floats.Min(run),
					MaxWidth: floats.Max(run),
				})
			}
		}
		i = j
	}
	return out
}
