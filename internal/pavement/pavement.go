// Package pavement measures the width of one pavement polygon along its
// centerline.
//
// A Pavement is created from a polygon in planar metres and a Config, then
// Calculate runs the whole pipeline once: skeleton extraction, filtering,
// joining, pruning, perpendicular width sampling, thickened strips and width
// segmentation. Degenerate shapes yield empty collections rather than errors.
package pavement

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/dabreegster/polygon-width/internal/clipper"
	"github.com/dabreegster/polygon-width/internal/geometry"
	"github.com/dabreegster/polygon-width/internal/joiner"
	"github.com/dabreegster/polygon-width/internal/monitoring"
	"github.com/dabreegster/polygon-width/internal/sampler"
	"github.com/dabreegster/polygon-width/internal/segmenter"
	"github.com/dabreegster/polygon-width/internal/skeleton"
)

// ErrAlreadyCalculated is returned by a second call to Calculate.
var ErrAlreadyCalculated = errors.New("pavement already calculated")

// ThickenedLine is the strip between two consecutive width samples, with
// the width measured at each end.
type ThickenedLine struct {
	Polygon orb.Polygon
	Width1  float64
	Width2  float64
}

// WidthSample is one accepted width measurement.
type WidthSample struct {
	Offset float64   // distance along the skeleton (m)
	Point  orb.Point // sample point on the skeleton
	Angle  float64   // skeleton direction at the sample (degrees)
	Width  float64
}

// Profile holds the accepted samples of one skeleton, in order.
type Profile struct {
	Skeleton int // index into Pavement.Skeletons
	Samples  []WidthSample
}

// Pavement is the unit of work: one polygon and everything derived from it.
type Pavement struct {
	Polygon         orb.Polygon
	Skeletons       []orb.LineString
	PerpLines       []orb.LineString
	ThickenedLines  []ThickenedLine
	CenterWithWidth []segmenter.Segment
	Profiles        []Profile

	cfg        Config
	shape      *geometry.Shape
	calculated bool
}

// New prepares a pavement. Holes smaller than cfg.RemoveHoles are dropped
// from a copy of polygon; the caller's polygon is not modified. A polygon
// GEOS cannot parse is kept but measures as empty.
func New(polygon orb.Polygon, cfg Config) *Pavement {
	p := &Pavement{
		Polygon: removeHoles(polygon, cfg.RemoveHoles),
		cfg:     cfg,
	}
	if len(p.Polygon) > 0 && len(p.Polygon[0]) >= 4 {
		shape, err := geometry.NewShape(p.Polygon)
		if err != nil {
			monitoring.Logf("[Pavement] polygon skipped: %v", err)
		}
		p.shape = shape
	}
	return p
}

func removeHoles(polygon orb.Polygon, minArea float64) orb.Polygon {
	if len(polygon) == 0 {
		return nil
	}
	out := orb.Polygon{polygon[0].Clone()}
	for _, hole := range polygon[1:] {
		if minArea > 0 && geometry.UnsignedArea(hole) < minArea {
			continue
		}
		out = append(out, hole.Clone())
	}
	return out
}

// Calculated reports whether Calculate has run.
func (p *Pavement) Calculated() bool {
	return p.calculated
}

// Calculate runs the pipeline. It may only be called once.
func (p *Pavement) Calculate() error {
	if p.calculated {
		return ErrAlreadyCalculated
	}
	p.calculated = true

	if p.shape == nil {
		return nil
	}
	p.skeletonize()
	p.measure()
	return nil
}

func (p *Pavement) skeletonize() {
	// The inward skeleton is wanted, but for some shapes only the other
	// orientation survives filtering.
	for _, inward := range []bool{true, false} {
		var kept []orb.LineString
		for _, line := range skeleton.Extract(p.Polygon, inward, p.cfg.Skeleton) {
			if p.keepFragment(line) {
				kept = append(kept, line)
			}
		}
		if len(kept) == 0 {
			continue
		}
		if !inward {
			monitoring.Logf("[Pavement] inward skeleton empty after filtering, using %d outward fragments", len(kept))
		}

		if p.cfg.JoinSkeletons {
			kept = joiner.Join(kept)
		}
		if p.cfg.RemoveShortSkeletons > 0 {
			kept = removeShort(kept, p.cfg.RemoveShortSkeletons)
		}
		p.Skeletons = kept
		return
	}
}

func (p *Pavement) keepFragment(line orb.LineString) bool {
	if p.cfg.FilterSkeletonsOutside && !p.shape.ContainsLine(line) {
		return false
	}
	if threshold := p.cfg.FilterSkeletonsNearBoundary; threshold > 0 {
		for _, end := range []orb.Point{line[0], line[len(line)-1]} {
			if p.shape.DistanceToBoundary(end) < threshold {
				return false
			}
		}
	}
	return true
}

func removeShort(lines []orb.LineString, ratio float64) []orb.LineString {
	longest := 0.0
	for _, ls := range lines {
		longest = max(longest, planar.Length(ls))
	}
	if longest == 0 {
		return lines
	}
	out := lines[:0]
	for _, ls := range lines {
		if planar.Length(ls)/longest >= ratio {
			out = append(out, ls)
		}
	}
	return out
}

func (p *Pavement) measure() {
	step := p.cfg.MakePerpsStepSize
	if step <= 0 {
		return
	}

	for idx, line := range p.Skeletons {
		var samples []WidthSample
		i := 0
		for pt, angle := range sampler.Walk(line, step) {
			offset := float64(i) * step
			i++

			start := geometry.ProjectAway(pt, angle-90, p.cfg.PerpProjectDistance)
			end := geometry.ProjectAway(pt, angle+90, p.cfg.PerpProjectDistance)
			perp, ok := clipper.Clip(p.shape, pt, start, end, p.cfg.PerpMidpointRatio)
			if !ok {
				continue
			}
			// Clip never returns coincident ends, so width is positive.
			width := planar.Length(perp)
			p.PerpLines = append(p.PerpLines, perp)
			samples = append(samples, WidthSample{Offset: offset, Point: pt, Angle: angle, Width: width})
		}
		if len(samples) < 2 {
			continue
		}

		p.Profiles = append(p.Profiles, Profile{Skeleton: idx, Samples: samples})
		for j := 0; j+1 < len(samples); j++ {
			p.ThickenedLines = append(p.ThickenedLines, thicken(samples[j], samples[j+1]))
		}

		points := make([]segmenter.Sample, len(samples))
		for j, s := range samples {
			points[j] = segmenter.Sample{Point: s.Point, Width: s.Width}
		}
		p.CenterWithWidth = append(p.CenterWithWidth, segmenter.Split(line, points, p.cfg.WidthGranularity)...)
	}
}

// thicken builds the quadrilateral spanning half of each sample's width on
// both sides of the skeleton.
func thicken(a, b WidthSample) ThickenedLine {
	first := geometry.ProjectAway(a.Point, a.Angle-90, a.Width/2)
	ring := orb.Ring{
		first,
		geometry.ProjectAway(a.Point, a.Angle+90, a.Width/2),
		geometry.ProjectAway(b.Point, b.Angle+90, b.Width/2),
		geometry.ProjectAway(b.Point, b.Angle-90, b.Width/2),
		first,
	}
	return ThickenedLine{Polygon: orb.Polygon{ring}, Width1: a.Width, Width2: b.Width}
}
