package pavement

import (
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses a calculated pavement into a few numbers for logs and
// the results store.
type Summary struct {
	Skeletons      int
	SkeletonLength float64 // total, metres
	Samples        int
	MinWidth       float64
	MaxWidth       float64
	MeanWidth      float64
	StdDevWidth    float64
}

// Summary computes width statistics over every accepted sample. Widths are
// zero when nothing was measured.
func (p *Pavement) Summary() Summary {
	s := Summary{Skeletons: len(p.Skeletons)}
	for _, ls := range p.Skeletons {
		s.SkeletonLength += planar.Length(ls)
	}

	var widths []float64
	for _, prof := range p.Profiles {
		for _, sample := range prof.Samples {
			widths = append(widths, sample.Width)
		}
	}
	s.Samples = len(widths)
	if len(widths) == 0 {
		return s
	}

	s.MinWidth = floats.Min(widths)
	s.MaxWidth = floats.Max(widths)
	if len(widths) == 1 {
		s.MeanWidth = widths[0]
		return s
	}
	s.MeanWidth, s.StdDevWidth = stat.MeanStdDev(widths, nil)
	return s
}
