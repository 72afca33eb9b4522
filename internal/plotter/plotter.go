// Package plotter draws debug images of calculated pavements: the polygon
// outline with its skeletons and perpendicular probes, and the width profile
// along each skeleton.
package plotter

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/dabreegster/polygon-width/internal/pavement"
)

var (
	outlineColor  = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	skeletonColor = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	perpColor     = color.RGBA{R: 40, G: 110, B: 220, A: 160}
)

// Render writes map_NNN.png and, when the pavement has width samples,
// widths_NNN.png for every pavement into dir. Returns the number of images
// written.
func Render(dir string, pavements []*pavement.Pavement) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	count := 0
	for i, p := range pavements {
		if len(p.Polygon) == 0 {
			continue
		}

		m, err := mapPlot(i, p)
		if err != nil {
			return count, fmt.Errorf("pavement %d: %w", i, err)
		}
		if err := m.Save(8*vg.Inch, 8*vg.Inch, filepath.Join(dir, fmt.Sprintf("map_%03d.png", i))); err != nil {
			return count, fmt.Errorf("save map plot: %w", err)
		}
		count++

		if len(p.Profiles) == 0 {
			continue
		}
		w, err := widthPlot(i, p)
		if err != nil {
			return count, fmt.Errorf("pavement %d: %w", i, err)
		}
		if err := w.Save(14*vg.Inch, 6*vg.Inch, filepath.Join(dir, fmt.Sprintf("widths_%03d.png", i))); err != nil {
			return count, fmt.Errorf("save width plot: %w", err)
		}
		count++
	}
	return count, nil
}

func mapPlot(idx int, p *pavement.Pavement) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Pavement %d", idx)
	pl.X.Label.Text = "x (m)"
	pl.Y.Label.Text = "y (m)"

	for _, ring := range p.Polygon {
		if err := addLine(pl, orb.LineString(ring), outlineColor, 1); err != nil {
			return nil, err
		}
	}
	for _, perp := range p.PerpLines {
		if err := addLine(pl, perp, perpColor, 0.5); err != nil {
			return nil, err
		}
	}
	for _, sk := range p.Skeletons {
		if err := addLine(pl, sk, skeletonColor, 2); err != nil {
			return nil, err
		}
	}

	// Planar y grows downwards; keep the picture the right way up and
	// undistorted.
	pl.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	squareAxes(pl)
	return pl, nil
}

func widthPlot(idx int, p *pavement.Pavement) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Pavement %d - Width Profile", idx)
	pl.X.Label.Text = "Distance along skeleton (m)"
	pl.Y.Label.Text = "Width (m)"

	colors := generateColors(len(p.Profiles))
	for i, prof := range p.Profiles {
		pts := make(plotter.XYs, 0, len(prof.Samples))
		for _, s := range prof.Samples {
			pts = append(pts, plotter.XY{X: s.Offset, Y: s.Width})
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		points.Color = colors[i]
		pl.Add(line, points)
		pl.Legend.Add(fmt.Sprintf("skeleton %d", prof.Skeleton), line)
	}

	pl.Legend.Top = true
	pl.Legend.Left = false
	pl.Legend.XOffs = -10
	pl.Legend.YOffs = -10
	pl.Y.Min = 0
	return pl, nil
}

func addLine(pl *plot.Plot, ls orb.LineString, c color.Color, width float64) error {
	if len(ls) < 2 {
		return nil
	}
	pts := make(plotter.XYs, len(ls))
	for i, pt := range ls {
		pts[i] = plotter.XY{X: pt[0], Y: pt[1]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(width)
	pl.Add(line)
	return nil
}

// squareAxes widens the shorter axis so both cover the same span.
func squareAxes(pl *plot.Plot) {
	dx := pl.X.Max - pl.X.Min
	dy := pl.Y.Max - pl.Y.Min
	switch {
	case dx > dy:
		pad := (dx - dy) / 2
		pl.Y.Min -= pad
		pl.Y.Max += pad
	case dy > dx:
		pad := (dy - dx) / 2
		pl.X.Min -= pad
		pl.X.Max += pad
	}
}

// generateColors creates a palette of distinct colors, one per profile.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
