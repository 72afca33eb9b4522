// Package pipeline runs the width calculation over a batch of WGS84
// polygons.
//
// One projection is derived for the whole batch, every polygon is projected
// with it and measured as an independent Pavement, and the results can be
// reprojected to WGS84 with the same projection. Pavements are calculated in
// parallel and always come back in input order.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/sync/errgroup"

	"github.com/dabreegster/polygon-width/internal/geometry"
	"github.com/dabreegster/polygon-width/internal/monitoring"
	"github.com/dabreegster/polygon-width/internal/pavement"
	"github.com/dabreegster/polygon-width/internal/projection"
	"github.com/dabreegster/polygon-width/internal/segmenter"
	"github.com/dabreegster/polygon-width/internal/timeutil"
)

// Options configures a batch run.
type Options struct {
	Config pavement.Config
	// Workers bounds parallel pavement calculation. Zero uses GOMAXPROCS;
	// one runs sequentially.
	Workers int
	// MaxPerimeterAreaRatio drops polygons whose exterior perimeter divided
	// by area is at least this (1/m), which removes junction-shaped
	// polygons. It is judged after hole removal, so the area excludes the
	// holes that remain. Zero disables the filter.
	MaxPerimeterAreaRatio float64
	// Clock times the batch for logging; nil uses the wall clock.
	Clock timeutil.Clock
}

// Result is the outcome of a batch. Pavements are in planar metres of Plane.
type Result struct {
	Plane *projection.Plane
	// Inputs are the geodetic polygons that were measured, parallel to
	// Pavements.
	Inputs    []orb.Polygon
	Pavements []*pavement.Pavement
	// Skipped counts polygons removed by the junction filter.
	Skipped int
}

// Run measures every polygon. Only a batch whose bounds cannot be projected
// fails outright; a polygon that yields no skeleton simply has empty
// outputs. Cancelling ctx stops scheduling further pavements.
func Run(ctx context.Context, polygons []orb.Polygon, opts Options) (*Result, error) {
	clock := opts.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	start := clock.Now()

	plane, err := projection.New(orb.MultiPolygon(polygons))
	if err != nil {
		return nil, fmt.Errorf("projecting batch of %d polygons: %w", len(polygons), err)
	}

	res := &Result{Plane: plane}
	for i, poly := range polygons {
		p := pavement.New(plane.PolygonToPlane(poly), opts.Config)
		if opts.MaxPerimeterAreaRatio > 0 && len(p.Polygon) > 0 {
			if ratio := perimeterAreaRatio(p.Polygon); ratio >= opts.MaxPerimeterAreaRatio {
				monitoring.Logf("[Pipeline] skipping polygon %d: perimeter/area %.3f >= %.3f", i, ratio, opts.MaxPerimeterAreaRatio)
				res.Skipped++
				continue
			}
		}
		res.Inputs = append(res.Inputs, poly)
		res.Pavements = append(res.Pavements, p)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range res.Pavements {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := p.Calculate(); err != nil {
				return fmt.Errorf("pavement %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	monitoring.Logf("[Pipeline] measured %d pavements (%d skipped) with %d workers in %s",
		len(res.Pavements), res.Skipped, workers, clock.Since(start))
	return res, nil
}

// perimeterAreaRatio is the exterior ring's length over the polygon's area,
// holes excluded. Long road polygons score low; the small pieces mapped at
// junctions score high.
func perimeterAreaRatio(poly orb.Polygon) float64 {
	area := geometry.PolygonArea(poly)
	if area == 0 {
		return 0
	}
	return planar.Length(orb.LineString(geometry.Closed(poly[0]))) / area
}

// Output holds every output collection of a batch in WGS84, aggregated in
// pavement order. Polygons are the working polygons after hole removal.
type Output struct {
	Polygons        []orb.Polygon
	Skeletons       []orb.LineString
	PerpLines       []orb.LineString
	Thickened       []pavement.ThickenedLine
	CenterWithWidth []segmenter.Segment
}

// Geodetic reprojects all pavement outputs with the batch's projection.
func (r *Result) Geodetic() Output {
	var out Output
	for _, p := range r.Pavements {
		if len(p.Polygon) > 0 {
			out.Polygons = append(out.Polygons, r.Plane.GeometryToGeodetic(p.Polygon).(orb.Polygon))
		}
		for _, ls := range p.Skeletons {
			out.Skeletons = append(out.Skeletons, r.lineToGeodetic(ls))
		}
		for _, ls := range p.PerpLines {
			out.PerpLines = append(out.PerpLines, r.lineToGeodetic(ls))
		}
		for _, th := range p.ThickenedLines {
			out.Thickened = append(out.Thickened, pavement.ThickenedLine{
				Polygon: r.Plane.GeometryToGeodetic(th.Polygon).(orb.Polygon),
				Width1:  th.Width1,
				Width2:  th.Width2,
			})
		}
		for _, seg := range p.CenterWithWidth {
			out.CenterWithWidth = append(out.CenterWithWidth, segmenter.Segment{
				Line:     r.lineToGeodetic(seg.Line),
				MinWidth: seg.MinWidth,
				MaxWidth: seg.MaxWidth,
			})
		}
	}
	return out
}

func (r *Result) lineToGeodetic(ls orb.LineString) orb.LineString {
	return r.Plane.GeometryToGeodetic(ls).(orb.LineString)
}
