// Package report renders an HTML summary of a batch: a bar chart of the
// mean width of every pavement and one width profile chart per pavement.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/dabreegster/polygon-width/internal/pavement"
)

// Write renders the report for pavements to w. Pavements without width
// samples appear in the overview only.
func Write(w io.Writer, title string, pavements []*pavement.Pavement) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(overview(title, pavements))

	for i, p := range pavements {
		if len(p.Profiles) == 0 {
			continue
		}
		page.AddCharts(profileChart(i, p))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}

func overview(title string, pavements []*pavement.Pavement) *charts.Bar {
	x := make([]string, len(pavements))
	mean := make([]opts.BarData, len(pavements))
	lo := make([]opts.BarData, len(pavements))
	hi := make([]opts.BarData, len(pavements))
	for i, p := range pavements {
		s := p.Summary()
		x[i] = fmt.Sprintf("#%d", i)
		mean[i] = opts.BarData{Value: round2(s.MeanWidth)}
		lo[i] = opts.BarData{Value: round2(s.MinWidth)}
		hi[i] = opts.BarData{Value: round2(s.MaxWidth)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("pavements=%d", len(pavements))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Width (m)"}),
	)
	bar.SetXAxis(x).
		AddSeries("min", lo).
		AddSeries("mean", mean).
		AddSeries("max", hi)
	return bar
}

func profileChart(idx int, p *pavement.Pavement) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Pavement %d", idx), Subtitle: fmt.Sprintf("skeletons=%d", len(p.Skeletons))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Distance (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Width (m)", Min: 0}),
	)
	for _, prof := range p.Profiles {
		data := make([]opts.LineData, 0, len(prof.Samples))
		for _, s := range prof.Samples {
			data = append(data, opts.LineData{Value: []interface{}{round2(s.Offset), round2(s.Width)}})
		}
		line.AddSeries(fmt.Sprintf("skeleton %d", prof.Skeleton), data,
			charts.WithLineChartOpts(opts.LineChart{Step: "middle"}),
		)
	}
	return line
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
