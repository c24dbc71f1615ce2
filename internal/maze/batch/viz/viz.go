// Package viz renders batch reports as a PNG distance histogram and an HTML
// chart page.
package viz

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/maze3d/internal/maze/batch"
	"github.com/banshee-data/maze3d/internal/maze/solve"
)

// ErrNoData is returned when a report has no successful iteration to plot.
var ErrNoData = errors.New("report has no successful iterations")

const (
	maxBins   = 30
	pngWidth  = 10 * vg.Inch
	pngHeight = 5 * vg.Inch
)

// DistanceHistogram builds the goal-distance histogram of r.
func DistanceHistogram(r *batch.Report) (*plot.Plot, error) {
	dists := r.Distances()
	if len(dists) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - goal distance (size=%d, N=%d)", r.Title, r.Size, r.N)
	p.X.Label.Text = "BFS distance"
	p.Y.Label.Text = "Iterations"

	h, err := plotter.NewHist(plotter.Values(dists), binCount(dists))
	if err != nil {
		return nil, fmt.Errorf("build histogram: %w", err)
	}
	h.LineStyle.Width = vg.Points(1)
	p.Add(h)
	return p, nil
}

// WriteDistanceHistogram saves the goal-distance histogram of r as a PNG.
func WriteDistanceHistogram(r *batch.Report, path string) error {
	p, err := DistanceHistogram(r)
	if err != nil {
		return err
	}
	if err := p.Save(pngWidth, pngHeight, path); err != nil {
		return fmt.Errorf("save histogram %s: %w", path, err)
	}
	return nil
}

// binCount uses one bin per distinct integer distance, capped at maxBins.
func binCount(dists []float64) int {
	lo, hi := dists[0], dists[0]
	for _, d := range dists[1:] {
		lo, hi = min(lo, d), max(hi, d)
	}
	return max(1, min(maxBins, int(hi-lo)+1))
}

// RenderHTML writes a page with the outcome breakdown of r and the goal
// distance of every iteration.
func RenderHTML(r *batch.Report, w io.Writer) error {
	page := components.NewPage()
	page.PageTitle = r.Title
	page.AddCharts(outcomeBar(r), distanceLine(r))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report page: %w", err)
	}
	return nil
}

func outcomeBar(r *batch.Report) *charts.Bar {
	var gen, sel, val int
	for _, o := range r.Iterations {
		switch o.Kind {
		case batch.GenerateFail:
			gen++
		case batch.SelectFail:
			sel++
		case batch.ValidateFail:
			val++
		}
	}
	tiers := r.Stats.Tiers

	x := []string{"OK", "margin band", "non-corner", "any reachable",
		string(batch.GenerateFail), string(batch.SelectFail), string(batch.ValidateFail)}
	y := []opts.BarData{
		{Value: r.OK},
		{Value: tiers[solve.TierMarginBand]},
		{Value: tiers[solve.TierNonCorner]},
		{Value: tiers[solve.TierAnyReachable]},
		{Value: gen},
		{Value: sel},
		{Value: val},
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("[%s] outcomes", r.Title),
			Subtitle: fmt.Sprintf("size=%d margin=%d loop=%.3f N=%d OK=%d FAIL=%d", r.Size, r.Margin, r.LoopChance, r.N, r.OK, r.Fail),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("iterations", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func distanceLine(r *batch.Report) *charts.Line {
	x := make([]string, 0, len(r.Iterations))
	y := make([]opts.LineData, 0, len(r.Iterations))
	for _, o := range r.Iterations {
		x = append(x, fmt.Sprintf("#%d", o.Iteration))
		y = append(y, opts.LineData{Value: o.Distance, Name: fmt.Sprintf("seed=%d", o.Seed)})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "goal distance per iteration",
			Subtitle: fmt.Sprintf("mean=%.2f stddev=%.2f (-1 = no goal)", r.Stats.Distance.Mean, r.Stats.Distance.StdDev),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "distance"}),
	)
	line.SetXAxis(x).AddSeries("distance", y)
	return line
}
