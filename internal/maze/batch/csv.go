package batch

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/banshee-data/maze3d/internal/maze/solve"
)

// CSVWriter wraps csv.Writer with methods for batch output: one summary row
// per run and one raw row per iteration.
type CSVWriter struct {
	Summary *csv.Writer
	Raw     *csv.Writer
}

// NewCSVWriter creates a new CSVWriter with the given summary and raw writers.
func NewCSVWriter(summary, raw io.Writer) *CSVWriter {
	return &CSVWriter{
		Summary: csv.NewWriter(summary),
		Raw:     csv.NewWriter(raw),
	}
}

// SummaryHeaders returns the summary CSV column names.
func SummaryHeaders() []string {
	return []string{
		"title", "size", "margin", "loop_chance", "n", "ok", "fail",
		"distance_mean", "distance_stddev", "distance_min", "distance_max",
		"reachable_open_mean", "reachable_open_stddev",
		"braid_opened_mean", "braid_opened_stddev",
		"tier_margin_band", "tier_non_corner", "tier_any_reachable",
		"elapsed_ms",
	}
}

// RawHeaders returns the per-iteration CSV column names.
func RawHeaders() []string {
	return []string{
		"title", "iter", "seed", "ok", "fail_kind",
		"goal_x", "goal_y", "goal_z", "tier", "distance", "reachable_open", "braid_opened",
		"reason",
	}
}

// WriteHeaders writes the headers to both summary and raw CSV files.
func (c *CSVWriter) WriteHeaders() {
	c.Summary.Write(SummaryHeaders())
	c.Raw.Write(RawHeaders())
}

// WriteReport writes every iteration of r to the raw file and its summary row
// to the summary file.
func (c *CSVWriter) WriteReport(r *Report) error {
	for _, o := range r.Iterations {
		c.WriteRawRow(r.Title, o)
	}
	c.WriteSummary(r)
	return c.Flush()
}

// WriteRawRow writes a single iteration row.
func (c *CSVWriter) WriteRawRow(title string, o Outcome) {
	gx, gy, gz := "", "", ""
	if o.HasGoal {
		gx, gy, gz = fmt.Sprintf("%d", o.Goal.X), fmt.Sprintf("%d", o.Goal.Y), fmt.Sprintf("%d", o.Goal.Z)
	}
	row := []string{
		title,
		fmt.Sprintf("%d", o.Iteration),
		fmt.Sprintf("%d", o.Seed),
		fmt.Sprintf("%t", o.OK),
		string(o.Kind),
		gx, gy, gz,
		o.Tier.String(),
		fmt.Sprintf("%d", o.Distance),
		fmt.Sprintf("%d", o.ReachableOpen),
		fmt.Sprintf("%d", o.BraidOpened),
		o.Reason,
	}
	c.Raw.Write(row)
}

// WriteSummary writes the summary row of r.
func (c *CSVWriter) WriteSummary(r *Report) {
	s := r.Stats
	row := []string{
		r.Title,
		fmt.Sprintf("%d", r.Size),
		fmt.Sprintf("%d", r.Margin),
		fmt.Sprintf("%.6f", r.LoopChance),
		fmt.Sprintf("%d", r.N),
		fmt.Sprintf("%d", r.OK),
		fmt.Sprintf("%d", r.Fail),
		fmt.Sprintf("%.6f", s.Distance.Mean),
		fmt.Sprintf("%.6f", s.Distance.StdDev),
		fmt.Sprintf("%.0f", s.Distance.Min),
		fmt.Sprintf("%.0f", s.Distance.Max),
		fmt.Sprintf("%.6f", s.ReachableOpen.Mean),
		fmt.Sprintf("%.6f", s.ReachableOpen.StdDev),
		fmt.Sprintf("%.6f", s.BraidOpened.Mean),
		fmt.Sprintf("%.6f", s.BraidOpened.StdDev),
		fmt.Sprintf("%d", s.Tiers[solve.TierMarginBand]),
		fmt.Sprintf("%d", s.Tiers[solve.TierNonCorner]),
		fmt.Sprintf("%d", s.Tiers[solve.TierAnyReachable]),
		fmt.Sprintf("%d", r.Elapsed.Milliseconds()),
	}
	c.Summary.Write(row)
}

// Flush flushes both writers and reports the first write error.
func (c *CSVWriter) Flush() error {
	c.Summary.Flush()
	c.Raw.Flush()
	if err := c.Summary.Error(); err != nil {
		return fmt.Errorf("write summary csv: %w", err)
	}
	if err := c.Raw.Error(); err != nil {
		return fmt.Errorf("write raw csv: %w", err)
	}
	return nil
}
