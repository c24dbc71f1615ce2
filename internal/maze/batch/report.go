package batch

import (
	"fmt"
	"strings"
	"time"

	"github.com/banshee-data/maze3d/internal/maze/grid"
	"github.com/banshee-data/maze3d/internal/maze/solve"
)

// FailKind classifies a failed iteration by the pipeline stage that failed.
type FailKind string

const (
	GenerateFail FailKind = "GENERATE_FAIL"
	SelectFail   FailKind = "SELECT_FAIL"
	ValidateFail FailKind = "VALIDATE_FAIL"
)

// Outcome is the result of one iteration.
type Outcome struct {
	Iteration int
	Seed      int64
	OK        bool
	Kind      FailKind // empty when OK
	Reason    string

	Goal          grid.Cell
	HasGoal       bool
	Tier          solve.Tier
	Distance      int // -1 when no goal was selected
	ReachableOpen int
	BraidOpened   int
}

// FailSample is a retained failure line of the report.
type FailSample struct {
	Iteration int
	Seed      int64
	Kind      FailKind
	Reason    string
}

func (s FailSample) String() string {
	return fmt.Sprintf("#%d seed=%d %s reason=%s", s.Iteration, s.Seed, s.Kind, s.Reason)
}

// Report aggregates a batch run.
type Report struct {
	RunID      string // set by the run store
	Title      string
	Size       int
	Margin     int
	LoopChance float64
	N          int
	OK         int
	Fail       int
	FailLimit  int

	Samples    []FailSample
	Iterations []Outcome
	Stats      Stats

	StartedAt time.Time
	Elapsed   time.Duration
}

func newReport(title string, p Params) *Report {
	return &Report{
		Title:      title,
		Size:       p.Size,
		Margin:     p.Margin,
		LoopChance: p.LoopChance,
		N:          p.N,
		FailLimit:  p.FailLimit,
		Iterations: make([]Outcome, 0, p.N),
	}
}

func (r *Report) add(o Outcome, p Params) {
	r.Iterations = append(r.Iterations, o)
	if o.OK {
		r.OK++
		return
	}
	r.Fail++
	if !p.LogFailDetails {
		return
	}
	s := FailSample{Iteration: o.Iteration, Seed: o.Seed, Kind: o.Kind, Reason: o.Reason}
	logf("%s", s)
	if len(r.Samples) < p.FailLimit {
		r.Samples = append(r.Samples, s)
	}
}

// FailedSeeds returns the seeds of every failed iteration in order.
func (r *Report) FailedSeeds() []int64 {
	var out []int64
	for _, o := range r.Iterations {
		if !o.OK {
			out = append(out, o.Seed)
		}
	}
	return out
}

// String renders the text report: a header line, then the retained fail
// samples under a separator line when there are any.
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] size=%d margin=%d N=%d OK=%d FAIL=%d\n",
		r.Title, r.Size, r.Margin, r.N, r.OK, r.Fail)
	if len(r.Samples) > 0 {
		sb.WriteString("---- Fail Samples ----\n")
		for _, s := range r.Samples {
			sb.WriteString(s.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
