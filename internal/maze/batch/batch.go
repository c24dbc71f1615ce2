// Package batch drives the generate -> select -> validate pipeline over a
// sequence of seeds and aggregates the outcomes into a regression report.
package batch

import (
	"context"
	"runtime"
	"sync"

	"github.com/banshee-data/maze3d/internal/maze/generate"
	"github.com/banshee-data/maze3d/internal/maze/grid"
	"github.com/banshee-data/maze3d/internal/maze/seed"
	"github.com/banshee-data/maze3d/internal/maze/solve"
	"github.com/banshee-data/maze3d/internal/maze/validate"
	"github.com/banshee-data/maze3d/internal/monitoring"
	"github.com/banshee-data/maze3d/internal/timeutil"
)

const (
	DefaultN         = 100
	DefaultFailLimit = 20
	MaxFailLimit     = 200
)

var logf = monitoring.Tagged("batch")

// Params configure a batch run. Generator inputs are normalised the same way
// generate.Run normalises them, once per run.
type Params struct {
	Size                   int
	Margin                 int
	Entrance               grid.Cell
	LoopChance             float64
	BraidMaxOpenNeighbours int

	// N is the number of iterations; values below 1 run once.
	N int
	// FailLimit bounds the number of fail samples kept; clamped to [1, 200].
	FailLimit int
	// LogFailDetails keeps fail samples and logs each failure as it happens.
	LogFailDetails bool

	// Workers is the number of goroutines running iterations. 0 uses
	// GOMAXPROCS. The report does not depend on it.
	Workers int

	// Clock times the run; nil uses the real clock.
	Clock timeutil.Clock
}

// DefaultParams returns the stock regression configuration.
func DefaultParams() Params {
	return Params{
		Size:                   11,
		Margin:                 1,
		Entrance:               generate.DefaultEntrance,
		LoopChance:             generate.DefaultLoopChance,
		BraidMaxOpenNeighbours: generate.DefaultBraidMaxOpenNeighbours,
		N:                      DefaultN,
		FailLimit:              DefaultFailLimit,
		LogFailDetails:         true,
		Workers:                1,
	}
}

func (p Params) normalise() Params {
	gp, _ := p.generatorParams(0).Normalise()
	p.Size = gp.Size
	p.LoopChance = gp.LoopChance
	p.BraidMaxOpenNeighbours = gp.BraidMaxOpenNeighbours

	if p.N < 1 {
		p.N = 1
	}
	if p.FailLimit == 0 {
		p.FailLimit = DefaultFailLimit
	}
	p.FailLimit = min(max(p.FailLimit, 1), MaxFailLimit)

	if p.Workers <= 0 {
		p.Workers = runtime.GOMAXPROCS(0)
	}
	p.Workers = min(p.Workers, p.N)

	if p.Clock == nil {
		p.Clock = timeutil.RealClock{}
	}
	return p
}

func (p Params) generatorParams(s int64) generate.Params {
	return generate.Params{
		Size:                   p.Size,
		Seed:                   s,
		Entrance:               p.Entrance,
		LoopChance:             p.LoopChance,
		BraidMaxOpenNeighbours: p.BraidMaxOpenNeighbours,
	}
}

// Run executes p.N iterations with seeds from policy. Failures are counted,
// never fatal. When ctx is cancelled Run stops dispatching iterations and
// returns the report of the iterations that completed together with the
// context error.
func Run(ctx context.Context, p Params, policy seed.Policy) (*Report, error) {
	p = p.normalise()
	seeds := policy.Seeds(p.N)
	if len(seeds) < p.N {
		p.N = len(seeds)
		p.Workers = max(min(p.Workers, p.N), 1)
	}

	started := p.Clock.Now()
	logf("%s: %d iterations size=%d margin=%d loop=%.3f workers=%d",
		policy.Name(), p.N, p.Size, p.Margin, p.LoopChance, p.Workers)

	outcomes := make([]Outcome, p.N)
	done := make([]bool, p.N)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = runIteration(p, i+1, seeds[i])
				done[i] = true
			}
		}()
	}

	var runErr error
dispatch:
	for i := 0; i < p.N; i++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	r := newReport(policy.Name(), p)
	for i := range outcomes {
		if !done[i] {
			continue
		}
		r.add(outcomes[i], p)
	}
	r.Stats = computeStats(r.Iterations)
	r.StartedAt = started
	r.Elapsed = p.Clock.Since(started)

	if runErr != nil {
		logf("%s: cancelled after %d of %d iterations: %v", policy.Name(), len(r.Iterations), p.N, runErr)
	} else {
		logf("%s: OK=%d FAIL=%d in %s", policy.Name(), r.OK, r.Fail, r.Elapsed)
	}
	return r, runErr
}

// runIteration runs one seed through the pipeline. It owns every grid it
// touches, so iterations may run on any goroutine.
func runIteration(p Params, iter int, s int64) Outcome {
	o := Outcome{Iteration: iter, Seed: s, Distance: -1}

	res, err := generate.Run(p.generatorParams(s))
	if err != nil {
		o.Kind = GenerateFail
		o.Reason = err.Error()
		return o
	}
	o.BraidOpened = res.BraidOpened

	sel := solve.SelectGoalAndPath(res.Grid, res.InnerStart, p.Margin)
	o.ReachableOpen = sel.ReachableOpenCount
	if !sel.OK {
		o.Kind = SelectFail
		o.Reason = sel.Failure()
		return o
	}
	o.Goal = sel.Goal
	o.HasGoal = true
	o.Tier = sel.Tier
	o.Distance = sel.Distance

	vr := validate.Validate(res.Grid, res.InnerStart, sel.Goal, p.Margin)
	if !vr.OK {
		o.Kind = ValidateFail
		o.Reason = vr.Message
		return o
	}

	o.OK = true
	return o
}
