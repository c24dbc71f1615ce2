package batch

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/maze3d/internal/maze/generate"
	"github.com/banshee-data/maze3d/internal/maze/grid"
	"github.com/banshee-data/maze3d/internal/maze/seed"
	"github.com/banshee-data/maze3d/internal/maze/solve"
	"github.com/banshee-data/maze3d/internal/monitoring"
	"github.com/banshee-data/maze3d/internal/testutil"
	"github.com/banshee-data/maze3d/internal/timeutil"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func testClock() *timeutil.MockClock {
	return timeutil.NewSteppingClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), time.Second)
}

func TestRun_Size5Baseline(t *testing.T) {
	p := DefaultParams()
	p.Size = 5
	p.N = 100
	p.Clock = testClock()

	r, err := Run(context.Background(), p, seed.Random{Source: 2024})
	require.NoError(t, err)
	assert.Equal(t, 100, r.N)
	assert.Equal(t, 100, r.OK)
	assert.Equal(t, 0, r.Fail, r.String())
	assert.Empty(t, r.Samples)
	assert.Equal(t, "[RandomSeeds] size=5 margin=1 N=100 OK=100 FAIL=0\n", r.String())
}

func TestRun_TodayVariantSeeds(t *testing.T) {
	p := DefaultParams()
	p.N = 30
	p.Clock = testClock()
	policy := seed.DateVariant{Base: 20240101}

	r, err := Run(context.Background(), p, policy)
	require.NoError(t, err)
	assert.Equal(t, "TodayVariantSeeds", r.Title)
	require.Len(t, r.Iterations, 30)
	for i, o := range r.Iterations {
		assert.Equal(t, i+1, o.Iteration)
		assert.Equal(t, int64(policy.At(i+1)), o.Seed)
	}
	assert.Equal(t, 30, r.OK+r.Fail)
}

func TestRun_WorkerCountInvariance(t *testing.T) {
	base := DefaultParams()
	base.N = 60
	base.LoopChance = 0.1

	var reports []*Report
	for _, workers := range []int{1, 3, 8} {
		p := base
		p.Workers = workers
		p.Clock = testClock()
		r, err := Run(context.Background(), p, seed.Random{Source: 11})
		require.NoError(t, err)
		reports = append(reports, r)
	}
	for _, r := range reports[1:] {
		if diff := cmp.Diff(reports[0].Iterations, r.Iterations); diff != "" {
			t.Errorf("iterations differ across worker counts (-1 worker +n workers):\n%s", diff)
		}
		assert.Equal(t, reports[0].String(), r.String())
		assert.Equal(t, reports[0].Stats, r.Stats)
	}
}

func TestRun_MatchesDirectPipeline(t *testing.T) {
	p := DefaultParams()
	p.N = 5
	p.Clock = testClock()
	policy := seed.Random{Source: 5}

	r, err := Run(context.Background(), p, policy)
	require.NoError(t, err)

	for i, s := range policy.Seeds(5) {
		g, err := generate.Generate(11, s, generate.DefaultEntrance, generate.DefaultLoopChance)
		require.NoError(t, err)
		sel := solve.SelectGoalAndPath(g, grid.Cell{X: 1, Y: 1, Z: 1}, 1)
		require.True(t, sel.OK)

		o := r.Iterations[i]
		assert.Equal(t, sel.Goal, o.Goal)
		assert.Equal(t, sel.Distance, o.Distance)
		assert.Equal(t, sel.ReachableOpenCount, o.ReachableOpen)
	}
}

func TestRun_FailLimitBoundsSamples(t *testing.T) {
	tests := []struct {
		limit       int
		wantSamples int
	}{
		{5, 5},
		{0, DefaultFailLimit},
		{-3, 1},
		{500, 30},
	}
	for _, tt := range tests {
		p := DefaultParams()
		p.N = 30
		p.FailLimit = tt.limit
		p.Entrance = grid.Cell{X: 3, Y: 3, Z: 3} // interior, rejected
		p.Clock = testClock()

		r, err := Run(context.Background(), p, seed.Random{Source: 1})
		require.NoError(t, err)
		assert.Equal(t, 30, r.Fail)
		assert.Equal(t, 0, r.OK)
		assert.Len(t, r.Samples, tt.wantSamples, "limit %d", tt.limit)
		assert.LessOrEqual(t, r.FailLimit, MaxFailLimit)
		for _, s := range r.Samples {
			assert.Equal(t, GenerateFail, s.Kind)
		}
		assert.Len(t, r.FailedSeeds(), 30)
	}
}

func TestRun_FailDetailsDisabled(t *testing.T) {
	p := DefaultParams()
	p.N = 10
	p.LogFailDetails = false
	p.Entrance = grid.Cell{X: 3, Y: 3, Z: 3}
	p.Clock = testClock()

	lines := testutil.CaptureLogs(t)
	r, err := Run(context.Background(), p, seed.Random{Source: 1})
	require.NoError(t, err)
	assert.Equal(t, 10, r.Fail)
	assert.Empty(t, r.Samples)
	assert.NotContains(t, r.String(), "Fail Samples")
	for _, l := range *lines {
		assert.NotContains(t, l, "GENERATE_FAIL")
	}
}

func TestRun_LogsEveryFailure(t *testing.T) {
	p := DefaultParams()
	p.N = 6
	p.FailLimit = 2
	p.Entrance = grid.Cell{X: 3, Y: 3, Z: 3}
	p.Clock = testClock()

	lines := testutil.CaptureLogs(t)
	r, err := Run(context.Background(), p, seed.Fixed{List: []int64{1, 2, 3, 4, 5, 6}})
	require.NoError(t, err)
	assert.Len(t, r.Samples, 2)

	var logged int
	for _, l := range *lines {
		if strings.HasPrefix(l, "[batch] #") && strings.Contains(l, "GENERATE_FAIL") {
			logged++
		}
	}
	assert.Equal(t, 6, logged)
}

func TestRun_ValidateFailWhenOnlyFallbackGoal(t *testing.T) {
	// A margin wider than the volume leaves no band; the selector falls back
	// and the validator rejects the goal.
	p := DefaultParams()
	p.Size = 7
	p.Margin = 4
	p.N = 3
	p.Clock = testClock()

	r, err := Run(context.Background(), p, seed.Random{Source: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, r.Fail)
	require.NotEmpty(t, r.Samples)
	assert.Equal(t, ValidateFail, r.Samples[0].Kind)
	assert.Contains(t, r.Samples[0].Reason, "goal violates boundary rule (margin=4)")
	assert.True(t, r.Iterations[0].HasGoal)
}

func TestRun_NormalisesInputs(t *testing.T) {
	p := DefaultParams()
	p.Size = 8
	p.N = 0
	p.LoopChance = -1
	p.Clock = testClock()

	r, err := Run(context.Background(), p, seed.Random{Source: 1})
	require.NoError(t, err)
	assert.Equal(t, 9, r.Size)
	assert.Equal(t, 1, r.N)
	assert.Equal(t, 0.0, r.LoopChance)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := DefaultParams()
	p.Clock = testClock()
	r, err := Run(ctx, p, seed.Random{Source: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, r)
	assert.Empty(t, r.Iterations)
	assert.Equal(t, 0, r.OK+r.Fail)
}

func TestRun_ElapsedFromClock(t *testing.T) {
	p := DefaultParams()
	p.N = 2
	p.Clock = testClock()

	r, err := Run(context.Background(), p, seed.Random{Source: 1})
	require.NoError(t, err)
	assert.Equal(t, time.Second, r.Elapsed)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), r.StartedAt)
}

func TestRun_EmptyFixedPolicy(t *testing.T) {
	p := DefaultParams()
	p.Clock = testClock()
	r, err := Run(context.Background(), p, seed.Fixed{})
	require.NoError(t, err)
	assert.Equal(t, 0, r.N)
	assert.Empty(t, r.Iterations)
}

func TestReport_String(t *testing.T) {
	r := &Report{
		Title: "TodayVariantSeeds", Size: 11, Margin: 1, N: 4, OK: 2, Fail: 2,
		Samples: []FailSample{
			{Iteration: 2, Seed: -17, Kind: SelectFail, Reason: "StartIsWall: start (1,1,1) is wall"},
			{Iteration: 4, Seed: 99, Kind: ValidateFail, Reason: "goal is wall: (3,3,3)"},
		},
	}
	want := "[TodayVariantSeeds] size=11 margin=1 N=4 OK=2 FAIL=2\n" +
		"---- Fail Samples ----\n" +
		"#2 seed=-17 SELECT_FAIL reason=StartIsWall: start (1,1,1) is wall\n" +
		"#4 seed=99 VALIDATE_FAIL reason=goal is wall: (3,3,3)\n"
	assert.Equal(t, want, r.String())
}

func TestSummarise(t *testing.T) {
	s := summarise([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 8, s.Count)
	assert.InDelta(t, 5.0, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0), s.StdDev, 1e-12)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)

	assert.Equal(t, Summary{}, summarise(nil))
	assert.Equal(t, Summary{Count: 1, Mean: 3, Min: 3, Max: 3}, summarise([]float64{3}))
}

func TestComputeStats_TierCounts(t *testing.T) {
	stats := computeStats([]Outcome{
		{OK: true, Tier: solve.TierMarginBand, Distance: 10, ReachableOpen: 100},
		{OK: true, Tier: solve.TierMarginBand, Distance: 12, ReachableOpen: 110},
		{OK: true, Tier: solve.TierNonCorner, Distance: 2, ReachableOpen: 5},
		{OK: false, Kind: SelectFail, Distance: -1},
	})
	assert.Equal(t, map[solve.Tier]int{solve.TierMarginBand: 2, solve.TierNonCorner: 1}, stats.Tiers)
	assert.Equal(t, 3, stats.Distance.Count)
	assert.InDelta(t, 8.0, stats.Distance.Mean, 1e-12)
}

func TestCSVWriter_WriteReport(t *testing.T) {
	p := DefaultParams()
	p.N = 4
	p.Clock = testClock()
	r, err := Run(context.Background(), p, seed.DateVariant{Base: 20240101})
	require.NoError(t, err)

	var summary, raw bytes.Buffer
	w := NewCSVWriter(&summary, &raw)
	w.WriteHeaders()
	require.NoError(t, w.WriteReport(r))

	rawRows, err := csv.NewReader(strings.NewReader(raw.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rawRows, 5)
	assert.Equal(t, RawHeaders(), rawRows[0])
	assert.Equal(t, "TodayVariantSeeds", rawRows[1][0])
	assert.Equal(t, "1", rawRows[1][1])
	assert.Equal(t, "23401902", rawRows[1][2])

	sumRows, err := csv.NewReader(strings.NewReader(summary.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, sumRows, 2)
	assert.Equal(t, SummaryHeaders(), sumRows[0])
	assert.Len(t, sumRows[1], len(SummaryHeaders()))
	assert.Equal(t, "4", sumRows[1][4])
	assert.Equal(t, "1000", sumRows[1][len(sumRows[1])-1])
}
