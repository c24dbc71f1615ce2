package validate

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/maze3d/internal/maze/generate"
	"github.com/banshee-data/maze3d/internal/maze/grid"
	"github.com/banshee-data/maze3d/internal/maze/solve"
	"github.com/banshee-data/maze3d/internal/monitoring"
	"github.com/banshee-data/maze3d/internal/testutil"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func TestValidate_Failures(t *testing.T) {
	g := testutil.Corridor()
	start := grid.Cell{X: 1, Y: 1, Z: 1}

	tests := []struct {
		name        string
		start, goal grid.Cell
		margin      int
		want        Failure
		wantMsg     string
	}{
		{
			name: "start out of bounds", start: grid.Cell{X: -1, Y: 1, Z: 1}, goal: grid.Cell{X: 3, Y: 1, Z: 1}, margin: 1,
			want: StartOutOfBounds, wantMsg: "start out of bounds: (-1,1,1)",
		},
		{
			name: "goal out of bounds", start: start, goal: grid.Cell{X: 7, Y: 1, Z: 1}, margin: 1,
			want: GoalOutOfBounds, wantMsg: "goal out of bounds: (7,1,1)",
		},
		{
			name: "start is wall", start: grid.Cell{X: 2, Y: 2, Z: 2}, goal: grid.Cell{X: 3, Y: 1, Z: 1}, margin: 1,
			want: StartIsWall, wantMsg: "start is wall: (2,2,2)",
		},
		{
			name: "goal is wall", start: start, goal: grid.Cell{X: 4, Y: 1, Z: 1}, margin: 1,
			want: GoalIsWall, wantMsg: "goal is wall: (4,1,1)",
		},
		{
			name: "goal outside margin", start: start, goal: grid.Cell{X: 1, Y: 1, Z: 0}, margin: 1,
			want: GoalOutsideMargin, wantMsg: "goal violates boundary rule (margin=1) goal=(1,1,0) size=7",
		},
		{
			name: "goal unreachable", start: start, goal: grid.Cell{X: 5, Y: 5, Z: 5}, margin: 1,
			want: GoalUnreachable, wantMsg: "goal not reachable from start: start=(1,1,1) goal=(5,5,5) reachableOpen=4",
		},
	}

	seen := map[string]bool{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(g, tt.start, tt.goal, tt.margin)
			assert.False(t, r.OK)
			assert.Equal(t, tt.want, r.Failure)
			assert.Equal(t, tt.wantMsg, r.Message)
			assert.Equal(t, -1, r.Distance)
			assert.Equal(t, tt.goal, r.Goal)
			assert.False(t, seen[r.Message], "duplicate message %q", r.Message)
			seen[r.Message] = true
		})
	}
}

func TestValidate_CheckOrder(t *testing.T) {
	g := testutil.Corridor()
	// start and goal both out of bounds: the start check wins.
	r := Validate(g, grid.Cell{X: 9, Y: 9, Z: 9}, grid.Cell{X: -1, Y: -1, Z: -1}, 1)
	assert.Equal(t, StartOutOfBounds, r.Failure)

	// goal wall and outside the band: the wall check wins.
	r = Validate(g, grid.Cell{X: 1, Y: 1, Z: 1}, grid.Cell{X: 0, Y: 3, Z: 3}, 1)
	assert.Equal(t, GoalIsWall, r.Failure)
}

func TestValidate_Success(t *testing.T) {
	g := testutil.Corridor()
	r := Validate(g, grid.Cell{X: 1, Y: 1, Z: 1}, grid.Cell{X: 3, Y: 1, Z: 1}, 1)
	require.True(t, r.OK, r.Message)
	assert.Equal(t, None, r.Failure)
	assert.Equal(t, 2, r.Distance)
	// BFS stops once the goal is dequeued: (1,1,1), (2,1,1), (1,1,0), (3,1,1).
	assert.Equal(t, 4, r.ReachableOpenCount)
	assert.Equal(t, "OK (dist=2, reachableOpen=4)", r.Message)
}

func TestValidate_GoalEqualsStart(t *testing.T) {
	g := testutil.Corridor()
	start := grid.Cell{X: 1, Y: 1, Z: 1}
	r := Validate(g, start, start, 1)
	require.True(t, r.OK)
	assert.Equal(t, 0, r.Distance)
	assert.Equal(t, 1, r.ReachableOpenCount)
}

func TestValidate_AgreesWithSelector(t *testing.T) {
	for _, size := range []int{5, 9, 13} {
		for seed := int64(0); seed < 25; seed++ {
			g, err := generate.Generate(size, seed, generate.DefaultEntrance, generate.DefaultLoopChance)
			require.NoError(t, err)
			start := grid.Cell{X: 1, Y: 1, Z: 1}

			sel := solve.SelectGoalAndPath(g, start, 1)
			require.True(t, sel.OK, sel.Failure())

			r := Validate(g, start, sel.Goal, 1)
			require.True(t, r.OK, "size=%d seed=%d: %s", size, seed, r.Message)
			assert.Equal(t, sel.Distance, r.Distance, "size=%d seed=%d", size, seed)
			assert.LessOrEqual(t, r.ReachableOpenCount, sel.ReachableOpenCount)
		}
	}
}

func TestValidate_Idempotent(t *testing.T) {
	g, err := generate.Generate(11, 20240101, generate.DefaultEntrance, generate.DefaultLoopChance)
	require.NoError(t, err)
	start := grid.Cell{X: 1, Y: 1, Z: 1}
	sel := solve.SelectGoalAndPath(g, start, 1)
	require.True(t, sel.OK)

	first := Validate(g, start, sel.Goal, 1)
	second := Validate(g, start, sel.Goal, 1)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-validation differs (-first +second):\n%s", diff)
	}
}

func TestFailure_String(t *testing.T) {
	assert.Equal(t, "GoalUnreachable", GoalUnreachable.String())
	assert.Equal(t, "None", None.String())
	assert.Equal(t, "Failure(42)", Failure(42).String())
}
