// Package validate re-checks a generated maze and its chosen goal with its
// own breadth-first search, independent of the selector's search state.
package validate

import (
	"fmt"

	"github.com/banshee-data/maze3d/internal/maze/grid"
)

// Failure classifies a failed validation.
type Failure int

const (
	None Failure = iota
	StartOutOfBounds
	GoalOutOfBounds
	StartIsWall
	GoalIsWall
	GoalOutsideMargin
	GoalUnreachable
)

func (f Failure) String() string {
	switch f {
	case None:
		return "None"
	case StartOutOfBounds:
		return "StartOutOfBounds"
	case GoalOutOfBounds:
		return "GoalOutOfBounds"
	case StartIsWall:
		return "StartIsWall"
	case GoalIsWall:
		return "GoalIsWall"
	case GoalOutsideMargin:
		return "GoalOutsideMargin"
	case GoalUnreachable:
		return "GoalUnreachable"
	default:
		return fmt.Sprintf("Failure(%d)", int(f))
	}
}

// Result is the outcome of Validate. Distance is -1 when the goal was not
// reached or the search did not run.
type Result struct {
	OK                 bool
	Message            string
	Distance           int
	ReachableOpenCount int
	Goal               grid.Cell
	Failure            Failure
}

// Validate checks, in order, that start and goal are in bounds and open, that
// goal lies in the margin band and that goal is reachable from start. It
// never panics and always returns a fully populated Result.
func Validate(g *grid.Grid, start, goal grid.Cell, margin int) Result {
	size := g.Size()
	fail := func(f Failure, msg string) Result {
		return Result{Message: msg, Distance: -1, Goal: goal, Failure: f}
	}

	switch {
	case !g.InBounds(start):
		return fail(StartOutOfBounds, fmt.Sprintf("start out of bounds: %s", start))
	case !g.InBounds(goal):
		return fail(GoalOutOfBounds, fmt.Sprintf("goal out of bounds: %s", goal))
	case g.IsWall(start):
		return fail(StartIsWall, fmt.Sprintf("start is wall: %s", start))
	case g.IsWall(goal):
		return fail(GoalIsWall, fmt.Sprintf("goal is wall: %s", goal))
	case !grid.InMarginBand(goal, size, margin):
		return fail(GoalOutsideMargin,
			fmt.Sprintf("goal violates boundary rule (margin=%d) goal=%s size=%d", margin, goal, size))
	}

	dist, reached := distanceTo(g, start, goal)
	if dist < 0 {
		r := fail(GoalUnreachable,
			fmt.Sprintf("goal not reachable from start: start=%s goal=%s reachableOpen=%d", start, goal, reached))
		r.ReachableOpenCount = reached
		return r
	}

	return Result{
		OK:                 true,
		Message:            fmt.Sprintf("OK (dist=%d, reachableOpen=%d)", dist, reached),
		Distance:           dist,
		ReachableOpenCount: reached,
		Goal:               goal,
	}
}

// distanceTo runs a BFS from start and stops as soon as goal is dequeued.
// reached counts the cells dequeued up to that point, or every reachable cell
// when goal is never found.
func distanceTo(g *grid.Grid, start, goal grid.Cell) (dist, reached int) {
	seen := make([]bool, g.Len())
	type item struct {
		c grid.Cell
		d int
	}
	queue := []item{{c: start}}
	seen[g.Index(start)] = true

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		reached++
		if cur.c == goal {
			return cur.d, reached
		}
		for _, d := range grid.Dirs {
			nb := cur.c.Add(d)
			if g.IsWall(nb) {
				continue
			}
			i := g.Index(nb)
			if seen[i] {
				continue
			}
			seen[i] = true
			queue = append(queue, item{c: nb, d: cur.d + 1})
		}
	}
	return -1, reached
}
