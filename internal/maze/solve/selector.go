package solve

import (
	"fmt"

	"github.com/banshee-data/maze3d/internal/maze/grid"
)

// Tier identifies which relaxation of the goal policy produced the goal.
type Tier int

const (
	TierNone Tier = iota
	// TierMarginBand: every coordinate in [margin, size-1-margin].
	TierMarginBand
	// TierNonCorner: anything but the eight volume corners.
	TierNonCorner
	// TierAnyReachable: unconstrained.
	TierAnyReachable
)

func (t Tier) String() string {
	switch t {
	case TierMarginBand:
		return "margin_band"
	case TierNonCorner:
		return "non_corner"
	case TierAnyReachable:
		return "any_reachable"
	default:
		return "none"
	}
}

// FailReason names why a selection failed.
type FailReason string

const (
	StartOutOfBounds      FailReason = "StartOutOfBounds"
	StartIsWall           FailReason = "StartIsWall"
	NoReachableCell       FailReason = "NoReachableCell"
	PathReconstructFailed FailReason = "PathReconstructFailed"
)

// Constraint is one rung of the goal policy.
type Constraint struct {
	Tier   Tier
	Accept func(c grid.Cell, size, margin int) bool
}

// Policy is the ordered goal-selection ladder; the first rung with any
// reachable candidate wins.
type Policy []Constraint

// DefaultPolicy relaxes from the margin band to non-corner cells to any
// reachable cell.
var DefaultPolicy = Policy{
	{Tier: TierMarginBand, Accept: grid.InMarginBand},
	{Tier: TierNonCorner, Accept: func(c grid.Cell, size, _ int) bool { return !grid.IsCorner(c, size) }},
	{Tier: TierAnyReachable, Accept: func(grid.Cell, int, int) bool { return true }},
}

// Selection is the outcome of SelectGoalAndPath. On failure OK is false,
// Reason is set and Goal/Path are zero.
type Selection struct {
	OK                 bool
	Goal               grid.Cell
	Path               []grid.Cell
	Distance           int
	ReachableOpenCount int
	Tier               Tier
	Reason             FailReason
	Detail             string
}

// Failure formats a failed selection for logs. It returns "" on success.
func (s Selection) Failure() string {
	if s.OK {
		return ""
	}
	if s.Detail == "" {
		return string(s.Reason)
	}
	return string(s.Reason) + ": " + s.Detail
}

// SelectGoalAndPath picks the farthest reachable goal from start under
// DefaultPolicy and returns the shortest path to it.
func SelectGoalAndPath(g *grid.Grid, start grid.Cell, margin int) Selection {
	return DefaultPolicy.Select(g, start, margin)
}

// Select applies the policy to a single BFS from start.
func (p Policy) Select(g *grid.Grid, start grid.Cell, margin int) Selection {
	if !g.InBounds(start) {
		return failed(StartOutOfBounds, fmt.Sprintf("start %s outside %d³ volume", start, g.Size()), 0)
	}
	if g.IsWall(start) {
		return failed(StartIsWall, fmt.Sprintf("start %s is wall", start), 0)
	}

	field := Explore(g, start)
	size := g.Size()

	var (
		goal grid.Cell
		tier Tier
	)
	for _, rung := range p {
		accept := rung.Accept
		if c, ok := field.farthest(func(c grid.Cell) bool { return accept(c, size, margin) }); ok {
			goal, tier = c, rung.Tier
			break
		}
	}
	if tier == TierNone {
		return failed(NoReachableCell, fmt.Sprintf("no candidate among %d reachable cells", field.Reached), field.Reached)
	}

	path, ok := field.PathTo(goal)
	if !ok || len(path) == 0 {
		return failed(PathReconstructFailed, fmt.Sprintf("parent walk from %s did not reach %s", goal, start), field.Reached)
	}

	return Selection{
		OK:                 true,
		Goal:               goal,
		Path:               path,
		Distance:           field.Distance(goal),
		ReachableOpenCount: field.Reached,
		Tier:               tier,
	}
}

func failed(reason FailReason, detail string, reached int) Selection {
	return Selection{
		Distance:           -1,
		ReachableOpenCount: reached,
		Reason:             reason,
		Detail:             detail,
	}
}
