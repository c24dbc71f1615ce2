// Package generate builds seeded 3-D grid mazes.
//
// Generation is a pure function of Params: the random stream is created per
// call from the seed, so repeated or concurrent calls never interfere.
package generate

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/banshee-data/maze3d/internal/maze/grid"
	"github.com/banshee-data/maze3d/internal/monitoring"
)

const (
	// DefaultLoopChance is the braiding probability used when callers take
	// the defaults (0.02-0.08 gives a few loops without open rooms).
	DefaultLoopChance = 0.04

	// DefaultBraidMaxOpenNeighbours caps the number of open neighbours a wall
	// may have for braiding to remove it. Two keeps loops one cell thin.
	DefaultBraidMaxOpenNeighbours = 2

	// pcgStream is the fixed PCG increment paired with the caller's seed.
	pcgStream = 0x9e3779b97f4a7c15
)

// DefaultEntrance is the corner-adjacent face cell on the z=0 face; its
// interior neighbour (1,1,1) is the generation start.
var DefaultEntrance = grid.Cell{X: 1, Y: 1, Z: 0}

var (
	// ErrEntranceNotOnShell is returned when the entrance is out of bounds or
	// strictly inside the volume.
	ErrEntranceNotOnShell = errors.New("entrance is not on the outer shell")

	// ErrInnerStartNotInterior is returned when stepping inward from the
	// entrance does not land strictly inside the shell (edge or corner
	// entrances).
	ErrInnerStartNotInterior = errors.New("inner start is not an interior cell")
)

var logf = monitoring.Tagged("maze")

// Params are the inputs of a generation call.
type Params struct {
	Size       int
	Seed       int64
	Entrance   grid.Cell
	LoopChance float64

	// BraidMaxOpenNeighbours is the braiding room-avoidance threshold.
	// Values <= 0 select DefaultBraidMaxOpenNeighbours.
	BraidMaxOpenNeighbours int
}

// DefaultParams returns the stock 11³ configuration for seed.
func DefaultParams(seed int64) Params {
	return Params{
		Size:                   11,
		Seed:                   seed,
		Entrance:               DefaultEntrance,
		LoopChance:             DefaultLoopChance,
		BraidMaxOpenNeighbours: DefaultBraidMaxOpenNeighbours,
	}
}

// Result is the output of Run. Grid is never nil: when the entrance is
// rejected it is an all-wall volume of the corrected size.
type Result struct {
	Grid       *grid.Grid
	Params     Params // normalised inputs actually used
	InnerStart grid.Cell

	// Corrections lists every input that was adjusted before generating.
	Corrections []string

	// BraidOpened counts walls removed by the braiding pass.
	BraidOpened int
}

// Generate is the short form of Run returning only the grid.
func Generate(size int, seed int64, entrance grid.Cell, loopChance float64) (*grid.Grid, error) {
	res, err := Run(Params{
		Size:       size,
		Seed:       seed,
		Entrance:   entrance,
		LoopChance: loopChance,
	})
	return res.Grid, err
}

// Run generates a maze:
//  1. every cell starts as wall;
//  2. the start is the entrance's interior neighbour;
//  3. a randomized depth-first carve opens a spanning tree of interior cells;
//  4. braiding removes a few thin walls to add loops;
//  5. the entrance is punched through the shell.
func Run(p Params) (*Result, error) {
	np, corrections := p.Normalise()
	for _, c := range corrections {
		logf("%s", c)
	}

	b := grid.NewBuilder(np.Size)
	res := &Result{Params: np, Corrections: corrections}

	inner, err := InnerStart(np.Entrance, np.Size)
	if err != nil {
		logf("entrance %s rejected for size %d: %v", np.Entrance, np.Size, err)
		res.Grid = b.Build()
		return res, err
	}
	res.InnerStart = inner

	rng := newRand(np.Seed)

	b.Set(inner, grid.Open)
	carve(b, inner, rng)
	res.BraidOpened = braid(b, np.LoopChance, np.BraidMaxOpenNeighbours, rng)

	b.Set(np.Entrance, grid.Open)
	b.Set(inner, grid.Open)

	res.Grid = b.Build()
	return res, nil
}

// InnerStart returns the single interior neighbour of an entrance on a
// volume of the given size.
func InnerStart(entrance grid.Cell, size int) (grid.Cell, error) {
	if !grid.InBounds(entrance, size) {
		return grid.Cell{}, fmt.Errorf("%w: %s outside %d³ volume", ErrEntranceNotOnShell, entrance, size)
	}
	if grid.ShellFaces(entrance, size) == 0 {
		return grid.Cell{}, fmt.Errorf("%w: %s is interior", ErrEntranceNotOnShell, entrance)
	}

	inner := entrance
	switch {
	case entrance.X == 0:
		inner.X++
	case entrance.X == size-1:
		inner.X--
	case entrance.Y == 0:
		inner.Y++
	case entrance.Y == size-1:
		inner.Y--
	case entrance.Z == 0:
		inner.Z++
	default:
		inner.Z--
	}

	if !grid.IsInterior(inner, size) {
		return grid.Cell{}, fmt.Errorf("%w: entrance %s steps to %s", ErrInnerStartNotInterior, entrance, inner)
	}
	return inner, nil
}

// Normalise returns p with every out-of-range input corrected, and a
// description of each correction made.
func (p Params) Normalise() (Params, []string) {
	var corrections []string

	if p.Size < grid.MinSize || p.Size%2 == 0 {
		fixed := max(grid.MinSize, p.Size|1)
		corrections = append(corrections,
			fmt.Sprintf("size must be odd and >= %d: %d corrected to %d", grid.MinSize, p.Size, fixed))
		p.Size = fixed
	}

	lc := p.LoopChance
	switch {
	case math.IsNaN(lc):
		lc = 0
	case lc < 0:
		lc = 0
	case lc > 1:
		lc = 1
	}
	if lc != p.LoopChance || math.IsNaN(p.LoopChance) {
		corrections = append(corrections,
			fmt.Sprintf("loop chance %v clamped to %v", p.LoopChance, lc))
		p.LoopChance = lc
	}

	if p.BraidMaxOpenNeighbours <= 0 {
		p.BraidMaxOpenNeighbours = DefaultBraidMaxOpenNeighbours
	}
	return p, corrections
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), pcgStream))
}
