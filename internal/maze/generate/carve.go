package generate

import (
	"math/rand/v2"

	"github.com/banshee-data/maze3d/internal/maze/grid"
)

// carveFrame is one node of the depth-first carve: its cell, the direction
// order drawn when the node was entered, and the next direction to try.
type carveFrame struct {
	at   grid.Cell
	dirs [6]grid.Cell
	next int
}

// carve opens a perfect maze over the interior cells reachable from start in
// steps of two. The explicit stack reproduces the recursive backtracker
// exactly: directions are shuffled once on entry to a node, candidates are
// tried in that order, and each candidate is re-checked when its turn comes
// because deeper branches may have opened it meanwhile.
func carve(b *grid.Builder, start grid.Cell, rng *rand.Rand) {
	size := b.Size()
	stack := []carveFrame{enterNode(b, start, rng)}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.dirs) {
			stack = stack[:len(stack)-1]
			continue
		}

		d := top.dirs[top.next]
		top.next++

		target := top.at.Add(d.Scale(2))
		if !grid.IsInterior(target, size) || !b.IsWall(target) {
			continue
		}

		if mid := top.at.Add(d); grid.IsInterior(mid, size) {
			b.Set(mid, grid.Open)
		}
		stack = append(stack, enterNode(b, target, rng))
	}
}

func enterNode(b *grid.Builder, c grid.Cell, rng *rand.Rand) carveFrame {
	b.Set(c, grid.Open)
	f := carveFrame{at: c, dirs: grid.Dirs}
	shuffleDirs(&f.dirs, rng)
	return f
}

// shuffleDirs is a Fisher-Yates pass drawing j uniformly from [i, n).
func shuffleDirs(dirs *[6]grid.Cell, rng *rand.Rand) {
	for i := 0; i < len(dirs); i++ {
		j := i + rng.IntN(len(dirs)-i)
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
}

// braid removes interior walls with probability loopChance when the wall
// separates two open cells on one axis and has at most maxOpen open
// neighbours. One draw is taken per interior wall in x, y, z scan order. It
// only ever opens cells and returns how many it opened.
func braid(b *grid.Builder, loopChance float64, maxOpen int, rng *rand.Rand) int {
	size := b.Size()
	view := b.View()
	opened := 0

	for x := 1; x < size-1; x++ {
		for y := 1; y < size-1; y++ {
			for z := 1; z < size-1; z++ {
				c := grid.Cell{X: x, Y: y, Z: z}
				if !b.IsWall(c) {
					continue
				}
				if rng.Float64() >= loopChance {
					continue
				}
				if !bridgesAxis(view, c) {
					continue
				}
				if view.OpenNeighbours(c) > maxOpen {
					continue
				}
				b.Set(c, grid.Open)
				opened++
			}
		}
	}
	return opened
}

// bridgesAxis reports whether both neighbours of c on some axis are open.
func bridgesAxis(g *grid.Grid, c grid.Cell) bool {
	for i := 0; i < len(grid.Dirs); i += 2 {
		if g.IsOpen(c.Add(grid.Dirs[i])) && g.IsOpen(c.Add(grid.Dirs[i+1])) {
			return true
		}
	}
	return false
}
