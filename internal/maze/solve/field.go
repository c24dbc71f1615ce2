// Package solve runs breadth-first reachability over a maze grid, picks a
// goal cell under positional constraints and reconstructs the shortest path
// to it.
package solve

import "github.com/banshee-data/maze3d/internal/maze/grid"

const (
	unreached = -1
	noParent  = -1
)

// Field is the result of one breadth-first search from Start: per-cell
// distance and parent, indexed by grid.Index.
type Field struct {
	Grid  *grid.Grid
	Start grid.Cell

	// Reached counts the open cells visited, Start included.
	Reached int

	dist   []int32
	parent []int32
}

// Explore runs a BFS from start over 6-connected open cells, expanding
// neighbours in grid.Dirs order. start must be an open in-bounds cell.
func Explore(g *grid.Grid, start grid.Cell) *Field {
	n := g.Len()
	f := &Field{
		Grid:   g,
		Start:  start,
		dist:   make([]int32, n),
		parent: make([]int32, n),
	}
	for i := range f.dist {
		f.dist[i] = unreached
		f.parent[i] = noParent
	}

	si := g.Index(start)
	f.dist[si] = 0
	queue := make([]int32, 0, 256)
	queue = append(queue, int32(si))

	for head := 0; head < len(queue); head++ {
		cur := int(queue[head])
		f.Reached++

		c := g.CellAt(cur)
		for _, nb := range c.Neighbors6() {
			if g.IsWall(nb) {
				continue
			}
			ni := g.Index(nb)
			if f.dist[ni] != unreached {
				continue
			}
			f.dist[ni] = f.dist[cur] + 1
			f.parent[ni] = int32(cur)
			queue = append(queue, int32(ni))
		}
	}
	return f
}

// Distance returns the BFS distance to c, or -1 when c is unreachable or out
// of bounds.
func (f *Field) Distance(c grid.Cell) int {
	if !f.Grid.InBounds(c) {
		return unreached
	}
	return int(f.dist[f.Grid.Index(c)])
}

// Reachable reports whether c was visited by the search.
func (f *Field) Reachable(c grid.Cell) bool {
	return f.Distance(c) >= 0
}

// PathTo walks parent links from goal back to Start and returns the cells in
// start-to-goal order. ok is false when the walk does not terminate at Start.
func (f *Field) PathTo(goal grid.Cell) (path []grid.Cell, ok bool) {
	if !f.Reachable(goal) {
		return nil, false
	}
	g := f.Grid
	si := g.Index(f.Start)

	rev := make([]grid.Cell, 0, f.Distance(goal)+1)
	i := g.Index(goal)
	for steps := 0; steps <= g.Len(); steps++ {
		rev = append(rev, g.CellAt(i))
		if i == si {
			for l, r := 0, len(rev)-1; l < r; l, r = l+1, r-1 {
				rev[l], rev[r] = rev[r], rev[l]
			}
			return rev, true
		}
		p := f.parent[i]
		if p == noParent {
			return nil, false
		}
		i = int(p)
	}
	return nil, false
}

// farthest scans cells in x, y, z order and returns the reachable cell with
// the greatest distance satisfying accept. Ties keep the first cell scanned.
func (f *Field) farthest(accept func(grid.Cell) bool) (grid.Cell, bool) {
	best, bestD := grid.Cell{}, int32(unreached)
	for i, d := range f.dist {
		if d <= bestD {
			continue
		}
		c := f.Grid.CellAt(i)
		if !accept(c) {
			continue
		}
		best, bestD = c, d
	}
	return best, bestD != unreached
}
