package grid

import (
	"fmt"
	"strings"
)

// Cell states.
const (
	Wall = true
	Open = false
)

// MinSize is the smallest supported volume side.
const MinSize = 5

// Grid is a cubic wall/open volume. A Grid is immutable once built; use a
// Builder to create one.
type Grid struct {
	size  int
	cells []bool
}

// Size returns the side length of the volume.
func (g *Grid) Size() int { return g.size }

// Len returns the total number of cells (size³).
func (g *Grid) Len() int { return len(g.cells) }

// InBounds reports whether c lies inside the volume.
func (g *Grid) InBounds(c Cell) bool {
	return InBounds(c, g.size)
}

// Index returns the flat index of c. c must be in bounds.
func (g *Grid) Index(c Cell) int {
	return (c.X*g.size+c.Y)*g.size + c.Z
}

// CellAt is the inverse of Index.
func (g *Grid) CellAt(i int) Cell {
	z := i % g.size
	i /= g.size
	return Cell{X: i / g.size, Y: i % g.size, Z: z}
}

// IsWall reports whether c is a wall. Cells outside the volume read as walls.
func (g *Grid) IsWall(c Cell) bool {
	if !g.InBounds(c) {
		return true
	}
	return g.cells[g.Index(c)]
}

// IsOpen reports whether c is an in-bounds passable cell.
func (g *Grid) IsOpen(c Cell) bool {
	return !g.IsWall(c)
}

// OnShell reports whether c lies on one of the six outer faces.
func (g *Grid) OnShell(c Cell) bool {
	return g.InBounds(c) && ShellFaces(c, g.size) > 0
}

// IsInterior reports whether c is strictly inside the outer shell.
func (g *Grid) IsInterior(c Cell) bool {
	return IsInterior(c, g.size)
}

// OpenCount returns the number of open cells in the volume.
func (g *Grid) OpenCount() int {
	n := 0
	for _, w := range g.cells {
		if !w {
			n++
		}
	}
	return n
}

// OpenNeighbours counts the open 6-neighbours of c.
func (g *Grid) OpenNeighbours(c Cell) int {
	n := 0
	for _, nb := range c.Neighbors6() {
		if g.IsOpen(nb) {
			n++
		}
	}
	return n
}

// Equal reports whether both grids have the same size and cell states.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.size != o.size || len(g.cells) != len(o.cells) {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of g.
func (g *Grid) Clone() *Grid {
	cells := make([]bool, len(g.cells))
	copy(cells, g.cells)
	return &Grid{size: g.size, cells: cells}
}

// Layer renders the z-slice as text, one row per y, '#' for walls and '.'
// for open cells. Cells listed in marks are drawn with their rune instead.
func (g *Grid) Layer(z int, marks map[Cell]rune) string {
	var sb strings.Builder
	sb.Grow((g.size + 1) * g.size)
	for y := g.size - 1; y >= 0; y-- {
		for x := 0; x < g.size; x++ {
			c := Cell{x, y, z}
			if r, ok := marks[c]; ok {
				sb.WriteRune(r)
				continue
			}
			if g.IsWall(c) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (g *Grid) String() string {
	return fmt.Sprintf("Grid{size=%d open=%d}", g.size, g.OpenCount())
}

// ShellFaces returns how many outer faces c lies on for a volume of the given
// size: 0 for interior cells, 1 for face cells, 2 for edges and 3 for corners.
func ShellFaces(c Cell, size int) int {
	n := 0
	for _, v := range [3]int{c.X, c.Y, c.Z} {
		if v == 0 || v == size-1 {
			n++
		}
	}
	return n
}

// IsInterior reports whether c is strictly inside a volume of the given size.
func IsInterior(c Cell, size int) bool {
	return c.X > 0 && c.X < size-1 &&
		c.Y > 0 && c.Y < size-1 &&
		c.Z > 0 && c.Z < size-1
}

// IsCorner reports whether c is one of the eight corners of the volume.
func IsCorner(c Cell, size int) bool {
	return ShellFaces(c, size) == 3
}

// InMarginBand reports whether every coordinate of c lies in
// [margin, size-1-margin].
func InMarginBand(c Cell, size, margin int) bool {
	lo, hi := margin, size-1-margin
	return c.X >= lo && c.X <= hi &&
		c.Y >= lo && c.Y <= hi &&
		c.Z >= lo && c.Z <= hi
}

// InBounds reports whether c lies inside a volume of the given size.
func InBounds(c Cell, size int) bool {
	return uint(c.X) < uint(size) && uint(c.Y) < uint(size) && uint(c.Z) < uint(size)
}
