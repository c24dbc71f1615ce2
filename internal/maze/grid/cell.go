package grid

import "fmt"

// Cell is an integer coordinate triple inside (or outside) a volume.
// Cells are plain values and are compared with ==.
type Cell struct {
	X, Y, Z int
}

// Dirs is the fixed 6-connected direction order: +x, -x, +y, -y, +z, -z.
// Breadth-first searches expand neighbours in this order, which keeps
// parent selection deterministic.
var Dirs = [6]Cell{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// Add returns the component-wise sum of c and d.
func (c Cell) Add(d Cell) Cell {
	return Cell{c.X + d.X, c.Y + d.Y, c.Z + d.Z}
}

// Scale returns c with every component multiplied by k.
func (c Cell) Scale(k int) Cell {
	return Cell{c.X * k, c.Y * k, c.Z * k}
}

// Neighbors6 returns the six axis-aligned neighbours of c in Dirs order.
func (c Cell) Neighbors6() [6]Cell {
	var out [6]Cell
	for i, d := range Dirs {
		out[i] = c.Add(d)
	}
	return out
}

// Adjacent reports whether c and o differ by exactly one step on one axis.
func (c Cell) Adjacent(o Cell) bool {
	return abs(c.X-o.X)+abs(c.Y-o.Y)+abs(c.Z-o.Z) == 1
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
