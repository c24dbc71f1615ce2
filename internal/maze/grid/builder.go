package grid

// Builder populates a volume before it is frozen into a Grid. A Builder is
// single-use: after Build it must not be modified.
type Builder struct {
	g *Grid
}

// NewBuilder returns a builder for a size³ volume with every cell a wall.
// size must be positive.
func NewBuilder(size int) *Builder {
	if size <= 0 {
		panic("grid: non-positive size")
	}
	cells := make([]bool, size*size*size)
	for i := range cells {
		cells[i] = Wall
	}
	return &Builder{g: &Grid{size: size, cells: cells}}
}

// Size returns the side length of the volume under construction.
func (b *Builder) Size() int { return b.live().size }

// Set assigns the state of an in-bounds cell. Out-of-bounds cells are ignored.
func (b *Builder) Set(c Cell, wall bool) {
	g := b.live()
	if !g.InBounds(c) {
		return
	}
	g.cells[g.Index(c)] = wall
}

// IsWall reads the current state of c; out-of-bounds cells read as walls.
func (b *Builder) IsWall(c Cell) bool {
	return b.live().IsWall(c)
}

// View exposes the volume under construction read-only, e.g. for snapshots
// taken between generation passes. The returned Grid aliases the builder's
// storage and reflects later Set calls.
func (b *Builder) View() *Grid {
	return b.live()
}

// Build freezes the volume and returns it. The builder is spent afterwards.
func (b *Builder) Build() *Grid {
	g := b.live()
	b.g = nil
	return g
}

func (b *Builder) live() *Grid {
	if b.g == nil {
		panic("grid: builder used after Build")
	}
	return b.g
}
