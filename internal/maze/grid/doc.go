// Package grid owns the 3-D maze volume model.
//
// Responsibilities: the wall/open volume, cell coordinates, 6-connected
// adjacency, and the builder used by generators to populate a volume
// before it is frozen.
// Key types: Grid, Cell, Builder.
//
// Dependency rule: grid imports nothing else from internal/maze. The
// generator, selector and validator all depend on it, never the reverse.
package grid
