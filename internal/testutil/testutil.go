// Package testutil provides shared test fixtures for the maze packages.
package testutil

import (
	"fmt"
	"testing"

	"github.com/banshee-data/maze3d/internal/maze/grid"
	"github.com/banshee-data/maze3d/internal/monitoring"
)

// Grid builds an all-wall volume of the given size with the listed cells
// opened.
func Grid(size int, open ...grid.Cell) *grid.Grid {
	b := grid.NewBuilder(size)
	for _, c := range open {
		b.Set(c, grid.Open)
	}
	return b.Build()
}

// Corridor returns a 7³ fixture: entrance (1,1,0) opening onto a straight
// corridor (1,1,1)..(3,1,1), plus the isolated open cell (5,5,5).
func Corridor() *grid.Grid {
	return Grid(7,
		grid.Cell{X: 1, Y: 1, Z: 0},
		grid.Cell{X: 1, Y: 1, Z: 1},
		grid.Cell{X: 2, Y: 1, Z: 1},
		grid.Cell{X: 3, Y: 1, Z: 1},
		grid.Cell{X: 5, Y: 5, Z: 5},
	)
}

// Line returns the cells from a to b inclusive along a single axis. It panics
// when a and b differ on more than one axis.
func Line(a, b grid.Cell) []grid.Cell {
	d := grid.Cell{X: sign(b.X - a.X), Y: sign(b.Y - a.Y), Z: sign(b.Z - a.Z)}
	if abs(d.X)+abs(d.Y)+abs(d.Z) > 1 {
		panic("testutil.Line: cells are not axis-aligned")
	}
	out := []grid.Cell{a}
	for c := a; c != b; {
		c = grid.Cell{X: c.X + d.X, Y: c.Y + d.Y, Z: c.Z + d.Z}
		out = append(out, c)
	}
	return out
}

// SilenceLogs mutes the package logger for the duration of t.
func SilenceLogs(t testing.TB) {
	t.Helper()
	prev := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(prev) })
}

// CaptureLogs records every formatted log line for the duration of t.
func CaptureLogs(t testing.TB) *[]string {
	t.Helper()
	prev := monitoring.Logf
	var lines []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.SetLogger(prev) })
	return &lines
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
