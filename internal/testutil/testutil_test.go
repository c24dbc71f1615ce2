package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/maze3d/internal/maze/grid"
	"github.com/banshee-data/maze3d/internal/monitoring"
)

func TestGrid(t *testing.T) {
	g := Grid(5, grid.Cell{X: 1, Y: 1, Z: 1}, grid.Cell{X: 2, Y: 1, Z: 1})
	assert.Equal(t, 5, g.Size())
	assert.Equal(t, 2, g.OpenCount())
	assert.True(t, g.IsOpen(grid.Cell{X: 2, Y: 1, Z: 1}))
	assert.False(t, g.IsOpen(grid.Cell{X: 3, Y: 1, Z: 1}))
}

func TestCorridor(t *testing.T) {
	g := Corridor()
	assert.Equal(t, 7, g.Size())
	assert.Equal(t, 5, g.OpenCount())
}

func TestLine(t *testing.T) {
	assert.Equal(t,
		[]grid.Cell{{X: 1, Y: 3, Z: 1}, {X: 1, Y: 2, Z: 1}, {X: 1, Y: 1, Z: 1}},
		Line(grid.Cell{X: 1, Y: 3, Z: 1}, grid.Cell{X: 1, Y: 1, Z: 1}))
	assert.Equal(t, []grid.Cell{{X: 2, Y: 2, Z: 2}}, Line(grid.Cell{X: 2, Y: 2, Z: 2}, grid.Cell{X: 2, Y: 2, Z: 2}))
	assert.Panics(t, func() { Line(grid.Cell{}, grid.Cell{X: 1, Y: 1}) })
}

func TestCaptureLogs(t *testing.T) {
	t.Run("capture", func(t *testing.T) {
		lines := CaptureLogs(t)
		monitoring.Tagged("x")("n=%d", 3)
		assert.Equal(t, []string{"[x] n=3"}, *lines)
	})

	t.Run("silence", func(t *testing.T) {
		SilenceLogs(t)
		monitoring.Logf("dropped")
	})
}
