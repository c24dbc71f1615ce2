package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/maze3d/internal/maze/batch"
	"github.com/banshee-data/maze3d/internal/maze/generate"
	"github.com/banshee-data/maze3d/internal/maze/grid"
	"github.com/banshee-data/maze3d/internal/maze/seed"
	"github.com/banshee-data/maze3d/internal/timeutil"
)

// DefaultConfigPath is the path to the canonical maze defaults file.
const DefaultConfigPath = "config/maze.defaults.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// MazeConfig holds the generator, selector and batch settings. Fields left
// out of the JSON stay nil and the Get* methods supply the defaults, so
// partial configs are safe.
type MazeConfig struct {
	// Generator
	Size                   *int     `json:"size,omitempty"`
	LoopChance             *float64 `json:"loop_chance,omitempty"`
	Entrance               []int    `json:"entrance,omitempty"` // [x, y, z]
	BraidMaxOpenNeighbours *int     `json:"braid_max_open_neighbours,omitempty"`

	// Selector / validator
	GoalMargin *int `json:"goal_margin,omitempty"`

	// Batch harness
	BatchN         *int  `json:"batch_n,omitempty"`
	FailLogLimit   *int  `json:"fail_log_limit,omitempty"`
	LogFailDetails *bool `json:"log_fail_details,omitempty"`
	Workers        *int  `json:"workers,omitempty"`

	// Daily seed
	DailyZone      *string `json:"daily_zone,omitempty"`
	DailyResetHour *int    `json:"daily_reset_hour,omitempty"`

	// Run history
	RunStorePath *string `json:"run_store_path,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyMazeConfig returns a MazeConfig with all fields unset.
func EmptyMazeConfig() *MazeConfig {
	return &MazeConfig{}
}

// DefaultMazeConfig returns a MazeConfig with every field set to its default.
func DefaultMazeConfig() *MazeConfig {
	return &MazeConfig{
		Size:                   ptrInt(11),
		LoopChance:             ptrFloat64(generate.DefaultLoopChance),
		Entrance:               []int{generate.DefaultEntrance.X, generate.DefaultEntrance.Y, generate.DefaultEntrance.Z},
		BraidMaxOpenNeighbours: ptrInt(generate.DefaultBraidMaxOpenNeighbours),
		GoalMargin:             ptrInt(1),
		BatchN:                 ptrInt(batch.DefaultN),
		FailLogLimit:           ptrInt(batch.DefaultFailLimit),
		LogFailDetails:         ptrBool(true),
		Workers:                ptrInt(1),
		DailyZone:              ptrString(seed.DefaultZone),
		DailyResetHour:         ptrInt(seed.DefaultResetHour),
		RunStorePath:           ptrString("maze-runs.db"),
	}
}

// LoadMazeConfig loads a MazeConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadMazeConfig(path string) (*MazeConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyMazeConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *MazeConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/maze/batch/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadMazeConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set. Out-of-range sizes are not an
// error: the generator corrects them.
func (c *MazeConfig) Validate() error {
	if c.LoopChance != nil && (*c.LoopChance < 0 || *c.LoopChance > 1) {
		return fmt.Errorf("loop_chance must be between 0 and 1, got %f", *c.LoopChance)
	}
	if c.Entrance != nil && len(c.Entrance) != 3 {
		return fmt.Errorf("entrance must have 3 coordinates, got %d", len(c.Entrance))
	}
	if c.GoalMargin != nil && *c.GoalMargin < 0 {
		return fmt.Errorf("goal_margin must be non-negative, got %d", *c.GoalMargin)
	}
	if c.BatchN != nil && *c.BatchN < 1 {
		return fmt.Errorf("batch_n must be at least 1, got %d", *c.BatchN)
	}
	if c.FailLogLimit != nil && (*c.FailLogLimit < 1 || *c.FailLogLimit > batch.MaxFailLimit) {
		return fmt.Errorf("fail_log_limit must be between 1 and %d, got %d", batch.MaxFailLimit, *c.FailLogLimit)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if c.DailyResetHour != nil && (*c.DailyResetHour < 0 || *c.DailyResetHour > 23) {
		return fmt.Errorf("daily_reset_hour must be between 0 and 23, got %d", *c.DailyResetHour)
	}
	if c.DailyZone != nil && *c.DailyZone != "" {
		if _, err := time.LoadLocation(*c.DailyZone); err != nil {
			return fmt.Errorf("invalid daily_zone '%s': %w", *c.DailyZone, err)
		}
	}
	return nil
}

// GetSize returns the size value or the default.
func (c *MazeConfig) GetSize() int {
	if c.Size == nil {
		return 11
	}
	return *c.Size
}

// GetLoopChance returns the loop_chance value or the default.
func (c *MazeConfig) GetLoopChance() float64 {
	if c.LoopChance == nil {
		return generate.DefaultLoopChance
	}
	return *c.LoopChance
}

// GetEntrance returns the entrance cell or the default.
func (c *MazeConfig) GetEntrance() grid.Cell {
	if len(c.Entrance) != 3 {
		return generate.DefaultEntrance
	}
	return grid.Cell{X: c.Entrance[0], Y: c.Entrance[1], Z: c.Entrance[2]}
}

// GetBraidMaxOpenNeighbours returns the braid_max_open_neighbours value or the default.
func (c *MazeConfig) GetBraidMaxOpenNeighbours() int {
	if c.BraidMaxOpenNeighbours == nil {
		return generate.DefaultBraidMaxOpenNeighbours
	}
	return *c.BraidMaxOpenNeighbours
}

// GetGoalMargin returns the goal_margin value or the default.
func (c *MazeConfig) GetGoalMargin() int {
	if c.GoalMargin == nil {
		return 1
	}
	return *c.GoalMargin
}

// GetBatchN returns the batch_n value or the default.
func (c *MazeConfig) GetBatchN() int {
	if c.BatchN == nil {
		return batch.DefaultN
	}
	return *c.BatchN
}

// GetFailLogLimit returns the fail_log_limit value or the default.
func (c *MazeConfig) GetFailLogLimit() int {
	if c.FailLogLimit == nil {
		return batch.DefaultFailLimit
	}
	return *c.FailLogLimit
}

// GetLogFailDetails returns the log_fail_details value or the default.
func (c *MazeConfig) GetLogFailDetails() bool {
	if c.LogFailDetails == nil {
		return true
	}
	return *c.LogFailDetails
}

// GetWorkers returns the workers value or the default.
func (c *MazeConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}

// GetDailyZone returns the daily_zone value or the default.
func (c *MazeConfig) GetDailyZone() string {
	if c.DailyZone == nil || *c.DailyZone == "" {
		return seed.DefaultZone
	}
	return *c.DailyZone
}

// GetDailyResetHour returns the daily_reset_hour value or the default.
func (c *MazeConfig) GetDailyResetHour() int {
	if c.DailyResetHour == nil {
		return seed.DefaultResetHour
	}
	return *c.DailyResetHour
}

// GetRunStorePath returns the run_store_path value or the default.
func (c *MazeConfig) GetRunStorePath() string {
	if c.RunStorePath == nil || *c.RunStorePath == "" {
		return "maze-runs.db"
	}
	return *c.RunStorePath
}

// GenerateParams returns the generator inputs for seed s.
func (c *MazeConfig) GenerateParams(s int64) generate.Params {
	return generate.Params{
		Size:                   c.GetSize(),
		Seed:                   s,
		Entrance:               c.GetEntrance(),
		LoopChance:             c.GetLoopChance(),
		BraidMaxOpenNeighbours: c.GetBraidMaxOpenNeighbours(),
	}
}

// BatchParams returns the batch harness inputs.
func (c *MazeConfig) BatchParams() batch.Params {
	return batch.Params{
		Size:                   c.GetSize(),
		Margin:                 c.GetGoalMargin(),
		Entrance:               c.GetEntrance(),
		LoopChance:             c.GetLoopChance(),
		BraidMaxOpenNeighbours: c.GetBraidMaxOpenNeighbours(),
		N:                      c.GetBatchN(),
		FailLimit:              c.GetFailLogLimit(),
		LogFailDetails:         c.GetLogFailDetails(),
		Workers:                c.GetWorkers(),
	}
}

// Daily returns the daily seed source on clock.
func (c *MazeConfig) Daily(clock timeutil.Clock) seed.Daily {
	return seed.Daily{
		Clock:     clock,
		Location:  timeutil.LoadLocation(c.GetDailyZone(), 9*time.Hour),
		ResetHour: c.GetDailyResetHour(),
	}
}
