package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// envOverrides mirrors MazeConfig for MAZE_* variables. Unset variables
// leave the pointers nil.
type envOverrides struct {
	Size                   *int     `env:"MAZE_SIZE"`
	LoopChance             *float64 `env:"MAZE_LOOP_CHANCE"`
	Entrance               []int    `env:"MAZE_ENTRANCE" envSeparator:","`
	BraidMaxOpenNeighbours *int     `env:"MAZE_BRAID_MAX_OPEN"`
	GoalMargin             *int     `env:"MAZE_GOAL_MARGIN"`
	BatchN                 *int     `env:"MAZE_BATCH_N"`
	FailLogLimit           *int     `env:"MAZE_FAIL_LOG_LIMIT"`
	LogFailDetails         *bool    `env:"MAZE_LOG_FAIL_DETAILS"`
	Workers                *int     `env:"MAZE_WORKERS"`
	DailyZone              *string  `env:"MAZE_DAILY_ZONE"`
	DailyResetHour         *int     `env:"MAZE_DAILY_RESET_HOUR"`
	RunStorePath           *string  `env:"MAZE_RUN_STORE"`
}

// ApplyEnv overlays MAZE_* environment variables onto c and re-validates it.
func (c *MazeConfig) ApplyEnv() error {
	var o envOverrides
	if err := ParseEnv(&o); err != nil {
		return err
	}

	if o.Size != nil {
		c.Size = o.Size
	}
	if o.LoopChance != nil {
		c.LoopChance = o.LoopChance
	}
	if o.Entrance != nil {
		c.Entrance = o.Entrance
	}
	if o.BraidMaxOpenNeighbours != nil {
		c.BraidMaxOpenNeighbours = o.BraidMaxOpenNeighbours
	}
	if o.GoalMargin != nil {
		c.GoalMargin = o.GoalMargin
	}
	if o.BatchN != nil {
		c.BatchN = o.BatchN
	}
	if o.FailLogLimit != nil {
		c.FailLogLimit = o.FailLogLimit
	}
	if o.LogFailDetails != nil {
		c.LogFailDetails = o.LogFailDetails
	}
	if o.Workers != nil {
		c.Workers = o.Workers
	}
	if o.DailyZone != nil {
		c.DailyZone = o.DailyZone
	}
	if o.DailyResetHour != nil {
		c.DailyResetHour = o.DailyResetHour
	}
	if o.RunStorePath != nil {
		c.RunStorePath = o.RunStorePath
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	return nil
}
