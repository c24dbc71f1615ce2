// Command maze generates one maze, selects its goal, validates the result and
// prints a summary with an optional layer-by-layer dump.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/maze3d/internal/config"
	"github.com/banshee-data/maze3d/internal/maze/generate"
	"github.com/banshee-data/maze3d/internal/maze/grid"
	"github.com/banshee-data/maze3d/internal/maze/solve"
	"github.com/banshee-data/maze3d/internal/maze/validate"
	"github.com/banshee-data/maze3d/internal/timeutil"
	"github.com/banshee-data/maze3d/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to a maze JSON config (defaults built in)")
	sizeFlag    = flag.Int("size", 0, "Volume side length; even or < 5 is corrected (0 = config)")
	seedFlag    = flag.Int64("seed", 0, "Generation seed")
	todayFlag   = flag.Bool("today", false, "Use today's seed (yyyyMMdd of the effective day)")
	entrance    = flag.String("entrance", "", "Entrance cell as x,y,z on the outer shell (empty = config)")
	loopFlag    = flag.Float64("loop", -1, "Braiding probability in [0,1] (negative = config)")
	marginFlag  = flag.Int("margin", -1, "Goal margin from the outer faces (negative = config)")
	layers      = flag.Bool("layers", false, "Print every z layer with start, goal and path marked")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// options are the resolved inputs of one invocation.
type options struct {
	gen    generate.Params
	margin int
	layers bool
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("maze"))
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	opts, err := resolveOptions(cfg, timeutil.RealClock{})
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	if err := run(opts, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

// loadConfig reads path (or the built-in defaults) and applies MAZE_*
// environment overrides.
func loadConfig(path string) (*config.MazeConfig, error) {
	cfg := config.DefaultMazeConfig()
	if path != "" {
		loaded, err := config.LoadMazeConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveOptions layers command-line flags over cfg.
func resolveOptions(cfg *config.MazeConfig, clock timeutil.Clock) (options, error) {
	s := *seedFlag
	if *todayFlag {
		s = int64(cfg.Daily(clock).Seed())
	}

	opts := options{
		gen:    cfg.GenerateParams(s),
		margin: cfg.GetGoalMargin(),
		layers: *layers,
	}
	if *sizeFlag != 0 {
		opts.gen.Size = *sizeFlag
	}
	if *loopFlag >= 0 {
		opts.gen.LoopChance = *loopFlag
	}
	if *marginFlag >= 0 {
		opts.margin = *marginFlag
	}
	if *entrance != "" {
		c, err := parseCell(*entrance)
		if err != nil {
			return options{}, fmt.Errorf("-entrance: %w", err)
		}
		opts.gen.Entrance = c
	}
	return opts, nil
}

// parseCell parses "x,y,z".
func parseCell(s string) (grid.Cell, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return grid.Cell{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return grid.Cell{}, fmt.Errorf("invalid coordinate '%s': %w", p, err)
		}
		v[i] = n
	}
	return grid.Cell{X: v[0], Y: v[1], Z: v[2]}, nil
}

// run generates, selects and validates one maze and writes the summary to w.
// It fails when generation or goal selection fails; a validation failure is
// reported in the output and also returned.
func run(opts options, w io.Writer) error {
	res, err := generate.Run(opts.gen)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	p := res.Params
	fmt.Fprintf(w, "maze size=%d seed=%d entrance=%s start=%s loop=%.3f braided=%d open=%d\n",
		p.Size, p.Seed, p.Entrance, res.InnerStart, p.LoopChance, res.BraidOpened, res.Grid.OpenCount())
	for _, c := range res.Corrections {
		fmt.Fprintf(w, "corrected: %s\n", c)
	}

	sel := solve.SelectGoalAndPath(res.Grid, res.InnerStart, opts.margin)
	if !sel.OK {
		return fmt.Errorf("goal selection failed: %s", sel.Failure())
	}
	fmt.Fprintf(w, "goal=%s tier=%s distance=%d reachableOpen=%d\n",
		sel.Goal, sel.Tier, sel.Distance, sel.ReachableOpenCount)

	vr := validate.Validate(res.Grid, res.InnerStart, sel.Goal, opts.margin)
	fmt.Fprintf(w, "validate: %s\n", vr.Message)

	if opts.layers {
		marks := map[grid.Cell]rune{}
		for _, c := range sel.Path {
			marks[c] = '*'
		}
		marks[p.Entrance] = 'E'
		marks[res.InnerStart] = 'S'
		marks[sel.Goal] = 'G'
		for z := 0; z < p.Size; z++ {
			fmt.Fprintf(w, "\nz=%d\n%s", z, res.Grid.Layer(z, marks))
		}
	}

	if !vr.OK {
		return fmt.Errorf("validation failed: %s", vr.Message)
	}
	return nil
}
