// Command maze-batch runs the maze pipeline over many seeds, prints the text
// report and optionally writes CSV, charts and a run-history record.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/banshee-data/maze3d/internal/config"
	"github.com/banshee-data/maze3d/internal/maze/batch"
	"github.com/banshee-data/maze3d/internal/maze/batch/viz"
	"github.com/banshee-data/maze3d/internal/maze/seed"
	"github.com/banshee-data/maze3d/internal/runstore"
	"github.com/banshee-data/maze3d/internal/timeutil"
	"github.com/banshee-data/maze3d/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to a maze JSON config (defaults built in)")
	policyFlag  = flag.String("policy", "random", "Seed policy: random, today or fixed")
	seedList    = flag.String("seeds", "", "Comma-separated seeds for -policy fixed")
	nFlag       = flag.Int("n", 0, "Iterations (0 = config)")
	sizeFlag    = flag.Int("size", 0, "Volume side length (0 = config)")
	marginFlag  = flag.Int("margin", -1, "Goal margin (negative = config)")
	limitFlag   = flag.Int("limit", 0, "Fail samples to keep, clamped to 1..200 (0 = config)")
	workersFlag = flag.Int("workers", 0, "Concurrent iterations (0 = config)")
	quietFlag   = flag.Bool("quiet", false, "Do not record per-failure details")
	summaryCSV  = flag.String("summary-csv", "", "Append the run summary to this CSV file")
	rawCSV      = flag.String("raw-csv", "", "Write one CSV row per iteration to this file")
	pngOut      = flag.String("png", "", "Write a distance histogram PNG to this path")
	htmlOut     = flag.String("html", "", "Write an HTML chart page to this path")
	saveFlag    = flag.Bool("save", false, "Record the run in the run store")
	dbPath      = flag.String("db", "", "Run store path (empty = config)")
	listFlag    = flag.Int("list", 0, "List the newest N stored runs and exit")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("maze-batch"))
		return
	}

	cfg := config.DefaultMazeConfig()
	if *configPath != "" {
		loaded, err := config.LoadMazeConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	storePath := cfg.GetRunStorePath()
	if *dbPath != "" {
		storePath = *dbPath
	}

	if flag.NArg() > 0 && flag.Arg(0) == "migrate" {
		if err := runMigrate(flag.Args()[1:], storePath, os.Stdout); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		return
	}

	if *listFlag > 0 {
		if err := listRuns(storePath, *listFlag, os.Stdout); err != nil {
			log.Fatalf("Failed to list runs: %v", err)
		}
		return
	}

	p := batchParams(cfg)
	policy, err := pickPolicy(*policyFlag, *seedList, cfg, timeutil.RealClock{})
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}
	if f, ok := policy.(seed.Fixed); ok && *nFlag == 0 {
		p.N = len(f.List)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := batch.Run(ctx, p, policy)
	if err != nil {
		log.Printf("Batch interrupted: %v", err)
	}
	fmt.Print(r.String())
	fmt.Printf("elapsed=%s distance mean=%.2f sd=%.2f min=%.0f max=%.0f\n",
		r.Elapsed.Round(time.Millisecond), r.Stats.Distance.Mean, r.Stats.Distance.StdDev,
		r.Stats.Distance.Min, r.Stats.Distance.Max)

	if err := writeOutputs(r); err != nil {
		log.Fatalf("Failed to write outputs: %v", err)
	}

	if *saveFlag {
		id, err := saveRun(storePath, r)
		if err != nil {
			log.Fatalf("Failed to save run: %v", err)
		}
		fmt.Printf("saved run %s to %s\n", id, storePath)
	}

	if r.Fail > 0 || err != nil {
		os.Exit(1)
	}
}

// batchParams layers command-line flags over the config's batch parameters.
func batchParams(cfg *config.MazeConfig) batch.Params {
	p := cfg.BatchParams()
	if *nFlag > 0 {
		p.N = *nFlag
	}
	if *sizeFlag != 0 {
		p.Size = *sizeFlag
	}
	if *marginFlag >= 0 {
		p.Margin = *marginFlag
	}
	if *limitFlag != 0 {
		p.FailLimit = *limitFlag
	}
	if *workersFlag > 0 {
		p.Workers = *workersFlag
	}
	if *quietFlag {
		p.LogFailDetails = false
	}
	return p
}

// pickPolicy resolves the -policy name into a seed policy.
func pickPolicy(name, seeds string, cfg *config.MazeConfig, clock timeutil.Clock) (seed.Policy, error) {
	switch strings.ToLower(name) {
	case "random":
		return seed.NewRandom()
	case "today":
		return cfg.Daily(clock).Variant(), nil
	case "fixed":
		list, err := parseSeeds(seeds)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("-policy fixed needs -seeds")
		}
		return seed.Fixed{List: list}, nil
	default:
		return nil, fmt.Errorf("unknown policy %q (want random, today or fixed)", name)
	}
}

// parseSeeds parses a comma-separated list of seeds.
func parseSeeds(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func writeOutputs(r *batch.Report) error {
	if *summaryCSV != "" || *rawCSV != "" {
		if err := writeCSV(r, *summaryCSV, *rawCSV); err != nil {
			return err
		}
	}
	if *pngOut != "" {
		if err := viz.WriteDistanceHistogram(r, *pngOut); err != nil {
			return fmt.Errorf("histogram: %w", err)
		}
	}
	if *htmlOut != "" {
		f, err := os.Create(*htmlOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := viz.RenderHTML(r, f); err != nil {
			return fmt.Errorf("html: %w", err)
		}
	}
	return nil
}

// writeCSV appends the summary row (writing headers to a new file) and
// writes the per-iteration rows. Either path may be empty.
func writeCSV(r *batch.Report, summaryPath, rawPath string) error {
	var summary, raw io.Writer = io.Discard, io.Discard
	newSummary := false

	if summaryPath != "" {
		_, statErr := os.Stat(summaryPath)
		newSummary = os.IsNotExist(statErr)
		f, err := os.OpenFile(summaryPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		summary = f
	}
	if rawPath != "" {
		f, err := os.Create(rawPath)
		if err != nil {
			return err
		}
		defer f.Close()
		raw = f
	}

	w := batch.NewCSVWriter(summary, raw)
	if newSummary || summaryPath == "" {
		w.WriteHeaders()
	} else {
		w.Raw.Write(batch.RawHeaders())
	}
	if err := w.WriteReport(r); err != nil {
		return err
	}
	return w.Flush()
}

func saveRun(path string, r *batch.Report) (string, error) {
	store, err := runstore.Open(path)
	if err != nil {
		return "", err
	}
	defer store.Close()
	return store.SaveReport(r)
}

// runMigrate handles "maze-batch migrate up|down|status" against the run store.
func runMigrate(args []string, path string, w io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: maze-batch [-db path] migrate up|down|status")
	}

	store, err := runstore.OpenDB(path)
	if err != nil {
		return err
	}
	defer store.Close()

	switch args[0] {
	case "up":
		if err := store.MigrateUp(); err != nil {
			return err
		}
	case "down":
		if err := store.MigrateDown(); err != nil {
			return err
		}
	case "status":
	default:
		return fmt.Errorf("unknown migrate action %q", args[0])
	}

	version, dirty, err := store.MigrationVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: schema version %d (dirty=%t)\n", path, version, dirty)
	return nil
}

func listRuns(path string, limit int, w io.Writer) error {
	store, err := runstore.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		fmt.Fprintf(w, "%s %s [%s] size=%d margin=%d N=%d OK=%d FAIL=%d dist=%.2f elapsed=%s\n",
			run.StartedAt.Format(time.RFC3339), run.ID, run.Title, run.Size, run.Margin,
			run.N, run.OK, run.Fail, run.DistanceMean, run.Elapsed.Round(time.Millisecond))
	}
	return nil
}
