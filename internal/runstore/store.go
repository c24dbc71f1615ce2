// Package runstore keeps the history of batch runs in a sqlite database so
// regressions can be compared across builds.
package runstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/maze3d/internal/maze/batch"
	"github.com/banshee-data/maze3d/internal/maze/grid"
	"github.com/banshee-data/maze3d/internal/maze/solve"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
	"PRAGMA foreign_keys=ON",
}

// startedAtLayout is fixed width so started_at sorts as text.
const startedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a sqlite-backed run history.
type Store struct {
	*sql.DB
}

// Run is the stored summary of one batch run.
type Run struct {
	ID             string
	Title          string
	Size           int
	Margin         int
	LoopChance     float64
	N              int
	OK             int
	Fail           int
	FailLimit      int
	DistanceMean   float64
	DistanceStdDev float64
	ReachableMean  float64
	StartedAt      time.Time
	Elapsed        time.Duration
}

// Open opens (creating if needed) the database at path, applies the
// connection PRAGMAs and migrates the schema to the latest version.
func Open(path string) (*Store, error) {
	s, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := s.MigrateUp(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// OpenDB opens the database and applies the PRAGMAs without touching the
// schema. Migration commands use it so they see the schema as it is.
func OpenDB(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store %s: %w", path, err)
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return &Store{db}, nil
}

// SaveReport stores r, its fail samples and its iterations in one
// transaction under a new run id. The id is also written to r.RunID.
func (s *Store) SaveReport(r *batch.Report) (string, error) {
	id := uuid.NewString()

	tx, err := s.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (
			run_id, title, size, margin, loop_chance, n, ok, fail, fail_limit,
			distance_mean, distance_stddev, reachable_mean, started_at, elapsed_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.Title, r.Size, r.Margin, r.LoopChance, r.N, r.OK, r.Fail, r.FailLimit,
		r.Stats.Distance.Mean, r.Stats.Distance.StdDev, r.Stats.ReachableOpen.Mean,
		r.StartedAt.UTC().Format(startedAtLayout), r.Elapsed.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	sampleStmt, err := tx.Prepare(`INSERT INTO fail_samples (run_id, iteration, seed, kind, reason) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare fail sample insert: %w", err)
	}
	defer sampleStmt.Close()
	for _, fs := range r.Samples {
		if _, err := sampleStmt.Exec(id, fs.Iteration, fs.Seed, string(fs.Kind), fs.Reason); err != nil {
			return "", fmt.Errorf("failed to insert fail sample #%d: %w", fs.Iteration, err)
		}
	}

	iterStmt, err := tx.Prepare(`
		INSERT INTO iterations (
			run_id, iteration, seed, ok, kind, goal_x, goal_y, goal_z,
			tier, distance, reachable_open, braid_opened, reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare iteration insert: %w", err)
	}
	defer iterStmt.Close()
	for _, o := range r.Iterations {
		var gx, gy, gz sql.NullInt64
		if o.HasGoal {
			gx = sql.NullInt64{Int64: int64(o.Goal.X), Valid: true}
			gy = sql.NullInt64{Int64: int64(o.Goal.Y), Valid: true}
			gz = sql.NullInt64{Int64: int64(o.Goal.Z), Valid: true}
		}
		_, err := iterStmt.Exec(id, o.Iteration, o.Seed, o.OK, string(o.Kind), gx, gy, gz,
			int(o.Tier), o.Distance, o.ReachableOpen, o.BraidOpened, o.Reason)
		if err != nil {
			return "", fmt.Errorf("failed to insert iteration #%d: %w", o.Iteration, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	r.RunID = id
	return id, nil
}

const runColumns = `run_id, title, size, margin, loop_chance, n, ok, fail, fail_limit,
	COALESCE(distance_mean, 0), COALESCE(distance_stddev, 0), COALESCE(reachable_mean, 0),
	started_at, elapsed_ms`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run       Run
		startedAt string
		elapsedMs int64
	)
	err := sc.Scan(&run.ID, &run.Title, &run.Size, &run.Margin, &run.LoopChance,
		&run.N, &run.OK, &run.Fail, &run.FailLimit,
		&run.DistanceMean, &run.DistanceStdDev, &run.ReachableMean,
		&startedAt, &elapsedMs)
	if err != nil {
		return Run{}, err
	}
	run.StartedAt, err = time.Parse(startedAtLayout, startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
	}
	run.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	return run, nil
}

// GetRun returns the run with the given id.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FailSamples returns the stored fail samples of a run in iteration order.
func (s *Store) FailSamples(runID string) ([]batch.FailSample, error) {
	rows, err := s.Query(`
		SELECT iteration, seed, kind, reason FROM fail_samples
		WHERE run_id = ? ORDER BY iteration`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fail samples: %w", err)
	}
	defer rows.Close()

	var out []batch.FailSample
	for rows.Next() {
		var (
			fs   batch.FailSample
			kind string
		)
		if err := rows.Scan(&fs.Iteration, &fs.Seed, &kind, &fs.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan fail sample: %w", err)
		}
		fs.Kind = batch.FailKind(kind)
		out = append(out, fs)
	}
	return out, rows.Err()
}

// Outcomes returns every stored iteration of a run in iteration order.
func (s *Store) Outcomes(runID string) ([]batch.Outcome, error) {
	rows, err := s.Query(`
		SELECT iteration, seed, ok, kind, goal_x, goal_y, goal_z,
		       tier, distance, reachable_open, braid_opened, reason
		FROM iterations WHERE run_id = ? ORDER BY iteration`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query iterations: %w", err)
	}
	defer rows.Close()

	var out []batch.Outcome
	for rows.Next() {
		var (
			o          batch.Outcome
			kind       string
			tier       int
			gx, gy, gz sql.NullInt64
		)
		err := rows.Scan(&o.Iteration, &o.Seed, &o.OK, &kind, &gx, &gy, &gz,
			&tier, &o.Distance, &o.ReachableOpen, &o.BraidOpened, &o.Reason)
		if err != nil {
			return nil, fmt.Errorf("failed to scan iteration: %w", err)
		}
		o.Kind = batch.FailKind(kind)
		o.Tier = solve.Tier(tier)
		if gx.Valid && gy.Valid && gz.Valid {
			o.HasGoal = true
			o.Goal = grid.Cell{X: int(gx.Int64), Y: int(gy.Int64), Z: int(gz.Int64)}
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// DeleteRun removes a run with its samples and iterations.
func (s *Store) DeleteRun(id string) error {
	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM fail_samples WHERE run_id = ?`,
		`DELETE FROM iterations WHERE run_id = ?`,
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return fmt.Errorf("failed to delete run %s: %w", id, err)
		}
	}
	res, err := tx.Exec(`DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tx.Commit()
}
