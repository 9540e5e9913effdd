// Package store persists step snapshots to SQLite so the history of a run
// survives restarts and can be queried through the HTTP API.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tharsis-sim/marsclim/internal/climate"
)

// Store wraps a SQLite connection for snapshot history. It implements
// runner.SnapshotSink.
type Store struct {
	conn  *sqlx.DB
	runID uuid.UUID
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn, runID: uuid.New()}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		sim_time_seconds REAL NOT NULL,
		computed_at TEXT NOT NULL,
		forcing_json TEXT NOT NULL,
		averages_json TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_run_step ON snapshots(run_id, step);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Name identifies the sink in logs and metrics.
func (s *Store) Name() string { return "sqlite" }

// Record appends one snapshot to the history table.
func (s *Store) Record(ctx context.Context, snap climate.StepSnapshot) error {
	forcingJSON, err := json.Marshal(snap.Forcing)
	if err != nil {
		return fmt.Errorf("marshal forcing: %w", err)
	}
	averagesJSON, err := json.Marshal(snap.Averages)
	if err != nil {
		return fmt.Errorf("marshal averages: %w", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO snapshots (run_id, step, sim_time_seconds, computed_at, forcing_json, averages_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.runID.String(), snap.Step, snap.SimTimeSeconds, snap.ComputedAt.UTC().Format(time.RFC3339Nano), string(forcingJSON), string(averagesJSON),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

type snapshotRow struct {
	Step           uint64  `db:"step"`
	SimTimeSeconds float64 `db:"sim_time_seconds"`
	ComputedAt     string  `db:"computed_at"`
	ForcingJSON    string  `db:"forcing_json"`
	AveragesJSON   string  `db:"averages_json"`
}

// Recent returns up to limit snapshots of the current run, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]climate.StepSnapshot, error) {
	var rows []snapshotRow
	err := s.conn.SelectContext(ctx, &rows,
		`SELECT step, sim_time_seconds, computed_at, forcing_json, averages_json
		 FROM snapshots WHERE run_id = ? ORDER BY step DESC LIMIT ?`,
		s.runID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}

	snaps := make([]climate.StepSnapshot, 0, len(rows))
	for _, row := range rows {
		computedAt, err := time.Parse(time.RFC3339Nano, row.ComputedAt)
		if err != nil {
			return nil, fmt.Errorf("decode timestamp for step %d: %w", row.Step, err)
		}
		snap := climate.StepSnapshot{
			Step:           row.Step,
			SimTimeSeconds: row.SimTimeSeconds,
			ComputedAt:     computedAt,
		}
		if err := json.Unmarshal([]byte(row.ForcingJSON), &snap.Forcing); err != nil {
			return nil, fmt.Errorf("decode forcing for step %d: %w", row.Step, err)
		}
		if err := json.Unmarshal([]byte(row.AveragesJSON), &snap.Averages); err != nil {
			return nil, fmt.Errorf("decode averages for step %d: %w", row.Step, err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}
