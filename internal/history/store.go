/*
PURPOSE:
  Local run ledger: one row per completed run, kept in a single-file SQLite
  database so past metrics survive terminal scrollback.

REQUIREMENTS:
  User-specified:
  - `history` lists past runs with mode, artifact paths, and metric.

  Implementation-discovered:
  - WAL mode keeps the ledger readable while a long run holds it open.
  - Ledger failures must never fail a run; the caller logs and moves on.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (record), internal/cli (list/export)
  - Dependencies: modernc.org/sqlite (pure Go, no cgo), google/uuid

ERROR HANDLING:
  - Returns wrapped errors; callers decide whether they are fatal.

USAGE:
  st, err := history.NewStore("tsct_runs.db")
  st.Record(rec)
  recs, err := st.List(20)

RELATED FILES:
  - internal/model/types.go
  - internal/output/csv.go

MAINTENANCE:
  - Schema changes need a migration; the schema const only creates.
*/

package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/daryltucker/tsct-runner/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	mode          TEXT NOT NULL,
	output_folder TEXT NOT NULL,
	params_path   TEXT NOT NULL,
	model_path    TEXT,
	metric        REAL NOT NULL,
	created_at    TEXT NOT NULL,
	duration_ms   INTEGER NOT NULL
);
`

// Store manages the run ledger in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens the ledger database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewRunID returns a fresh ledger run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// Record inserts a completed run.
func (s *Store) Record(rec model.RunRecord) error {
	var modelPath interface{}
	if rec.ModelPath != "" {
		modelPath = rec.ModelPath
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, mode, output_folder, params_path, model_path, metric, created_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, string(rec.Mode), rec.OutputFolder, rec.ParamsPath, modelPath,
		rec.Metric, rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(limit int) ([]model.RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, mode, output_folder, params_path, model_path, metric, created_at, duration_ms
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []model.RunRecord
	for rows.Next() {
		var rec model.RunRecord
		var mode string
		var modelPath sql.NullString
		var createdStr string
		var durationMS int64

		if err := rows.Scan(&rec.RunID, &mode, &rec.OutputFolder, &rec.ParamsPath,
			&modelPath, &rec.Metric, &createdStr, &durationMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Mode = model.Mode(mode)
		if modelPath.Valid {
			rec.ModelPath = modelPath.String
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, createdStr)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}
