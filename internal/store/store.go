// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists discovery runs to a local SQLite database so
// past rankings can be listed and inspected. It is a thin IO layer: the
// pipeline never reads from it.
// Implements: prd007-run-history (R1-R3).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/repo-scout/pkg/types"
)

const defaultPath = "repo-scout.db"

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the run-history database, creating the schema
// if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = defaultPath
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			user_query TEXT NOT NULL,
			query TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id TEXT NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			owner TEXT NOT NULL,
			name TEXT NOT NULL,
			repo_id TEXT NOT NULL,
			score REAL NOT NULL,
			breakdown TEXT NOT NULL,
			metrics TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run summarizes one saved discovery run.
type Run struct {
	ID         string
	UserQuery  string
	Query      types.Query
	CreatedAt  time.Time
	Candidates int
}

// SaveRun records a completed run and its ranked candidates, returning
// the generated run ID.
func (s *Store) SaveRun(ctx context.Context, userQuery string, query types.Query, ranked []types.ScoredCandidate) (string, error) {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return "", fmt.Errorf("marshaling query: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, user_query, query, created_at) VALUES (?, ?, ?, ?)`,
		id, userQuery, string(queryJSON), createdAt,
	); err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for i, sc := range ranked {
		breakdown, err := json.Marshal(sc.Breakdown)
		if err != nil {
			return "", fmt.Errorf("marshaling breakdown for %s: %w", sc.Candidate.FullName(), err)
		}
		metrics, err := json.Marshal(sc.Metrics)
		if err != nil {
			return "", fmt.Errorf("marshaling metrics for %s: %w", sc.Candidate.FullName(), err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results (run_id, position, owner, name, repo_id, score, breakdown, metrics)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, sc.Candidate.Owner, sc.Candidate.Name, sc.Candidate.ID, sc.Score,
			string(breakdown), string(metrics),
		); err != nil {
			return "", fmt.Errorf("inserting result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// ListRuns returns saved runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.user_query, r.query, r.created_at,
		        (SELECT count(*) FROM results WHERE run_id = r.id)
		 FROM runs r ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			queryJSON string
			createdAt string
		)
		if err := rows.Scan(&run.ID, &run.UserQuery, &queryJSON, &createdAt, &run.Candidates); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if err := json.Unmarshal([]byte(queryJSON), &run.Query); err != nil {
			return nil, fmt.Errorf("unmarshaling query for run %s: %w", run.ID, err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			run.CreatedAt = t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads one run and its ranked candidates by ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, []types.ScoredCandidate, error) {
	var (
		run       Run
		queryJSON string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_query, query, created_at FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.UserQuery, &queryJSON, &createdAt)
	if err == sql.ErrNoRows {
		return Run{}, nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return Run{}, nil, fmt.Errorf("loading run: %w", err)
	}
	if err := json.Unmarshal([]byte(queryJSON), &run.Query); err != nil {
		return Run{}, nil, fmt.Errorf("unmarshaling query: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		run.CreatedAt = t
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT owner, name, repo_id, score, breakdown, metrics
		 FROM results WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return Run{}, nil, fmt.Errorf("loading results: %w", err)
	}
	defer rows.Close()

	var ranked []types.ScoredCandidate
	for rows.Next() {
		var (
			sc        types.ScoredCandidate
			breakdown string
			metrics   string
		)
		if err := rows.Scan(&sc.Candidate.Owner, &sc.Candidate.Name, &sc.Candidate.ID,
			&sc.Score, &breakdown, &metrics); err != nil {
			return Run{}, nil, fmt.Errorf("scanning result: %w", err)
		}
		if err := json.Unmarshal([]byte(breakdown), &sc.Breakdown); err != nil {
			return Run{}, nil, fmt.Errorf("unmarshaling breakdown: %w", err)
		}
		if err := json.Unmarshal([]byte(metrics), &sc.Metrics); err != nil {
			return Run{}, nil, fmt.Errorf("unmarshaling metrics: %w", err)
		}
		ranked = append(ranked, sc)
	}

	run.Candidates = len(ranked)
	return run, ranked, rows.Err()
}
