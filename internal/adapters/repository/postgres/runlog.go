// Package postgres records execution history: one row per run plus one row
// per node outcome, for audit queries across many engine instances.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portflow/portflow/internal/core/runner"
)

// ErrRunNotFound — no recorded run has the requested identifier.
var ErrRunNotFound = errors.New("run not found")

// RunLogSaver writes run reports to PostgreSQL.
type RunLogSaver struct {
	pool *pgxpool.Pool
}

// NewRunLogSaver wraps an existing connection pool.
func NewRunLogSaver(pool *pgxpool.Pool) *RunLogSaver {
	return &RunLogSaver{pool: pool}
}

// Connect opens a pool from a connection string and bootstraps the schema.
func Connect(ctx context.Context, connString string) (*RunLogSaver, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := NewRunLogSaver(pool)
	if err := s.CreateTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// CreateTables bootstraps the schema.
func (s *RunLogSaver) CreateTables(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS runs (
			run_id      VARCHAR(64) PRIMARY KEY,
			flow_name   TEXT NOT NULL,
			started_at  TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS node_results (
			run_id      VARCHAR(64) NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
			node_id     TEXT NOT NULL,
			node_type   TEXT NOT NULL,
			state       TEXT NOT NULL,
			error       TEXT,
			started_at  TIMESTAMPTZ,
			finished_at TIMESTAMPTZ,
			PRIMARY KEY (run_id, node_id)
		);

		CREATE INDEX IF NOT EXISTS idx_runs_flow_name ON runs (flow_name);
		CREATE INDEX IF NOT EXISTS idx_node_results_state ON node_results (state);
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create run log tables: %w", err)
	}
	return nil
}

// SaveReport records a finished run and all of its node outcomes in one
// transaction.
func (s *RunLogSaver) SaveReport(ctx context.Context, flowName string, report *runner.Report) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin run log transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO runs (run_id, flow_name, started_at, finished_at) VALUES ($1, $2, $3, $4)`,
		report.RunID, flowName, report.StartedAt, report.FinishedAt)
	if err != nil {
		return fmt.Errorf("save run %s: %w", report.RunID, err)
	}

	for _, res := range report.Results {
		var errText *string
		if res.Err != nil {
			msg := res.Err.Error()
			errText = &msg
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO node_results (run_id, node_id, node_type, state, error, started_at, finished_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			report.RunID, res.NodeID, res.Type, res.State.String(), errText, res.StartedAt, res.FinishedAt)
		if err != nil {
			return fmt.Errorf("save node result %s/%s: %w", report.RunID, res.NodeID, err)
		}
	}

	return tx.Commit(ctx)
}

// RunStates returns the per-node states of one recorded run.
func (s *RunLogSaver) RunStates(ctx context.Context, runID string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT node_id, state FROM node_results WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	defer rows.Close()

	states := make(map[string]string)
	for rows.Next() {
		var nodeID, state string
		if err := rows.Scan(&nodeID, &state); err != nil {
			return nil, fmt.Errorf("scan node result row: %w", err)
		}
		states[nodeID] = state
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return states, nil
}

// LastRunID returns the most recent run recorded for a flow.
func (s *RunLogSaver) LastRunID(ctx context.Context, flowName string) (string, error) {
	var runID string
	err := s.pool.QueryRow(ctx,
		`SELECT run_id FROM runs WHERE flow_name = $1 ORDER BY started_at DESC LIMIT 1`,
		flowName).Scan(&runID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w for flow %q", ErrRunNotFound, flowName)
		}
		return "", fmt.Errorf("query last run: %w", err)
	}
	return runID, nil
}

// Close closes the connection pool.
func (s *RunLogSaver) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
