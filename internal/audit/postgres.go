package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/database"
)

const postgresSchema = `
CREATE SCHEMA IF NOT EXISTS monitor;
CREATE TABLE IF NOT EXISTS monitor.runs (
	run_id         TEXT PRIMARY KEY,
	as_of_date     DATE NOT NULL,
	run_timestamp  TIMESTAMPTZ NOT NULL,
	config_hash    TEXT NOT NULL,
	watchlist      INTEGER NOT NULL,
	eligible       INTEGER NOT NULL,
	scored         INTEGER NOT NULL,
	worst_lag_days INTEGER,
	top_symbol     TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS monitor.symbol_results (
	run_id            TEXT NOT NULL REFERENCES monitor.runs(run_id) ON DELETE CASCADE,
	symbol            TEXT NOT NULL,
	eligible          BOOLEAN NOT NULL,
	gate_fail_reasons TEXT NOT NULL,
	monitor_score     INTEGER,
	rank              INTEGER,
	risk_level        TEXT NOT NULL DEFAULT '',
	risk_flags        TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, symbol)
);
CREATE INDEX IF NOT EXISTS idx_symbol_results_symbol ON monitor.symbol_results(symbol);
`

// PostgresRecorder stores run history in the monitor schema
type PostgresRecorder struct {
	db *database.DB
}

// NewPostgresRecorder wraps a connection pool
func NewPostgresRecorder(db *database.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// Migrate creates the history schema
func (r *PostgresRecorder) Migrate(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate postgres history: %w", err)
	}
	return nil
}

// RecordRun upserts the run and replaces its symbol rows in one transaction
func (r *PostgresRecorder) RecordRun(ctx context.Context, result *contracts.RunResult) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	run := runRow(result)
	query := `
		INSERT INTO monitor.runs (
			run_id, as_of_date, run_timestamp, config_hash,
			watchlist, eligible, scored, worst_lag_days, top_symbol
		) VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (run_id) DO UPDATE SET
			as_of_date = EXCLUDED.as_of_date,
			run_timestamp = EXCLUDED.run_timestamp,
			config_hash = EXCLUDED.config_hash,
			watchlist = EXCLUDED.watchlist,
			eligible = EXCLUDED.eligible,
			scored = EXCLUDED.scored,
			worst_lag_days = EXCLUDED.worst_lag_days,
			top_symbol = EXCLUDED.top_symbol
	`
	if _, err := tx.Exec(ctx, query,
		run.RunID, run.AsOfDate, run.RunTimestamp, run.ConfigHash,
		run.Watchlist, run.Eligible, run.Scored, run.WorstLagDays, run.TopSymbol,
	); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM monitor.symbol_results WHERE run_id = $1`, run.RunID); err != nil {
		return fmt.Errorf("failed to clear symbol results: %w", err)
	}

	batch := &pgx.Batch{}
	for _, s := range symbolRows(result) {
		batch.Queue(`
			INSERT INTO monitor.symbol_results (
				run_id, symbol, eligible, gate_fail_reasons,
				monitor_score, rank, risk_level, risk_flags
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			s.RunID, s.Symbol, s.Eligible, s.Reasons,
			s.MonitorScore, s.Rank, s.RiskLevel, s.RiskFlags,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save symbol results: %w", err)
	}

	return tx.Commit(ctx)
}

// ListRuns returns the most recent runs first
func (r *PostgresRecorder) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT run_id, to_char(as_of_date, 'YYYY-MM-DD'), run_timestamp, config_hash,
		       watchlist, eligible, scored, worst_lag_days, top_symbol
		FROM monitor.runs
		ORDER BY run_timestamp DESC, run_id DESC
		LIMIT $1`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	out := make([]RunRecord, 0)
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.RunID, &rec.AsOfDate, &rec.RunTimestamp, &rec.ConfigHash,
			&rec.Watchlist, &rec.Eligible, &rec.Scored, &rec.WorstLagDays, &rec.TopSymbol,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SymbolHistory returns one symbol's outcomes, most recent anchor first
func (r *PostgresRecorder) SymbolHistory(ctx context.Context, symbol string, limit int) ([]SymbolRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT s.run_id, to_char(r.as_of_date, 'YYYY-MM-DD'), s.symbol, s.eligible,
		       s.gate_fail_reasons, s.monitor_score, s.rank, s.risk_level, s.risk_flags
		FROM monitor.symbol_results s
		JOIN monitor.runs r ON r.run_id = s.run_id
		WHERE s.symbol = $1
		ORDER BY r.as_of_date DESC, r.run_timestamp DESC
		LIMIT $2`, symbol, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query symbol history: %w", err)
	}
	defer rows.Close()

	out := make([]SymbolRecord, 0)
	for rows.Next() {
		var rec SymbolRecord
		if err := rows.Scan(
			&rec.RunID, &rec.AsOfDate, &rec.Symbol, &rec.Eligible, &rec.Reasons,
			&rec.MonitorScore, &rec.Rank, &rec.RiskLevel, &rec.RiskFlags,
		); err != nil {
			return nil, fmt.Errorf("scan symbol history: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the pool
func (r *PostgresRecorder) Close() error {
	r.db.Close()
	return nil
}
