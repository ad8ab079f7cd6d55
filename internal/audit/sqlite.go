package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	as_of_date     TEXT NOT NULL,
	run_timestamp  TEXT NOT NULL,
	config_hash    TEXT NOT NULL,
	watchlist      INTEGER NOT NULL,
	eligible       INTEGER NOT NULL,
	scored         INTEGER NOT NULL,
	worst_lag_days INTEGER,
	top_symbol     TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS symbol_results (
	run_id            TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	symbol            TEXT NOT NULL,
	eligible          INTEGER NOT NULL,
	gate_fail_reasons TEXT NOT NULL,
	monitor_score     INTEGER,
	rank              INTEGER,
	risk_level        TEXT NOT NULL DEFAULT '',
	risk_flags        TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, symbol)
);
CREATE INDEX IF NOT EXISTS idx_symbol_results_symbol ON symbol_results(symbol);
`

// SQLiteRecorder stores run history in a local SQLite file
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder wraps an open SQLite handle
func NewSQLiteRecorder(db *sql.DB) *SQLiteRecorder {
	return &SQLiteRecorder{db: db}
}

// Migrate creates the history tables
func (r *SQLiteRecorder) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("migrate sqlite history: %w", err)
	}
	return nil
}

// RecordRun stores the run and its per-symbol outcomes in one transaction.
// Re-recording a run_id replaces it.
func (r *SQLiteRecorder) RecordRun(ctx context.Context, result *contracts.RunResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	run := runRow(result)
	if _, err := tx.ExecContext(ctx, `DELETE FROM symbol_results WHERE run_id = ?`, run.RunID); err != nil {
		return fmt.Errorf("clear symbol results: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (
			run_id, as_of_date, run_timestamp, config_hash,
			watchlist, eligible, scored, worst_lag_days, top_symbol
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.AsOfDate, run.RunTimestamp.Format(time.RFC3339Nano), run.ConfigHash,
		run.Watchlist, run.Eligible, run.Scored, run.WorstLagDays, run.TopSymbol,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO symbol_results (
			run_id, symbol, eligible, gate_fail_reasons,
			monitor_score, rank, risk_level, risk_flags
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare symbol insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range symbolRows(result) {
		if _, err := stmt.ExecContext(ctx,
			s.RunID, s.Symbol, s.Eligible, s.Reasons,
			s.MonitorScore, s.Rank, s.RiskLevel, s.RiskFlags,
		); err != nil {
			return fmt.Errorf("insert symbol %s: %w", s.Symbol, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs first
func (r *SQLiteRecorder) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, as_of_date, run_timestamp, config_hash,
		       watchlist, eligible, scored, worst_lag_days, top_symbol
		FROM runs
		ORDER BY run_timestamp DESC, run_id DESC
		LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	out := make([]RunRecord, 0)
	for rows.Next() {
		var rec RunRecord
		var ts string
		if err := rows.Scan(
			&rec.RunID, &rec.AsOfDate, &ts, &rec.ConfigHash,
			&rec.Watchlist, &rec.Eligible, &rec.Scored, &rec.WorstLagDays, &rec.TopSymbol,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if rec.RunTimestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse run_timestamp %q: %w", ts, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SymbolHistory returns one symbol's outcomes, most recent anchor first
func (r *SQLiteRecorder) SymbolHistory(ctx context.Context, symbol string, limit int) ([]SymbolRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.run_id, r.as_of_date, s.symbol, s.eligible, s.gate_fail_reasons,
		       s.monitor_score, s.rank, s.risk_level, s.risk_flags
		FROM symbol_results s
		JOIN runs r ON r.run_id = s.run_id
		WHERE s.symbol = ?
		ORDER BY r.as_of_date DESC, r.run_timestamp DESC
		LIMIT ?`, symbol, normalizeLimit(limit))
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

// Close closes the database
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return 50
	}
	return limit
}
