package audit

import (
	"context"
	"time"

	"github.com/guregu/null/v6"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/config"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/database"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

// Recorder persists run history
// ⭐ SSOT: 실행 이력 저장/조회는 여기서만
type Recorder interface {
	RecordRun(ctx context.Context, result *contracts.RunResult) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	SymbolHistory(ctx context.Context, symbol string, limit int) ([]SymbolRecord, error)
	Close() error
}

// RunRecord is one row of the run history
type RunRecord struct {
	RunID        string    `json:"run_id"`
	AsOfDate     string    `json:"as_of_date"`
	RunTimestamp time.Time `json:"run_timestamp"`
	ConfigHash   string    `json:"config_hash"`
	Watchlist    int       `json:"watchlist"`
	Eligible     int       `json:"eligible"`
	Scored       int       `json:"scored"`
	WorstLagDays null.Int  `json:"worst_lag_days"`
	TopSymbol    string    `json:"top_symbol"`
}

// SymbolRecord is one symbol's outcome in one run
type SymbolRecord struct {
	RunID        string   `json:"run_id"`
	AsOfDate     string   `json:"as_of_date"`
	Symbol       string   `json:"symbol"`
	Eligible     bool     `json:"eligible"`
	Reasons      string   `json:"gate_fail_reasons"`
	MonitorScore null.Int `json:"monitor_score"`
	Rank         null.Int `json:"rank"`
	RiskLevel    string   `json:"risk_level"`
	RiskFlags    string   `json:"risk_flags"`
}

// Open picks the recorder for the configured history sink:
// Postgres when DATABASE_URL is set, else SQLite, else Noop.
func Open(ctx context.Context, cfg config.HistoryConfig, log *logger.Logger) (Recorder, error) {
	if log == nil {
		log = logger.Nop()
	}

	switch {
	case cfg.URL != "":
		db, err := database.NewPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		rec := NewPostgresRecorder(db)
		if err := rec.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("run history: postgres")
		return rec, nil

	case cfg.SQLitePath != "":
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		rec := NewSQLiteRecorder(db)
		if err := rec.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.WithField("path", cfg.SQLitePath).Info("run history: sqlite")
		return rec, nil

	default:
		return Noop{}, nil
	}
}

// runRow flattens the run-level columns
func runRow(result *contracts.RunResult) RunRecord {
	m := result.Manifest
	rec := RunRecord{
		RunID:        m.RunID,
		AsOfDate:     m.AsOfDate,
		RunTimestamp: m.RunTimestamp.UTC(),
		ConfigHash:   m.ConfigHash,
		Watchlist:    m.Counts.Watchlist,
		Eligible:     m.Counts.Eligible,
		Scored:       m.Counts.Scored,
		WorstLagDays: m.Lag.WorstLagDays,
	}
	if len(result.Scored) > 0 {
		rec.TopSymbol = result.Scored[0].Symbol
	}
	return rec
}

// symbolRows flattens per-symbol outcomes in symbol order
func symbolRows(result *contracts.RunResult) []SymbolRecord {
	out := make([]SymbolRecord, 0, len(result.Symbols))
	for _, s := range result.Symbols {
		rec := SymbolRecord{
			RunID:    result.Manifest.RunID,
			AsOfDate: result.Manifest.AsOfDate,
			Symbol:   s.Member.Symbol,
			Eligible: s.Gate.Eligible,
			Reasons:  s.Gate.ReasonString(),
		}
		if s.Score != nil {
			rec.MonitorScore = null.IntFrom(int64(s.Score.MonitorScore))
			rec.Rank = null.IntFrom(int64(s.Score.Rank))
			rec.RiskLevel = string(s.Score.RiskLevel)
			rec.RiskFlags = contracts.JoinFlags(s.Score.RiskFlags)
		}
		out = append(out, rec)
	}
	return out
}

// Noop discards history
type Noop struct{}

func (Noop) RecordRun(context.Context, *contracts.RunResult) error { return nil }

func (Noop) ListRuns(context.Context, int) ([]RunRecord, error) { return []RunRecord{}, nil }

func (Noop) SymbolHistory(context.Context, string, int) ([]SymbolRecord, error) {
	return []SymbolRecord{}, nil
}

func (Noop) Close() error { return nil }
