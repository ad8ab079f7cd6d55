package contracts

import (
	"context"
	"time"
)

// SeriesLoader loads one member's OHLCV history (S0)
// ⭐ SSOT: S0 로더 인터페이스
type SeriesLoader interface {
	Load(ctx context.Context, member Member) (*LoadResult, error)
}

// FeatureEngine computes the feature row of a series at an anchor date (S2).
// runTime only feeds staleness_days_at_run.
// ⭐ SSOT: S2 피처 인터페이스
type FeatureEngine interface {
	Compute(series *Series, asOf, runTime time.Time) FeatureRow
}

// GateEvaluator applies the eligibility gates (S3)
// ⭐ SSOT: S3 게이트 인터페이스
type GateEvaluator interface {
	Evaluate(row *FeatureRow, member Member) GateResult
}

// Scorer scores an eligible feature row (S4)
// ⭐ SSOT: S4 스코어링 인터페이스
type Scorer interface {
	Score(row *FeatureRow, member Member, gate GateResult) ScoreRow
}

// Ranker orders scored rows (S4)
type Ranker interface {
	Rank(rows []ScoreRow) []ScoreRow
}
