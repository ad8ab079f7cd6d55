package s3_gates

import (
	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
)

// Evaluator implements S3: eligibility gating
// ⭐ SSOT: S3 게이트 로직은 여기서만
type Evaluator struct {
	config strategyconfig.Gates
}

// NewEvaluator creates a new gate evaluator
func NewEvaluator(config strategyconfig.Gates) *Evaluator {
	return &Evaluator{config: config}
}

// Evaluate applies every gate in fixed order and collects all reasons.
// It is pure: the same row and member always give the same result.
func (e *Evaluator) Evaluate(row *contracts.FeatureRow, member contracts.Member) contracts.GateResult {
	result := contracts.GateResult{
		Symbol:  member.Symbol,
		Reasons: make([]contracts.GateReason, 0, 2),
	}
	if row == nil {
		row = &contracts.FeatureRow{LoadError: "no feature row"}
	}

	// 1. 데이터 없음 (로드 실패 또는 기준일 이전 봉 없음)
	if !row.HasPrice() || row.HistoryDays == 0 {
		result.Reasons = append(result.Reasons, contracts.ReasonMissingOHLC)
	}

	// 2. 최소 이력
	if row.HistoryDays < e.config.MinHistoryDays {
		result.Reasons = append(result.Reasons, contracts.ReasonHistoryLtMin)
	}

	// 3. 최소 가격 (close 없으면 skip)
	if row.Close.Valid && row.Close.Float64 < e.config.PriceFloor {
		result.Reasons = append(result.Reasons, contracts.ReasonPriceLtFloor)
	}

	// 4. 유동성: 거래량이 있을 때만
	if !row.VolumeMissing && row.ADV20D.Valid && row.ADV20D.Float64 < e.config.LiquidityFloor {
		result.Reasons = append(result.Reasons, contracts.ReasonLiquidityLtFloor)
	}

	// 5. watchlist 메타데이터 오류
	if !member.Valid() {
		result.Reasons = append(result.Reasons, contracts.ReasonWatchlistInvalidRow)
	}

	result.Eligible = len(result.Reasons) == 0
	result.Stale = row.LagDays.Valid && row.LagDays.Int64 > int64(e.config.MaxLagDays)

	return result
}

// Summarize counts failures per reason. Every reason is present, zero included.
func Summarize(results []contracts.GateResult) map[contracts.GateReason]int {
	counts := make(map[contracts.GateReason]int, len(contracts.GateOrder()))
	for _, r := range contracts.GateOrder() {
		counts[r] = 0
	}
	for _, res := range results {
		for _, r := range res.Reasons {
			counts[r]++
		}
	}
	return counts
}

// CountEligible returns the number of eligible results
func CountEligible(results []contracts.GateResult) int {
	n := 0
	for _, r := range results {
		if r.Eligible {
			n++
		}
	}
	return n
}
