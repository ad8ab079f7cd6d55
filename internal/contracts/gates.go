package contracts

import "strings"

// GateReason is a fixed eligibility failure code
type GateReason string

const (
	ReasonMissingOHLC         GateReason = "MISSING_OHLC"
	ReasonHistoryLtMin        GateReason = "HISTORY_LT_MIN"
	ReasonPriceLtFloor        GateReason = "PRICE_LT_FLOOR"
	ReasonLiquidityLtFloor    GateReason = "LIQUIDITY_LT_FLOOR"
	ReasonWatchlistInvalidRow GateReason = "WATCHLIST_INVALID_ROW"
)

// GateOrder returns the evaluation order. Reason lists always follow it.
func GateOrder() []GateReason {
	return []GateReason{
		ReasonMissingOHLC,
		ReasonHistoryLtMin,
		ReasonPriceLtFloor,
		ReasonLiquidityLtFloor,
		ReasonWatchlistInvalidRow,
	}
}

// GateResult is the eligibility verdict of one symbol
// ⭐ SSOT: S3 → S4/S5 (Eligible == len(Reasons) == 0)
type GateResult struct {
	Symbol   string       `json:"symbol"`
	Eligible bool         `json:"eligible"`
	Reasons  []GateReason `json:"gate_fail_reasons"`

	// Stale is lag_days above the configured maximum. Not a fail reason.
	Stale bool `json:"stale"`
}

// ReasonString returns the pipe-joined reason list ("" when eligible)
func (g GateResult) ReasonString() string {
	return JoinReasons(g.Reasons)
}

// Has reports whether a reason fired
func (g GateResult) Has(reason GateReason) bool {
	for _, r := range g.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// JoinReasons pipe-joins reason codes
func JoinReasons(reasons []GateReason) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, "|")
}
