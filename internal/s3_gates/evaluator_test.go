package s3_gates

import (
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
)

func healthyRow() *contracts.FeatureRow {
	return &contracts.FeatureRow{
		Symbol:      "SPY",
		HistoryDays: 300,
		Close:       null.FloatFrom(450),
		ADV20D:      null.FloatFrom(5e9),
		LagDays:     null.IntFrom(1),
	}
}

func validMember() contracts.Member {
	return contracts.Member{Symbol: "SPY", AssetType: contracts.AssetTypeETF, FilePath: "SPY.csv"}
}

func TestEvaluate(t *testing.T) {
	gates := strategyconfig.Gates{MinHistoryDays: 252, PriceFloor: 1, LiquidityFloor: 1e6, MaxLagDays: 5}

	tests := []struct {
		name    string
		mutate  func(r *contracts.FeatureRow, m *contracts.Member)
		reasons []contracts.GateReason
		stale   bool
	}{
		{
			name:    "eligible",
			mutate:  func(r *contracts.FeatureRow, m *contracts.Member) {},
			reasons: []contracts.GateReason{},
		},
		{
			name: "missing file",
			mutate: func(r *contracts.FeatureRow, m *contracts.Member) {
				*r = contracts.FeatureRow{Symbol: "SPY", LoadError: "file not found"}
			},
			reasons: []contracts.GateReason{contracts.ReasonMissingOHLC, contracts.ReasonHistoryLtMin},
		},
		{
			name:    "short history",
			mutate:  func(r *contracts.FeatureRow, m *contracts.Member) { r.HistoryDays = 251 },
			reasons: []contracts.GateReason{contracts.ReasonHistoryLtMin},
		},
		{
			name:    "penny price",
			mutate:  func(r *contracts.FeatureRow, m *contracts.Member) { r.Close = null.FloatFrom(0.5) },
			reasons: []contracts.GateReason{contracts.ReasonPriceLtFloor},
		},
		{
			name:    "illiquid",
			mutate:  func(r *contracts.FeatureRow, m *contracts.Member) { r.ADV20D = null.FloatFrom(1000) },
			reasons: []contracts.GateReason{contracts.ReasonLiquidityLtFloor},
		},
		{
			name: "no volume skips liquidity",
			mutate: func(r *contracts.FeatureRow, m *contracts.Member) {
				r.VolumeMissing = true
				r.ADV20D = null.Float{}
			},
			reasons: []contracts.GateReason{},
		},
		{
			name:    "invalid watchlist row",
			mutate:  func(r *contracts.FeatureRow, m *contracts.Member) { m.InvalidReason = "asset_type bad" },
			reasons: []contracts.GateReason{contracts.ReasonWatchlistInvalidRow},
		},
		{
			name: "all reasons in order",
			mutate: func(r *contracts.FeatureRow, m *contracts.Member) {
				r.HistoryDays = 0
				r.Close = null.FloatFrom(0.1)
				r.ADV20D = null.FloatFrom(10)
				r.LoadError = "partial"
				m.InvalidReason = "bad"
			},
			reasons: contracts.GateOrder(),
		},
		{
			name:    "stale is not a reason",
			mutate:  func(r *contracts.FeatureRow, m *contracts.Member) { r.LagDays = null.IntFrom(6) },
			reasons: []contracts.GateReason{},
			stale:   true,
		},
		{
			name:    "lag at threshold is fresh",
			mutate:  func(r *contracts.FeatureRow, m *contracts.Member) { r.LagDays = null.IntFrom(5) },
			reasons: []contracts.GateReason{},
		},
	}

	e := NewEvaluator(gates)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, member := healthyRow(), validMember()
			tt.mutate(row, &member)

			got := e.Evaluate(row, member)

			assert.Equal(t, tt.reasons, got.Reasons)
			assert.Equal(t, len(tt.reasons) == 0, got.Eligible)
			assert.Equal(t, tt.stale, got.Stale)
			assert.Equal(t, "SPY", got.Symbol)
		})
	}
}

func TestSummarize(t *testing.T) {
	results := []contracts.GateResult{
		{Symbol: "A", Eligible: true, Reasons: []contracts.GateReason{}},
		{Symbol: "B", Reasons: []contracts.GateReason{contracts.ReasonMissingOHLC, contracts.ReasonHistoryLtMin}},
		{Symbol: "C", Reasons: []contracts.GateReason{contracts.ReasonHistoryLtMin}},
	}

	counts := Summarize(results)

	assert.Equal(t, 1, counts[contracts.ReasonMissingOHLC])
	assert.Equal(t, 2, counts[contracts.ReasonHistoryLtMin])
	assert.Equal(t, 0, counts[contracts.ReasonPriceLtFloor])
	assert.Len(t, counts, 5)
	assert.Equal(t, 1, CountEligible(results))
}
