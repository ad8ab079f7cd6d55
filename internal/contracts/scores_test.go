package contracts

import (
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name  string
		flags []RiskFlag
		want  RiskLevel
	}{
		{"no flags", nil, RiskGreen},
		{"amber only", []RiskFlag{FlagVolumeMissing, FlagHighVolatility}, RiskAmber},
		{"red wins", []RiskFlag{FlagVolumeMissing, FlagDeepDrawdown}, RiskRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFor(tt.flags))
		})
	}
}

func TestSortFlags(t *testing.T) {
	flags := []RiskFlag{FlagVolumeMissing, FlagStaleData, FlagDeepDrawdown, FlagHighVolatility}
	SortFlags(flags)

	assert.Equal(t, []RiskFlag{FlagDeepDrawdown, FlagHighVolatility, FlagStaleData, FlagVolumeMissing}, flags)
	assert.Equal(t, "deep_drawdown|high_volatility|stale_data|volume_missing", JoinFlags(flags))
}

func TestGateResult_ReasonString(t *testing.T) {
	g := GateResult{Reasons: []GateReason{ReasonMissingOHLC, ReasonHistoryLtMin}}
	assert.Equal(t, "MISSING_OHLC|HISTORY_LT_MIN", g.ReasonString())
	assert.True(t, g.Has(ReasonHistoryLtMin))
	assert.False(t, g.Has(ReasonPriceLtFloor))

	assert.Equal(t, "", GateResult{Eligible: true}.ReasonString())
}

func TestDataQualitySnapshot(t *testing.T) {
	tests := []struct {
		name     string
		snapshot DataQualitySnapshot
		want     bool
	}{
		{"valid snapshot", DataQualitySnapshot{LoadedSymbols: 9, QualityScore: 0.9}, true},
		{"low quality score", DataQualitySnapshot{LoadedSymbols: 9, QualityScore: 0.5}, false},
		{"nothing loaded", DataQualitySnapshot{LoadedSymbols: 0, QualityScore: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snapshot.IsValid())
		})
	}

	snap := DataQualitySnapshot{Coverage: map[string]float64{"ohlcv": 1.0, "volume": 0.5}}
	assert.InDelta(t, 0.75, snap.CoverageRate(), 1e-12)
	assert.Equal(t, 0.0, (&DataQualitySnapshot{}).CoverageRate())
}

func TestStage(t *testing.T) {
	assert.Len(t, AllStages(), 6)
	assert.Equal(t, "S2", StageFeatures.ShortName())
	assert.Equal(t, "UNKNOWN", Stage("nope").ShortName())
	for _, s := range AllStages() {
		assert.NotEqual(t, "unknown", s.Description(), s)
	}
	assert.Equal(t, "unknown", Stage("nope").Description())
}

func TestScoreRow_IsTopRanked(t *testing.T) {
	tests := []struct {
		name string
		rank int
		n    int
		want bool
	}{
		{"first", 1, 3, true},
		{"boundary", 3, 3, true},
		{"outside", 4, 3, false},
		{"unranked", 0, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ScoreRow{Symbol: "SPY", Rank: tt.rank}
			assert.Equal(t, tt.want, r.IsTopRanked(tt.n))
		})
	}
}

func TestFeatureRow_HasPrice(t *testing.T) {
	assert.True(t, (&FeatureRow{Close: null.FloatFrom(10)}).HasPrice())
	assert.False(t, (&FeatureRow{}).HasPrice())
	assert.False(t, (&FeatureRow{Close: null.FloatFrom(10), LoadError: "read failed"}).HasPrice())
}
