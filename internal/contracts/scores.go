package contracts

import (
	"sort"
	"strings"

	"github.com/guregu/null/v6"
)

// RiskFlag is an independent, non-exclusionary warning attached to a scored symbol
type RiskFlag string

const (
	FlagDeepDrawdown      RiskFlag = "deep_drawdown"
	FlagExtremeVolatility RiskFlag = "extreme_volatility"
	FlagHighVolatility    RiskFlag = "high_volatility"
	FlagLowLiquidity      RiskFlag = "low_liquidity"
	FlagMissingData       RiskFlag = "missing_data"
	FlagOverbought        RiskFlag = "overbought"
	FlagSplitSuspect      RiskFlag = "split_suspect"
	FlagStaleData         RiskFlag = "stale_data"
	FlagVolumeMissing     RiskFlag = "volume_missing"
)

// RiskLevel is the traffic-light summary of a symbol's flags
type RiskLevel string

const (
	RiskGreen RiskLevel = "GREEN"
	RiskAmber RiskLevel = "AMBER"
	RiskRed   RiskLevel = "RED"
)

func (l RiskLevel) rank() int {
	switch l {
	case RiskRed:
		return 2
	case RiskAmber:
		return 1
	default:
		return 0
	}
}

// Severity returns the tier of a flag
func (f RiskFlag) Severity() RiskLevel {
	switch f {
	case FlagDeepDrawdown, FlagExtremeVolatility:
		return RiskRed
	default:
		return RiskAmber
	}
}

// LevelFor derives the risk level: any RED flag wins, then any AMBER flag
func LevelFor(flags []RiskFlag) RiskLevel {
	level := RiskGreen
	for _, f := range flags {
		if f.Severity().rank() > level.rank() {
			level = f.Severity()
		}
	}
	return level
}

// SortFlags orders flags by severity (RED first), then by name
func SortFlags(flags []RiskFlag) {
	sort.SliceStable(flags, func(i, j int) bool {
		ri, rj := flags[i].Severity().rank(), flags[j].Severity().rank()
		if ri != rj {
			return ri > rj
		}
		return flags[i] < flags[j]
	})
}

// JoinFlags pipe-joins flag codes
func JoinFlags(flags []RiskFlag) string {
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = string(f)
	}
	return strings.Join(parts, "|")
}

// ComponentScore is one normalized contribution to the monitor score
type ComponentScore struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`   // 0.0 ~ 1.0
	Weight  int     `json:"weight"`  // points out of 100
	Points  float64 `json:"points"`  // Value * Weight
	Neutral bool    `json:"neutral"` // inputs were null, NEUTRAL policy applied
}

// ScoreRow is the scored output of one eligible symbol
// ⭐ SSOT: S4 → S5 점수 전달
type ScoreRow struct {
	Symbol       string `json:"symbol"`
	Rank         int    `json:"rank"`          // 1-based, set by the ranker
	MonitorScore int    `json:"monitor_score"` // 1 ~ 10

	Points          float64          `json:"points"` // 0 ~ 100 before scaling
	Components      []ComponentScore `json:"components"`
	DrawdownPenalty float64          `json:"drawdown_penalty"`
	ThemeBonus      float64          `json:"theme_bonus"`

	RiskFlags   []RiskFlag `json:"risk_flags"`
	RiskLevel   RiskLevel  `json:"risk_level"`
	Explanation string     `json:"explanation"`

	ThemeBucket string    `json:"theme_bucket"`
	AssetType   AssetType `json:"asset_type"`
	LastDate    null.Time `json:"last_date"`
	LagDays     null.Int  `json:"lag_days"`

	// filled from an external model-scoring file when present
	MLSignal  null.Float  `json:"ml_signal"`
	MLModelID null.String `json:"ml_model_id"`
}

// IsTopRanked checks if the symbol is in the top N ranks
func (r *ScoreRow) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}
