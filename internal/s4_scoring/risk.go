package s4_scoring

import (
	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
)

// RiskAssessor derives risk flags. Flags never affect eligibility.
type RiskAssessor struct {
	risk           strategyconfig.Risk
	liquidityFloor float64
}

// NewRiskAssessor creates a new risk assessor
func NewRiskAssessor(risk strategyconfig.Risk, gates strategyconfig.Gates) *RiskAssessor {
	return &RiskAssessor{risk: risk, liquidityFloor: gates.LiquidityFloor}
}

// Assess returns the flags of a row ordered by severity then name, and the risk level
func (a *RiskAssessor) Assess(row *contracts.FeatureRow, gate contracts.GateResult) ([]contracts.RiskFlag, contracts.RiskLevel) {
	flags := make([]contracts.RiskFlag, 0, 4)

	// RED
	if row.MaxDrawdown6M.Valid && row.MaxDrawdown6M.Float64 <= a.risk.DeepDrawdown {
		flags = append(flags, contracts.FlagDeepDrawdown)
	}
	if row.Vol60D.Valid && row.Vol60D.Float64 >= a.risk.ExtremeVolatility {
		flags = append(flags, contracts.FlagExtremeVolatility)
	} else if row.Vol60D.Valid && row.Vol60D.Float64 >= a.risk.HighVolatility {
		flags = append(flags, contracts.FlagHighVolatility)
	}

	// AMBER
	if row.VolumeMissing {
		flags = append(flags, contracts.FlagVolumeMissing)
	}
	if gate.Stale {
		flags = append(flags, contracts.FlagStaleData)
	}
	if row.SplitSuspect {
		flags = append(flags, contracts.FlagSplitSuspect)
	}
	if row.MissingData {
		flags = append(flags, contracts.FlagMissingData)
	}
	if row.ADV20D.Valid && a.liquidityFloor > 0 &&
		row.ADV20D.Float64 < a.risk.LowLiquidityMultiple*a.liquidityFloor {
		flags = append(flags, contracts.FlagLowLiquidity)
	}
	if row.RSI14.Valid && row.RSI14.Float64 >= a.risk.OverboughtRSI {
		flags = append(flags, contracts.FlagOverbought)
	}

	contracts.SortFlags(flags)
	return flags, contracts.LevelFor(flags)
}
