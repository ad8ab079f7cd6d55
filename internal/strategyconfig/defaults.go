package strategyconfig

// DefaultDateFormats are tried in order after YYYY-MM-DD
var DefaultDateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"20060102",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"Jan 2 2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// Default returns the complete built-in configuration.
// A YAML file only needs to list the values it overrides.
//
// Volatility convention: sample standard deviation of daily log returns,
// annualized with sqrt(252).
func Default() *Config {
	formats := make([]string, len(DefaultDateFormats))
	copy(formats, DefaultDateFormats)

	return &Config{
		Meta: Meta{
			ProfileID: "default",
			Version:   "1",
		},
		Anchor: Anchor{
			Policy: AnchorFrontier,
		},
		Loader: Loader{
			Strict:      false,
			DateFormats: formats,
		},
		Universe: Universe{},
		Features: Features{
			ReturnType:          ReturnLog,
			AnnualizeVolatility: true,
			TradingDaysPerYear:  252,
			VolWindowShort:      20,
			VolWindowLong:       60,
			LookbackMonths:      6,
			WorstReturnDays:     5,
			LiquidityWindow:     20,
			ZeroVolumeWindow:    60,
			RSIPeriod:           14,
			HighWindow:          252,
			SplitRatio:          1.8,
			SplitVolumeMultiple: 2.0,
			SplitLookback:       252,
		},
		Gates: Gates{
			MinHistoryDays: 252,
			PriceFloor:     1.0,
			LiquidityFloor: 1_000_000,
			MaxLagDays:     5,
		},
		Scoring: Scoring{
			WeightsPct: ScoringWeights{
				Trend:      30,
				Momentum:   25,
				Liquidity:  15,
				Quality:    15,
				Volatility: 15,
			},
			MissingPolicy:    "NEUTRAL",
			MomentumRange:    0.30,
			TrendSMA200Range: 0.20,
			LiquidityCeiling: 1_000_000_000,
			VolatilityLow:    0.15,
			VolatilityHigh:   0.60,
			DrawdownFull:     0.50,
			DrawdownPenalty:  10,
			ThemeBonus:       map[string]float64{},
		},
		Risk: Risk{
			HighVolatility:       0.45,
			ExtremeVolatility:    1.0,
			DeepDrawdown:         -0.35,
			OverboughtRSI:        80,
			LowLiquidityMultiple: 2.0,
		},
		Report: Report{
			TopN:           20,
			FloatPrecision: 6,
			WriteFeatures:  true,
			WriteHTML:      true,
		},
	}
}
