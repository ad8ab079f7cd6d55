package strategyconfig

import "time"

// Config is the complete run configuration of the monitor.
// It is resolved once at the CLI boundary and never mutated afterwards.
type Config struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	Anchor   Anchor   `yaml:"anchor" json:"anchor"`
	Loader   Loader   `yaml:"loader" json:"loader"`
	Universe Universe `yaml:"universe" json:"universe"`
	Features Features `yaml:"features" json:"features"`
	Gates    Gates    `yaml:"gates" json:"gates"`
	Scoring  Scoring  `yaml:"scoring" json:"scoring"`
	Risk     Risk     `yaml:"risk" json:"risk"`
	Report   Report   `yaml:"report" json:"report"`
}

// Meta 메타 정보
type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id" validate:"required"`
	Version   string `yaml:"version" json:"version"`
}

// Anchor policies
const (
	AnchorExplicit = "explicit" // as_of 날짜 고정
	AnchorFrontier = "frontier" // 로드된 데이터의 최신 날짜
)

// Anchor decides the as-of date. Never wall clock.
type Anchor struct {
	Policy string `yaml:"policy" json:"policy" validate:"oneof=explicit frontier"`
	AsOf   string `yaml:"as_of" json:"as_of"` // YYYY-MM-DD, required for explicit
}

// Loader S0: OHLCV 파일 파싱 옵션
type Loader struct {
	Strict      bool     `yaml:"strict" json:"strict"`
	DateFormats []string `yaml:"date_formats" json:"date_formats" validate:"min=1,dive,required"`
}

// Universe S1: watchlist 필터
type Universe struct {
	IncludeAssetTypes []string `yaml:"include_asset_types" json:"include_asset_types" validate:"dive,oneof=ETF EQUITY TRUST ETN"`
}

// Return types for volatility
const (
	ReturnLog    = "log"
	ReturnSimple = "simple"
)

// Features S2: trailing window parameters
type Features struct {
	ReturnType          string  `yaml:"return_type" json:"return_type" validate:"oneof=log simple"`
	AnnualizeVolatility bool    `yaml:"annualize_volatility" json:"annualize_volatility"`
	TradingDaysPerYear  int     `yaml:"trading_days_per_year" json:"trading_days_per_year" validate:"gt=0"`
	VolWindowShort      int     `yaml:"vol_window_short" json:"vol_window_short" validate:"gt=1"`
	VolWindowLong       int     `yaml:"vol_window_long" json:"vol_window_long" validate:"gt=1"`
	LookbackMonths      int     `yaml:"lookback_months" json:"lookback_months" validate:"gt=0"` // drawdown / worst-N-day window
	WorstReturnDays     int     `yaml:"worst_return_days" json:"worst_return_days" validate:"gt=0"`
	LiquidityWindow     int     `yaml:"liquidity_window" json:"liquidity_window" validate:"gt=0"`
	ZeroVolumeWindow    int     `yaml:"zero_volume_window" json:"zero_volume_window" validate:"gt=0"`
	RSIPeriod           int     `yaml:"rsi_period" json:"rsi_period" validate:"gt=1"`
	HighWindow          int     `yaml:"high_window" json:"high_window" validate:"gt=0"`
	SplitRatio          float64 `yaml:"split_ratio" json:"split_ratio" validate:"gt=1"`
	SplitVolumeMultiple float64 `yaml:"split_volume_multiple" json:"split_volume_multiple" validate:"gt=0"`
	SplitLookback       int     `yaml:"split_lookback" json:"split_lookback" validate:"gt=0"`
}

// Gates S3: eligibility thresholds
type Gates struct {
	MinHistoryDays int     `yaml:"min_history_days" json:"min_history_days" validate:"gte=0"`
	PriceFloor     float64 `yaml:"price_floor" json:"price_floor" validate:"gte=0"`
	LiquidityFloor float64 `yaml:"liquidity_floor" json:"liquidity_floor" validate:"gte=0"` // 20d 평균 거래대금
	MaxLagDays     int     `yaml:"max_lag_days" json:"max_lag_days" validate:"gte=0"`
}

// Scoring S4: points model (weights out of 100)
type Scoring struct {
	WeightsPct    ScoringWeights `yaml:"weights_pct" json:"weights_pct"`
	MissingPolicy string         `yaml:"missing_policy" json:"missing_policy" validate:"oneof=NEUTRAL"`

	MomentumRange    float64            `yaml:"momentum_range" json:"momentum_range" validate:"gt=0"`         // ±range → [0,1]
	TrendSMA200Range float64            `yaml:"trend_sma200_range" json:"trend_sma200_range" validate:"gt=0"` // close/SMA200-1 full scale
	LiquidityCeiling float64            `yaml:"liquidity_ceiling" json:"liquidity_ceiling" validate:"gt=0"`   // ADV at liquidity=1.0
	VolatilityLow    float64            `yaml:"volatility_low" json:"volatility_low" validate:"gte=0"`        // vol_60d at volatility=1.0
	VolatilityHigh   float64            `yaml:"volatility_high" json:"volatility_high" validate:"gtfield=VolatilityLow"`
	DrawdownFull     float64            `yaml:"drawdown_full" json:"drawdown_full" validate:"gt=0,lte=1"` // |max_drawdown| at full penalty
	DrawdownPenalty  float64            `yaml:"drawdown_penalty_points" json:"drawdown_penalty_points" validate:"gte=0,lte=100"`
	ThemeBonus       map[string]float64 `yaml:"theme_bonus" json:"theme_bonus" validate:"dive,gte=0,lte=10"`
}

// ScoringWeights 컴포넌트 가중치 (합 = 100)
type ScoringWeights struct {
	Trend      int `yaml:"trend" json:"trend" validate:"gte=0"`
	Momentum   int `yaml:"momentum" json:"momentum" validate:"gte=0"`
	Liquidity  int `yaml:"liquidity" json:"liquidity" validate:"gte=0"`
	Quality    int `yaml:"quality" json:"quality" validate:"gte=0"`
	Volatility int `yaml:"volatility" json:"volatility" validate:"gte=0"`
}

// Sum returns the total weight
func (w ScoringWeights) Sum() int {
	return w.Trend + w.Momentum + w.Liquidity + w.Quality + w.Volatility
}

// Risk S4: risk flag thresholds
type Risk struct {
	HighVolatility       float64 `yaml:"high_volatility" json:"high_volatility" validate:"gt=0"`
	ExtremeVolatility    float64 `yaml:"extreme_volatility" json:"extreme_volatility" validate:"gtfield=HighVolatility"`
	DeepDrawdown         float64 `yaml:"deep_drawdown" json:"deep_drawdown" validate:"lt=0,gte=-1"`
	OverboughtRSI        float64 `yaml:"overbought_rsi" json:"overbought_rsi" validate:"gt=50,lte=100"`
	LowLiquidityMultiple float64 `yaml:"low_liquidity_multiple" json:"low_liquidity_multiple" validate:"gte=1"`
}

// Report S5: artifact options
type Report struct {
	TopN           int  `yaml:"top_n" json:"top_n" validate:"gte=0"`
	FloatPrecision int  `yaml:"float_precision" json:"float_precision" validate:"gte=0,lte=12"`
	WriteFeatures  bool `yaml:"write_features" json:"write_features"`
	WriteHTML      bool `yaml:"write_html" json:"write_html"`
}

// Snapshot pins a resolved config for run history
type Snapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	ProfileID  string    `json:"profile_id"`
	CreatedAt  time.Time `json:"created_at"`
}
