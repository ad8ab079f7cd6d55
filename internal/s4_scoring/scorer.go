package s4_scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

// Component names, in explanation order
const (
	ComponentTrend      = "trend"
	ComponentMomentum   = "momentum"
	ComponentLiquidity  = "liquidity"
	ComponentQuality    = "quality"
	ComponentVolatility = "volatility"
)

const (
	neutralValue = 0.5

	// quality penalties
	missingDataPenalty  = 0.25
	splitSuspectPenalty = 0.25
	stalePenalty        = 0.25

	maxThemeBonus = 10.0
)

// Scorer implements S4: points-based monitor score
// ⭐ SSOT: S4 스코어 계산은 여기서만
type Scorer struct {
	config         strategyconfig.Scoring
	liquidityFloor float64
	risk           *RiskAssessor
	logger         *logger.Logger
}

// NewScorer creates a new scorer
func NewScorer(cfg *strategyconfig.Config, log *logger.Logger) *Scorer {
	if log == nil {
		log = logger.Nop()
	}
	return &Scorer{
		config:         cfg.Scoring,
		liquidityFloor: cfg.Gates.LiquidityFloor,
		risk:           NewRiskAssessor(cfg.Risk, cfg.Gates),
		logger:         log.WithStage(contracts.StageScoring.ShortName()),
	}
}

// Score computes the monitor score, risk flags and explanation of one row.
// Null inputs fall back to the neutral component value.
func (s *Scorer) Score(row *contracts.FeatureRow, member contracts.Member, gate contracts.GateResult) contracts.ScoreRow {
	w := s.config.WeightsPct
	components := []contracts.ComponentScore{
		component(ComponentTrend, w.Trend, s.trend(row)),
		component(ComponentMomentum, w.Momentum, s.momentum(row)),
		component(ComponentLiquidity, w.Liquidity, s.liquidity(row)),
		component(ComponentQuality, w.Quality, s.quality(row, gate)),
		component(ComponentVolatility, w.Volatility, s.volatility(row)),
	}

	points := 0.0
	for _, c := range components {
		points += c.Points
	}

	ddPenalty := s.drawdownPenalty(row)
	bonus := s.themeBonus(member.ThemeBucket)
	points = clamp(points-ddPenalty+bonus, 0, 100)

	score := ScaleScore(points)
	flags, level := s.risk.Assess(row, gate)

	out := contracts.ScoreRow{
		Symbol:          row.Symbol,
		MonitorScore:    score,
		Points:          points,
		Components:      components,
		DrawdownPenalty: ddPenalty,
		ThemeBonus:      bonus,
		RiskFlags:       flags,
		RiskLevel:       level,
		ThemeBucket:     member.ThemeBucket,
		AssetType:       member.AssetType,
		LastDate:        row.LastDate,
		LagDays:         row.LagDays,
	}
	out.Explanation = Explain(out)

	s.logger.WithSymbol(row.Symbol).WithFields(map[string]interface{}{
		"points": points,
		"score":  score,
		"risk":   level,
	}).Debug("scored")

	return out
}

// part is a component value and whether it fell back to neutral
type part struct {
	value   float64
	neutral bool
}

func neutral() part {
	return part{value: neutralValue, neutral: true}
}

func component(name string, weight int, p part) contracts.ComponentScore {
	v := clamp01(p.value)
	return contracts.ComponentScore{
		Name:    name,
		Value:   v,
		Weight:  weight,
		Points:  v * float64(weight),
		Neutral: p.neutral,
	}
}

// averageOf averages the valid sub-scores, neutral when none is valid
func averageOf(values []null.Float) part {
	sum, n := 0.0, 0
	for _, v := range values {
		if v.Valid {
			sum += v.Float64
			n++
		}
	}
	if n == 0 {
		return neutral()
	}
	return part{value: sum / float64(n)}
}

// symmetric maps [-r, +r] onto [0, 1]
func symmetric(x, r float64) float64 {
	return clamp01(0.5 + 0.5*x/r)
}

func indicator(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

// trend: close vs SMA50/SMA200, SMA50 vs SMA200, distance from SMA200
func (s *Scorer) trend(row *contracts.FeatureRow) part {
	subs := make([]null.Float, 0, 4)
	if row.Close.Valid && row.SMA50.Valid {
		subs = append(subs, null.FloatFrom(indicator(row.Close.Float64 > row.SMA50.Float64)))
	}
	if row.Close.Valid && row.SMA200.Valid {
		subs = append(subs, null.FloatFrom(indicator(row.Close.Float64 > row.SMA200.Float64)))
	}
	if row.SMA50.Valid && row.SMA200.Valid {
		subs = append(subs, null.FloatFrom(indicator(row.SMA50.Float64 > row.SMA200.Float64)))
	}
	if row.CloseToSMA200.Valid {
		subs = append(subs, null.FloatFrom(symmetric(row.CloseToSMA200.Float64, s.config.TrendSMA200Range)))
	}
	return averageOf(subs)
}

// momentum: 3/6/12 month returns mapped from [-range, +range]
func (s *Scorer) momentum(row *contracts.FeatureRow) part {
	subs := make([]null.Float, 0, 3)
	for _, r := range []null.Float{row.Return3M, row.Return6M, row.Return12M} {
		if r.Valid {
			subs = append(subs, null.FloatFrom(symmetric(r.Float64, s.config.MomentumRange)))
		}
	}
	return averageOf(subs)
}

// liquidity: log10(adv_20d) between the gate floor and the ceiling
func (s *Scorer) liquidity(row *contracts.FeatureRow) part {
	if row.VolumeMissing || !row.ADV20D.Valid || row.ADV20D.Float64 <= 0 {
		return neutral()
	}
	lo := math.Log10(math.Max(s.liquidityFloor, 1))
	hi := math.Log10(math.Max(s.config.LiquidityCeiling, 1))
	if hi <= lo {
		return part{value: indicator(row.ADV20D.Float64 >= s.config.LiquidityCeiling)}
	}
	return part{value: clamp01((math.Log10(row.ADV20D.Float64) - lo) / (hi - lo))}
}

// quality: 1 minus data-quality penalties
func (s *Scorer) quality(row *contracts.FeatureRow, gate contracts.GateResult) part {
	q := 1.0
	if row.MissingData {
		q -= missingDataPenalty
	}
	if row.SplitSuspect {
		q -= splitSuspectPenalty
	}
	if row.ZeroVolumeFraction60D.Valid {
		q -= row.ZeroVolumeFraction60D.Float64
	}
	if gate.Stale {
		q -= stalePenalty
	}
	return part{value: clamp01(q)}
}

// volatility: lower vol_60d scores higher
func (s *Scorer) volatility(row *contracts.FeatureRow) part {
	if !row.Vol60D.Valid {
		return neutral()
	}
	span := s.config.VolatilityHigh - s.config.VolatilityLow
	if span <= 0 {
		return neutral()
	}
	return part{value: 1 - clamp01((row.Vol60D.Float64-s.config.VolatilityLow)/span)}
}

func (s *Scorer) drawdownPenalty(row *contracts.FeatureRow) float64 {
	if !row.MaxDrawdown6M.Valid || s.config.DrawdownFull <= 0 {
		return 0
	}
	return clamp01(-row.MaxDrawdown6M.Float64/s.config.DrawdownFull) * s.config.DrawdownPenalty
}

func (s *Scorer) themeBonus(bucket string) float64 {
	if bucket == "" {
		return 0
	}
	return clamp(s.config.ThemeBonus[bucket], 0, maxThemeBonus)
}

// Explain renders the score breakdown, e.g.
// trend=0.83x30 momentum=0.61x25 liquidity=0.50*x15 quality=1.00x15 volatility=0.70x15 dd=-2.1 theme=+0 pts=64.2 -> 7
// A "*" marks a component that used the neutral value.
func Explain(r contracts.ScoreRow) string {
	var b strings.Builder
	for _, c := range r.Components {
		mark := ""
		if c.Neutral {
			mark = "*"
		}
		fmt.Fprintf(&b, "%s=%s%sx%d ", c.Name, fixed(c.Value, 2), mark, c.Weight)
	}
	fmt.Fprintf(&b, "dd=%s theme=+%s pts=%s -> %d",
		short(-r.DrawdownPenalty, 1), short(r.ThemeBonus, 1), fixed(r.Points, 1), r.MonitorScore)
	return b.String()
}
