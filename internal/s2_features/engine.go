package s2_features

import (
	"math"
	"time"

	"github.com/guregu/null/v6"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

// split volume baseline: median volume of the prior N bars
const splitVolumeBaseline = 20

// return horizons in calendar months
var returnHorizons = [...]int{1, 3, 6, 12}

// Engine computes trailing-window features at an anchor date.
// Only bars dated on or before the anchor are ever read.
// ⭐ SSOT: 피처 계산은 여기서만
type Engine struct {
	params strategyconfig.Features
	logger *logger.Logger
}

// NewEngine creates a new feature engine
func NewEngine(params strategyconfig.Features, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		params: params,
		logger: log.WithStage(contracts.StageFeatures.ShortName()),
	}
}

// Compute returns the feature row of series at asOf.
// runTime only feeds staleness_days_at_run.
func (e *Engine) Compute(series *contracts.Series, asOf, runTime time.Time) contracts.FeatureRow {
	d := contracts.Day(asOf)
	row := contracts.FeatureRow{AsOfDate: d}
	if series == nil {
		return row
	}
	row.Symbol = series.Symbol

	bars := series.Window(d)
	row.HistoryDays = len(bars)
	row.DroppedRows = series.DroppedOnOrBefore(d)
	row.MissingData = row.DroppedRows > 0
	row.VolumeMissing = !contracts.HasVolume(bars)

	if len(bars) == 0 {
		return row
	}

	last := bars[len(bars)-1]
	row.LastDate = null.TimeFrom(last.Date)
	row.LagDays = null.IntFrom(int64(contracts.DaysBetween(last.Date, d)))
	if !runTime.IsZero() {
		row.StalenessDaysAtRun = null.IntFrom(int64(contracts.DaysBetween(last.Date, runTime)))
	}
	row.Close = last.Close

	px := closes(bars)
	e.computeReturns(&row, bars, d)
	e.computeTrend(&row, px)
	e.computeVolatility(&row, px)
	e.computeDrawdown(&row, bars, d)
	e.computeOscillators(&row, px)
	e.computeVolume(&row, bars)
	e.computeSplit(&row, bars)

	e.logger.WithSymbol(row.Symbol).WithFields(map[string]interface{}{
		"history_days": row.HistoryDays,
		"lag_days":     row.LagDays.Int64,
		"split":        row.SplitSuspect,
	}).Debug("features computed")

	return row
}

func (e *Engine) computeReturns(row *contracts.FeatureRow, bars []contracts.Bar, d time.Time) {
	targets := [...]*null.Float{&row.Return1M, &row.Return3M, &row.Return6M, &row.Return12M}
	for i, months := range returnHorizons {
		if r, ok := trailingReturn(bars, d, months); ok {
			*targets[i] = null.FloatFrom(r)
		}
	}
}

func (e *Engine) computeTrend(row *contracts.FeatureRow, px []float64) {
	closeNow := px[len(px)-1]
	set := func(n int, avg, ratio *null.Float) {
		if m, ok := sma(px, n); ok {
			*avg = null.FloatFrom(m)
			if m > 0 {
				*ratio = null.FloatFrom(closeNow/m - 1)
			}
		}
	}
	set(20, &row.SMA20, &row.CloseToSMA20)
	set(50, &row.SMA50, &row.CloseToSMA50)
	set(200, &row.SMA200, &row.CloseToSMA200)
}

func (e *Engine) annualize(v float64) float64 {
	if e.params.AnnualizeVolatility {
		return v * math.Sqrt(float64(e.params.TradingDaysPerYear))
	}
	return v
}

func (e *Engine) computeVolatility(row *contracts.FeatureRow, px []float64) {
	if window, ok := tail(px, e.params.VolWindowShort+1); ok {
		if sd, ok := stddev(periodReturns(window, e.params.ReturnType)); ok {
			row.Vol20D = null.FloatFrom(e.annualize(sd))
		}
	}

	window, ok := tail(px, e.params.VolWindowLong+1)
	if !ok {
		return
	}
	rets := periodReturns(window, e.params.ReturnType)
	if sd, ok := stddev(rets); ok {
		row.Vol60D = null.FloatFrom(e.annualize(sd))
	}

	negative := make([]float64, 0, len(rets))
	for _, r := range rets {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	if sd, ok := stddev(negative); ok {
		row.DownsideVol60D = null.FloatFrom(e.annualize(sd))
	}
}

// computeDrawdown covers the lookback window starting at the last bar on
// or before D-N months; both features stay null when history is shorter.
func (e *Engine) computeDrawdown(row *contracts.FeatureRow, bars []contracts.Bar, d time.Time) {
	start := indexOnOrBefore(bars, monthsBack(d, e.params.LookbackMonths))
	if start < 0 {
		return
	}
	window := closes(bars[start:])

	if dd, ok := maxDrawdown(window); ok {
		row.MaxDrawdown6M = null.FloatFrom(dd)
	}
	if w, ok := worstNDayReturn(window, e.params.WorstReturnDays); ok {
		row.Worst5DReturn6M = null.FloatFrom(w)
	}
}

func (e *Engine) computeOscillators(row *contracts.FeatureRow, px []float64) {
	if rsi, ok := rsiWilder(px, e.params.RSIPeriod); ok {
		row.RSI14 = null.FloatFrom(rsi)
	}

	window, ok := tail(px, e.params.HighWindow)
	if !ok {
		return
	}
	if high, ok := maxValue(window); ok && high > 0 {
		row.High252D = null.FloatFrom(high)
		row.CloseToHigh252D = null.FloatFrom(px[len(px)-1]/high - 1)
	}
}

func (e *Engine) computeVolume(row *contracts.FeatureRow, bars []contracts.Bar) {
	if row.VolumeMissing {
		return
	}

	if n := e.params.LiquidityWindow; n > 0 && len(bars) >= n {
		window := bars[len(bars)-n:]
		dollar := make([]float64, 0, n)
		shares := make([]float64, 0, n)
		for _, b := range window {
			if !b.Volume.Valid {
				break
			}
			dollar = append(dollar, b.Close.Float64*float64(b.Volume.Int64))
			shares = append(shares, float64(b.Volume.Int64))
		}
		if len(dollar) == n {
			row.ADV20D = null.FloatFrom(mean(dollar))
			row.AvgVolume20D = null.FloatFrom(mean(shares))
		}
	}

	if n := e.params.ZeroVolumeWindow; n > 0 && len(bars) >= n {
		zero := 0
		for _, b := range bars[len(bars)-n:] {
			if !b.Volume.Valid || b.Volume.Int64 == 0 {
				zero++
			}
		}
		row.ZeroVolumeFraction60D = null.FloatFrom(float64(zero) / float64(n))
	}
}

// computeSplit flags an unadjusted split: a one-day close ratio beyond
// split_ratio (either direction) whose volume stays within
// split_volume_multiple x the median of the prior 20 bars.
// Without usable volume the price rule alone applies.
// The most recent suspect day inside the lookback is reported.
func (e *Engine) computeSplit(row *contracts.FeatureRow, bars []contracts.Bar) {
	ratio := e.params.SplitRatio
	if ratio <= 1 || len(bars) < 2 {
		return
	}

	first := 1
	if lb := e.params.SplitLookback; lb > 0 && len(bars) > lb {
		first = len(bars) - lb
	}

	for i := len(bars) - 1; i >= first; i-- {
		prev := bars[i-1].Close.Float64
		if prev <= 0 {
			continue
		}
		r := bars[i].Close.Float64 / prev
		if r < ratio && r > 1/ratio {
			continue
		}
		if e.volumeAnomaly(bars, i) {
			continue
		}
		row.SplitSuspect = true
		row.SplitSuspectDate = null.TimeFrom(bars[i].Date)
		return
	}
}

// volumeAnomaly reports whether bar i traded far above its recent median
func (e *Engine) volumeAnomaly(bars []contracts.Bar, i int) bool {
	if !bars[i].Volume.Valid {
		return false
	}
	from := i - splitVolumeBaseline
	if from < 0 {
		from = 0
	}
	prior := make([]float64, 0, splitVolumeBaseline)
	for _, b := range bars[from:i] {
		if b.Volume.Valid {
			prior = append(prior, float64(b.Volume.Int64))
		}
	}
	med, ok := median(prior)
	if !ok {
		return false
	}
	return float64(bars[i].Volume.Int64) > e.params.SplitVolumeMultiple*med
}
