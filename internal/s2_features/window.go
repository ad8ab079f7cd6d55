package s2_features

import (
	"math"
	"sort"
	"time"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
)

// closes extracts close prices (bars passed to S2 always have a close)
func closes(bars []contracts.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close.Float64
	}
	return out
}

// tail returns the last n values, or false when fewer exist
func tail(values []float64, n int) ([]float64, bool) {
	if n <= 0 || len(values) < n {
		return nil, false
	}
	return values[len(values)-n:], true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sma is the simple moving average of the last n values
func sma(values []float64, n int) (float64, bool) {
	window, ok := tail(values, n)
	if !ok {
		return 0, false
	}
	return mean(window), true
}

// stddev is the sample standard deviation (n-1); needs at least two values
func stddev(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	m := mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1)), true
}

func median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// periodReturns converts closes into daily returns (log or simple)
func periodReturns(values []float64, returnType string) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if returnType == strategyconfig.ReturnSimple {
			out = append(out, values[i]/values[i-1]-1)
		} else {
			out = append(out, math.Log(values[i]/values[i-1]))
		}
	}
	return out
}

// indexOnOrBefore returns the index of the last bar dated on or before d.
// -1 when d predates the first bar.
func indexOnOrBefore(bars []contracts.Bar, d time.Time) int {
	n := sort.Search(len(bars), func(i int) bool {
		return bars[i].Date.After(d)
	})
	return n - 1
}

// monthsBack returns the calendar date N months before d
func monthsBack(d time.Time, months int) time.Time {
	return contracts.Day(d).AddDate(0, -months, 0)
}

// trailingReturn is close / close(last bar <= D-N months) - 1
func trailingReturn(bars []contracts.Bar, asOf time.Time, months int) (float64, bool) {
	if len(bars) == 0 {
		return 0, false
	}
	base := indexOnOrBefore(bars, monthsBack(asOf, months))
	if base < 0 {
		return 0, false
	}
	past := bars[base].Close.Float64
	if past <= 0 {
		return 0, false
	}
	return bars[len(bars)-1].Close.Float64/past - 1, true
}

// maxDrawdown is the minimum of close / running max - 1 (<= 0)
func maxDrawdown(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	peak := values[0]
	worst := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if dd := v/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst, true
}

// worstNDayReturn is the minimum of close[t]/close[t-n] - 1 inside values
func worstNDayReturn(values []float64, n int) (float64, bool) {
	if n <= 0 || len(values) <= n {
		return 0, false
	}
	worst := math.Inf(1)
	for t := n; t < len(values); t++ {
		if r := values[t]/values[t-n] - 1; r < worst {
			worst = r
		}
	}
	return worst, true
}

// rsiWilder is the Wilder-smoothed RSI; needs period+1 closes
func rsiWilder(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period+1 {
		return 0, false
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing
	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50, true
		}
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// maxValue returns the largest value
func maxValue(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m, true
}
