package s4_scoring

import (
	"github.com/shopspring/decimal"
)

const (
	minScore = 1
	maxScore = 10

	// float noise below this precision is discarded before rounding
	pointsPrecision = 6
)

// ScaleScore maps points in [0,100] onto the integer 1~10 scale:
// clip(round_half_up(1 + 9*points/100), 1, 10)
func ScaleScore(points float64) int {
	p := decimal.NewFromFloat(points).Round(pointsPrecision)
	scaled := p.Mul(decimal.NewFromInt(9)).Div(decimal.NewFromInt(100)).Add(decimal.NewFromInt(1))

	// decimal.Round rounds half away from zero; scaled is always positive
	score := int(scaled.Round(0).IntPart())
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// fixed formats v with exactly n decimals
func fixed(v float64, n int32) string {
	return decimal.NewFromFloat(v).StringFixed(n)
}

// short formats v rounded to n decimals without trailing zeros
func short(v float64, n int32) string {
	return decimal.NewFromFloat(v).Round(n).String()
}
