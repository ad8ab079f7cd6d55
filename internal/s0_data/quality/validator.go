package quality

import (
	"context"
	"sort"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
)

// Outcome is the S0 load result of one universe member
type Outcome struct {
	Symbol    string
	FileFound bool
	Result    *contracts.LoadResult // nil when the load failed
	Err       error
}

// Gate summarizes load outcomes into a DataQualitySnapshot.
// It never fails the run; a failing snapshot is only reported.
type Gate struct {
	config Config
}

// Config holds quality gate thresholds
type Config struct {
	MinOHLCVCoverage  float64 `yaml:"min_ohlcv_coverage"`  // 0.8
	MinVolumeCoverage float64 `yaml:"min_volume_coverage"` // 0.5
}

// DefaultConfig returns the default thresholds
func DefaultConfig() Config {
	return Config{
		MinOHLCVCoverage:  0.8,
		MinVolumeCoverage: 0.5,
	}
}

// NewGate creates a new quality Gate
func NewGate(config Config) *Gate {
	return &Gate{config: config}
}

// 가중치 (합계 = 1.0)
var coverageWeights = map[string]float64{
	"ohlcv":  0.50, // 로드 성공
	"volume": 0.30, // 거래량 컬럼 존재
	"clean":  0.20, // drop된 row 없음
}

// Check builds the snapshot for a set of load outcomes
// ⭐ SSOT: S0 품질 스냅샷
func (g *Gate) Check(ctx context.Context, outcomes []Outcome) (*contracts.DataQualitySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot := &contracts.DataQualitySnapshot{
		TotalSymbols: len(outcomes),
		Coverage:     make(map[string]float64),
	}

	var withVolume, clean int
	for _, o := range outcomes {
		if !o.FileFound {
			snapshot.MissingFiles++
			continue
		}
		if o.Result == nil {
			snapshot.FailedLoads++
			continue
		}

		snapshot.LoadedSymbols++
		snapshot.RowsDropped += o.Result.DroppedRows
		snapshot.DuplicateDates += o.Result.DuplicateDates
		if contracts.HasVolume(o.Result.Series.Bars) {
			withVolume++
		}
		if o.Result.DroppedRows == 0 {
			clean++
		}
	}

	if snapshot.TotalSymbols > 0 {
		total := float64(snapshot.TotalSymbols)
		snapshot.Coverage["ohlcv"] = float64(snapshot.LoadedSymbols) / total
		snapshot.Coverage["volume"] = float64(withVolume) / total
		snapshot.Coverage["clean"] = float64(clean) / total
	}

	snapshot.QualityScore = calculateScore(snapshot.Coverage)
	snapshot.Passed = snapshot.Coverage["ohlcv"] >= g.config.MinOHLCVCoverage &&
		snapshot.Coverage["volume"] >= g.config.MinVolumeCoverage

	return snapshot, nil
}

// calculateScore calculates overall quality score using weighted average
func calculateScore(coverage map[string]float64) float64 {
	keys := make([]string, 0, len(coverageWeights))
	for k := range coverageWeights {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	score := 0.0
	for _, key := range keys {
		if cov, exists := coverage[key]; exists {
			score += cov * coverageWeights[key]
		}
	}

	return score
}
