package contracts

import "sort"

// LoadResult is what the S0 loader hands to the feature engine for one symbol
// ⭐ SSOT: S0 → S2 로드 결과 전달
type LoadResult struct {
	Series         *Series  `json:"series"`
	Path           string   `json:"path"`
	ContentHash    string   `json:"content_hash"` // sha256 hex of the raw file
	RawRows        int      `json:"raw_rows"`
	DuplicateDates int      `json:"duplicate_dates"`
	DroppedRows    int      `json:"dropped_rows"`
	Warnings       []string `json:"warnings,omitempty"`
}

// MissingData reports whether rows were dropped for lacking OHLC values
func (r *LoadResult) MissingData() bool {
	return r.DroppedRows > 0
}

// DataQualitySnapshot summarizes S0 load results across the universe
// ⭐ SSOT: S0 데이터 품질 정보 (manifest/summary에 기록, 실행을 중단하지 않음)
type DataQualitySnapshot struct {
	TotalSymbols   int                `json:"total_symbols"`
	LoadedSymbols  int                `json:"loaded_symbols"`
	MissingFiles   int                `json:"missing_files"`
	FailedLoads    int                `json:"failed_loads"`
	RowsDropped    int                `json:"rows_dropped"`
	DuplicateDates int                `json:"duplicate_dates"`
	Coverage       map[string]float64 `json:"coverage"`      // 데이터별 커버리지
	QualityScore   float64            `json:"quality_score"` // 0.0 ~ 1.0
	Passed         bool               `json:"passed"`
}

// IsValid checks if the snapshot meets the minimum bar for a meaningful run
func (d *DataQualitySnapshot) IsValid() bool {
	return d.QualityScore >= 0.7 && d.LoadedSymbols > 0
}

// CoverageRate returns the average coverage rate across all data types
func (d *DataQualitySnapshot) CoverageRate() float64 {
	if len(d.Coverage) == 0 {
		return 0.0
	}

	// sorted keys keep the float sum reproducible
	keys := make([]string, 0, len(d.Coverage))
	for k := range d.Coverage {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	total := 0.0
	for _, k := range keys {
		total += d.Coverage[k]
	}

	return total / float64(len(d.Coverage))
}
