package contracts

import "time"

// SymbolResult carries one universe member through S0~S4
type SymbolResult struct {
	Member   Member      `json:"member"`
	Load     *LoadResult `json:"-"` // nil when the file is missing or failed to load
	Features FeatureRow  `json:"features"`
	Gate     GateResult  `json:"gate"`
	Score    *ScoreRow   `json:"score,omitempty"` // nil when ineligible
}

// RunResult is the in-memory outcome of one pipeline run
// ⭐ SSOT: 파이프라인 → S5 리포트 전달
type RunResult struct {
	Manifest RunManifest `json:"manifest"`
	Universe *Universe   `json:"universe"`

	// Symbols is sorted by symbol; Scored is in rank order
	Symbols []SymbolResult `json:"symbols"`
	Scored  []ScoreRow     `json:"scored"`

	Warnings       []string                `json:"warnings,omitempty"`
	StageDurations map[Stage]time.Duration `json:"stage_durations"`
}

// Find returns the result of one symbol
func (r *RunResult) Find(symbol string) (*SymbolResult, bool) {
	for i := range r.Symbols {
		if r.Symbols[i].Member.Symbol == symbol {
			return &r.Symbols[i], true
		}
	}
	return nil, false
}

// Gates returns every gate result in symbol order
func (r *RunResult) Gates() []GateResult {
	out := make([]GateResult, len(r.Symbols))
	for i, s := range r.Symbols {
		out[i] = s.Gate
	}
	return out
}
