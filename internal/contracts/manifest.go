package contracts

import (
	"time"

	"github.com/guregu/null/v6"
)

// RunManifest records everything needed to reproduce a run offline
// ⭐ SSOT: 재현성 검증용 manifest.json
type RunManifest struct {
	RunID        string    `json:"run_id"`
	ToolVersion  string    `json:"tool_version"`
	AsOfDate     string    `json:"as_of_date"`
	AnchorPolicy string    `json:"anchor_policy"`
	RunTimestamp time.Time `json:"run_timestamp"`

	ConfigPath  string            `json:"config_path,omitempty"`
	ConfigHash  string            `json:"config_hash"`
	InputHashes map[string]string `json:"input_hashes"` // path → sha256

	Counts  RunCounts            `json:"counts"`
	Lag     LagSummary           `json:"lag"`
	Quality *DataQualitySnapshot `json:"quality,omitempty"`

	GateFailures map[GateReason]int `json:"gate_failures"`
	Artifacts    []string           `json:"artifacts"`
}

// RunCounts holds per-run totals
type RunCounts struct {
	Watchlist    int `json:"watchlist"`
	Universe     int `json:"universe"`
	Excluded     int `json:"excluded"`
	MissingFiles int `json:"missing_files"`
	Loaded       int `json:"loaded"`
	Eligible     int `json:"eligible"`
	Scored       int `json:"scored"`
}

// LagSummary is the staleness distribution across loaded symbols
type LagSummary struct {
	WorstLagDays  null.Int   `json:"worst_lag_days"`
	WorstSymbol   string     `json:"worst_symbol,omitempty"`
	MedianLagDays null.Float `json:"median_lag_days"`
	StaleSymbols  int        `json:"stale_symbols"`
	MaxLagAllowed int        `json:"max_lag_days"`
	DataFrontier  null.Time  `json:"data_frontier"`
}
