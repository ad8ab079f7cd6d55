package contracts

import (
	"time"

	"github.com/guregu/null/v6"
)

// FeatureRow holds every trailing-window feature of one symbol at one anchor date.
// A feature that needs N bars is null when fewer than N bars exist at the anchor.
// ⭐ SSOT: S2 → S3/S4 피처 전달
type FeatureRow struct {
	Symbol   string    `json:"symbol"`
	AsOfDate time.Time `json:"as_of_date"`

	HistoryDays        int        `json:"history_days"`
	LastDate           null.Time  `json:"last_date"`
	LagDays            null.Int   `json:"lag_days"`              // as_of_date - last_date
	StalenessDaysAtRun null.Int   `json:"staleness_days_at_run"` // run date - last_date
	Close              null.Float `json:"close"`

	Return1M  null.Float `json:"ret_1m"`
	Return3M  null.Float `json:"ret_3m"`
	Return6M  null.Float `json:"ret_6m"`
	Return12M null.Float `json:"ret_12m"`

	SMA20         null.Float `json:"sma_20"`
	SMA50         null.Float `json:"sma_50"`
	SMA200        null.Float `json:"sma_200"`
	CloseToSMA20  null.Float `json:"close_to_sma_20"`
	CloseToSMA50  null.Float `json:"close_to_sma_50"`
	CloseToSMA200 null.Float `json:"close_to_sma_200"`

	Vol20D         null.Float `json:"vol_20d"`
	Vol60D         null.Float `json:"vol_60d"`
	DownsideVol60D null.Float `json:"downside_vol_60d"`

	Worst5DReturn6M null.Float `json:"worst_5d_return_6m"`
	MaxDrawdown6M   null.Float `json:"max_drawdown_6m"`

	RSI14           null.Float `json:"rsi_14"`
	High252D        null.Float `json:"high_252d"`
	CloseToHigh252D null.Float `json:"close_to_high_252d"`

	ADV20D                null.Float `json:"adv_20d"`
	AvgVolume20D          null.Float `json:"avg_volume_20d"`
	ZeroVolumeFraction60D null.Float `json:"zero_volume_fraction_60d"`

	VolumeMissing    bool      `json:"volume_missing"`
	MissingData      bool      `json:"missing_data"`
	DroppedRows      int       `json:"dropped_rows"`
	SplitSuspect     bool      `json:"split_suspect"`
	SplitSuspectDate null.Time `json:"split_suspect_date"`

	// LoadError is set when the OHLCV file could not be loaded
	LoadError string `json:"load_error,omitempty"`
}

// HasPrice reports whether an anchor close exists
func (f *FeatureRow) HasPrice() bool {
	return f.LoadError == "" && f.Close.Valid
}
