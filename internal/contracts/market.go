package contracts

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// AssetType is the watchlist asset classification
type AssetType string

const (
	AssetTypeETF    AssetType = "ETF"
	AssetTypeEquity AssetType = "EQUITY"
	AssetTypeTrust  AssetType = "TRUST"
	AssetTypeETN    AssetType = "ETN"
)

// AllAssetTypes returns the accepted asset types
func AllAssetTypes() []AssetType {
	return []AssetType{AssetTypeETF, AssetTypeEquity, AssetTypeTrust, AssetTypeETN}
}

// ParseAssetType normalizes a raw asset_type value (case-insensitive).
// "stock" and "common" are accepted as EQUITY.
func ParseAssetType(raw string) (AssetType, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch s {
	case "ETF":
		return AssetTypeETF, nil
	case "EQUITY", "STOCK", "COMMON":
		return AssetTypeEquity, nil
	case "TRUST":
		return AssetTypeTrust, nil
	case "ETN":
		return AssetTypeETN, nil
	case "":
		return "", fmt.Errorf("asset_type is empty")
	default:
		return "", fmt.Errorf("asset_type %q not in ETF|EQUITY|TRUST|ETN", raw)
	}
}

// Bar is one daily OHLCV row.
// Prices are nullable: a null price is a gap, never zero.
type Bar struct {
	Date     time.Time  `json:"date"`
	Open     null.Float `json:"open"`
	High     null.Float `json:"high"`
	Low      null.Float `json:"low"`
	Close    null.Float `json:"close"`
	AdjClose null.Float `json:"adj_close"`
	Volume   null.Int   `json:"volume"`
}

// HasOHLC reports whether all four required prices are present
func (b Bar) HasOHLC() bool {
	return b.Open.Valid && b.High.Valid && b.Low.Valid && b.Close.Valid
}

// AdjustedClose returns adj_close, falling back to close
func (b Bar) AdjustedClose() null.Float {
	if b.AdjClose.Valid {
		return b.AdjClose
	}
	return b.Close
}

// Series is the ascending, de-duplicated bar history of one symbol
// ⭐ SSOT: S0 → S2 심볼별 시계열 전달
type Series struct {
	Symbol      string    `json:"symbol"`
	AssetType   AssetType `json:"asset_type"`
	ThemeBucket string    `json:"theme_bucket"`
	Bars        []Bar     `json:"bars"`

	// DroppedDates lists dates whose aggregated row lacked a required price
	DroppedDates []time.Time `json:"dropped_dates,omitempty"`
}

// Len returns the number of bars
func (s *Series) Len() int {
	return len(s.Bars)
}

// Window returns the bars dated on or before asOf.
// The returned slice aliases the series; callers must not modify it.
func (s *Series) Window(asOf time.Time) []Bar {
	d := Day(asOf)
	n := sort.Search(len(s.Bars), func(i int) bool {
		return s.Bars[i].Date.After(d)
	})
	return s.Bars[:n]
}

// FirstDate returns the first bar date
func (s *Series) FirstDate() (time.Time, bool) {
	if len(s.Bars) == 0 {
		return time.Time{}, false
	}
	return s.Bars[0].Date, true
}

// LastDate returns the last bar date
func (s *Series) LastDate() (time.Time, bool) {
	if len(s.Bars) == 0 {
		return time.Time{}, false
	}
	return s.Bars[len(s.Bars)-1].Date, true
}

// DroppedOnOrBefore counts dropped rows dated on or before asOf
func (s *Series) DroppedOnOrBefore(asOf time.Time) int {
	d := Day(asOf)
	n := 0
	for _, dt := range s.DroppedDates {
		if !dt.After(d) {
			n++
		}
	}
	return n
}

// HasVolume reports whether any bar carries a volume value
func HasVolume(bars []Bar) bool {
	for _, b := range bars {
		if b.Volume.Valid {
			return true
		}
	}
	return false
}
