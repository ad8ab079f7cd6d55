package contracts

// Member is one watchlist row resolved against the OHLCV directory
type Member struct {
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name,omitempty"`
	ThemeBucket  string    `json:"theme_bucket"`
	AssetType    AssetType `json:"asset_type"`
	RawAssetType string    `json:"raw_asset_type,omitempty"`
	Line         int       `json:"line"`

	// InvalidReason is set when the watchlist row is malformed.
	// The member stays in the universe so the gate can report it.
	InvalidReason string `json:"invalid_reason,omitempty"`

	// FilePath is empty when no OHLCV file matched the symbol
	FilePath string `json:"file_path,omitempty"`
}

// Valid reports whether the watchlist row passed validation
func (m Member) Valid() bool {
	return m.InvalidReason == ""
}

// HasFile reports whether an OHLCV file was found
func (m Member) HasFile() bool {
	return m.FilePath != ""
}

// AssetTypeLabel returns the normalized asset type, or the raw value for invalid rows
func (m Member) AssetTypeLabel() string {
	if m.AssetType != "" {
		return string(m.AssetType)
	}
	return m.RawAssetType
}

// Universe represents the symbols passed from S1 to S2
// ⭐ SSOT: S1 → S2 유니버스 전달 (symbol 오름차순)
type Universe struct {
	Members    []Member          `json:"members"`
	Missing    []string          `json:"missing"`               // OHLCV 파일 없음
	Excluded   map[string]string `json:"excluded"`              // 제외 종목: 사유
	TotalCount int               `json:"total_count,omitempty"` // watchlist 전체 종목 수
}

// Contains checks if a symbol is in the universe
func (u *Universe) Contains(symbol string) bool {
	_, ok := u.Find(symbol)
	return ok
}

// Find returns the member for a symbol
func (u *Universe) Find(symbol string) (Member, bool) {
	for _, m := range u.Members {
		if m.Symbol == symbol {
			return m, true
		}
	}
	return Member{}, false
}

// IsExcluded checks if a symbol is excluded with reason
func (u *Universe) IsExcluded(symbol string) (bool, string) {
	reason, exists := u.Excluded[symbol]
	return exists, reason
}

// Count returns the number of members
func (u *Universe) Count() int {
	return len(u.Members)
}

// Symbols returns member symbols in universe order
func (u *Universe) Symbols() []string {
	out := make([]string, len(u.Members))
	for i, m := range u.Members {
		out[i] = m.Symbol
	}
	return out
}
