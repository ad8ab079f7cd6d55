package s1_universe

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s0_data"
)

// WatchlistError is a fatal watchlist problem (missing file, missing column)
type WatchlistError struct {
	Path    string
	Line    int
	Field   string
	Message string
}

func (e *WatchlistError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Field != "" {
		return fmt.Sprintf("watchlist %s: %s: %s", loc, e.Field, e.Message)
	}
	return fmt.Sprintf("watchlist %s: %s", loc, e.Message)
}

// Row is one parsed watchlist row
type Row struct {
	Symbol       string `validate:"required,ticker"`
	Name         string `validate:"max=200"`
	ThemeBucket  string `validate:"max=64"`
	RawAssetType string
	AssetType    contracts.AssetType
	Line         int

	// Invalid holds the reason a row is malformed ("" when valid)
	Invalid string
}

// Watchlist is the parsed watchlist file
type Watchlist struct {
	Path        string
	ContentHash string
	Rows        []Row // file order, duplicates removed
	Warnings    []string
}

var requiredWatchlistColumns = []string{"symbol", "theme_bucket", "asset_type"}

var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-^=_]{0,19}$`)

var (
	rowValidatorOnce sync.Once
	rowValidator     *validator.Validate
)

func watchlistValidator() *validator.Validate {
	rowValidatorOnce.Do(func() {
		rowValidator = validator.New()
		_ = rowValidator.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
			return tickerPattern.MatchString(fl.Field().String())
		})
	})
	return rowValidator
}

// NormalizeSymbol trims and upper-cases a symbol
func NormalizeSymbol(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// LoadWatchlist reads and validates a watchlist file.
// A missing file or missing required column is fatal; malformed rows are
// kept with Invalid set so the gate can report WATCHLIST_INVALID_ROW.
func LoadWatchlist(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &WatchlistError{Path: path, Message: "file not found"}
		}
		return nil, &WatchlistError{Path: path, Message: err.Error()}
	}

	sum := sha256.Sum256(data)
	wl := &Watchlist{Path: path, ContentHash: hex.EncodeToString(sum[:])}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = s0_data.SniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &WatchlistError{Path: path, Message: "file is empty"}
	}
	if err != nil {
		return nil, &WatchlistError{Path: path, Line: 1, Message: err.Error()}
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		key = strings.ReplaceAll(key, " ", "_")
		if _, exists := columns[key]; !exists {
			columns[key] = i
		}
	}
	for _, c := range requiredWatchlistColumns {
		if _, ok := columns[c]; !ok {
			return nil, &WatchlistError{Path: path, Line: 1, Field: c, Message: "required column missing"}
		}
	}

	seen := make(map[string]int)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &WatchlistError{Path: path, Message: err.Error()}
		}
		line, _ := reader.FieldPos(0)

		row := Row{
			Symbol:       NormalizeSymbol(cell(record, columns, "symbol")),
			Name:         strings.TrimSpace(cell(record, columns, "name")),
			ThemeBucket:  strings.TrimSpace(cell(record, columns, "theme_bucket")),
			RawAssetType: strings.TrimSpace(cell(record, columns, "asset_type")),
			Line:         line,
		}

		if row.Symbol == "" {
			wl.Warnings = append(wl.Warnings, fmt.Sprintf("line %d: empty symbol, row skipped", line))
			continue
		}
		if first, dup := seen[row.Symbol]; dup {
			wl.Warnings = append(wl.Warnings, fmt.Sprintf("line %d: duplicate symbol %s (first at line %d), row skipped", line, row.Symbol, first))
			continue
		}
		seen[row.Symbol] = line

		row.Invalid = validateRow(&row)
		wl.Rows = append(wl.Rows, row)
	}

	return wl, nil
}

// validateRow resolves the asset type and returns the first problem found
func validateRow(row *Row) string {
	assetType, err := contracts.ParseAssetType(row.RawAssetType)
	if err == nil {
		row.AssetType = assetType
	}

	if verr := watchlistValidator().Struct(row); verr != nil {
		var fields validator.ValidationErrors
		if errors.As(verr, &fields) && len(fields) > 0 {
			fe := fields[0]
			return fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag())
		}
		return verr.Error()
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func cell(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
