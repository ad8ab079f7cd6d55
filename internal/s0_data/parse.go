package s0_data

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
)

// canonical column keys
const (
	colDate     = "date"
	colOpen     = "open"
	colHigh     = "high"
	colLow      = "low"
	colClose    = "close"
	colVolume   = "volume"
	colAdjClose = "adj_close"
)

var requiredColumns = []string{colDate, colOpen, colHigh, colLow, colClose}

var headerSquash = strings.NewReplacer(" ", "", "_", "", "-", "", ".", "")

// normalizeColumnName maps header variants onto canonical keys (case-insensitive)
func normalizeColumnName(column string) string {
	key := headerSquash.Replace(strings.ToLower(strings.TrimSpace(strings.TrimPrefix(column, "\ufeff"))))
	switch key {
	case "date", "timestamp", "time", "datetime", "day":
		return colDate
	case "open", "o":
		return colOpen
	case "high", "h":
		return colHigh
	case "low", "l":
		return colLow
	case "close", "c", "last":
		return colClose
	case "volume", "vol", "v":
		return colVolume
	case "adjclose", "adjustedclose", "adjclosingprice":
		return colAdjClose
	default:
		return key
	}
}

// mapColumns creates a mapping from canonical column names to indices.
// The first occurrence of a column wins.
func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, column := range header {
		name := normalizeColumnName(column)
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}
	return columns
}

// SniffDelimiter picks the most frequent of , ; tab | on the header line.
// Blank lines and '#' comments before the header are skipped.
func SniffDelimiter(data []byte) rune {
	line := headerLine(data)

	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func headerLine(data []byte) []byte {
	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			data = nil
		}
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 || trimmed[0] == '#' {
			continue
		}
		return line
	}
	return nil
}

// parseDate tries each layout in order and keeps the calendar date only
func parseDate(raw string, layouts []string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return contracts.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

func isNullToken(s string) bool {
	switch strings.ToLower(s) {
	case "", "null", "nan", "na", "n/a", "-", "none", "nil":
		return true
	}
	return false
}

// parsePrice parses a positive price. Blank/null tokens are null without a problem;
// unparseable or non-positive values are null with a problem description.
func parsePrice(raw string) (null.Float, string) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if isNullToken(s) {
		return null.Float{}, ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}, fmt.Sprintf("unparseable number %q", raw)
	}
	if v <= 0 {
		return null.Float{}, fmt.Sprintf("non-positive price %q", raw)
	}
	return null.FloatFrom(v), ""
}

// parseVolume parses a non-negative volume, rounding fractional values
func parseVolume(raw string) (null.Int, string) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if isNullToken(s) {
		return null.Int{}, ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Int{}, fmt.Sprintf("unparseable volume %q", raw)
	}
	if v < 0 {
		return null.Int{}, fmt.Sprintf("negative volume %q", raw)
	}
	return null.IntFrom(int64(math.Round(v))), ""
}
