package s0_data

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

// Loader reads per-symbol OHLCV files (S0)
// ⭐ SSOT: OHLCV 파일 파싱은 이 패키지에서만
type Loader struct {
	dataDir string
	opts    strategyconfig.Loader
	logger  *logger.Logger
}

// NewLoader creates a loader for files under dataDir
func NewLoader(dataDir string, opts strategyconfig.Loader, log *logger.Logger) *Loader {
	if len(opts.DateFormats) == 0 {
		opts.DateFormats = strategyconfig.DefaultDateFormats
	}
	return &Loader{
		dataDir: dataDir,
		opts:    opts,
		logger:  log.WithStage(contracts.StageLoad.ShortName()),
	}
}

// Load loads a universe member. The member's resolved FilePath is used
// when present, otherwise the data dir is searched.
func (l *Loader) Load(ctx context.Context, member contracts.Member) (*contracts.LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := member.FilePath
	if path == "" {
		found, err := FindFile(l.dataDir, member.Symbol)
		if err != nil {
			return nil, err
		}
		path = found
	}

	result, err := l.LoadFile(member.Symbol, path)
	if err != nil {
		return nil, err
	}
	result.Series.AssetType = member.AssetType
	result.Series.ThemeBucket = member.ThemeBucket
	return result, nil
}

// LoadFile parses one OHLCV file into an ascending, de-duplicated series
func (l *Loader) LoadFile(symbol, path string) (*contracts.LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		kind := KindRead
		if errors.Is(err, os.ErrNotExist) {
			kind = KindMissingFile
		}
		return nil, &DataError{Symbol: symbol, Path: path, Kind: kind, Err: err}
	}

	sum := sha256.Sum256(data)
	result, err := l.parse(symbol, path, data)
	if err != nil {
		return nil, err
	}
	result.ContentHash = hex.EncodeToString(sum[:])

	log := l.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"file":   path,
	})
	if len(result.Warnings) > 0 {
		log.WithFields(map[string]interface{}{
			"warnings":        len(result.Warnings),
			"dropped_rows":    result.DroppedRows,
			"duplicate_dates": result.DuplicateDates,
			"first_warning":   result.Warnings[0],
		}).Warn("OHLCV file loaded with warnings")
	} else {
		fields := map[string]interface{}{"bars": result.Series.Len()}
		if first, ok := result.Series.FirstDate(); ok {
			last, _ := result.Series.LastDate()
			fields["first"] = first.Format(contracts.DateLayout)
			fields["last"] = last.Format(contracts.DateLayout)
		}
		log.WithFields(fields).Debug("OHLCV file loaded")
	}

	return result, nil
}

func (l *Loader) parse(symbol, path string, data []byte) (*contracts.LoadResult, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = SniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &DataError{Symbol: symbol, Path: path, Kind: KindEmptySeries, Err: fmt.Errorf("file is empty")}
	}
	if err != nil {
		return nil, &DataError{Symbol: symbol, Path: path, Kind: KindRead, Line: 1, Err: err}
	}

	columns := mapColumns(header)
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := columns[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &DataError{
			Symbol: symbol,
			Path:   path,
			Kind:   KindMissingColumn,
			Line:   1,
			Err:    fmt.Errorf("missing required column(s) %s", strings.Join(missing, ", ")),
		}
	}

	result := &contracts.LoadResult{Path: path}
	var rows []rawRow

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return nil, &DataError{Symbol: symbol, Path: path, Kind: KindRead, Line: line, Err: err}
		}
		line, _ := reader.FieldPos(0)
		if isBlankRecord(record) {
			continue
		}
		result.RawRows++

		date, err := parseDate(field(record, columns, colDate), l.opts.DateFormats)
		if err != nil {
			return nil, &DataError{Symbol: symbol, Path: path, Kind: KindBadDate, Line: line, Err: err}
		}

		rp := rowParser{record: record, columns: columns}
		bar := contracts.Bar{
			Date:  date,
			Open:  rp.price(colOpen),
			High:  rp.price(colHigh),
			Low:   rp.price(colLow),
			Close: rp.price(colClose),
		}
		if _, ok := columns[colAdjClose]; ok {
			bar.AdjClose = rp.price(colAdjClose)
		}
		if _, ok := columns[colVolume]; ok {
			bar.Volume = rp.volume(colVolume)
		}

		if problems := rp.problems; len(problems) > 0 {
			if l.opts.Strict {
				return nil, &DataError{
					Symbol: symbol, Path: path, Kind: KindStrictViolation, Line: line,
					Err: fmt.Errorf("%s", strings.Join(problems, "; ")),
				}
			}
			for _, p := range problems {
				result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: %s", line, p))
			}
		}

		rows = append(rows, rawRow{line: line, bar: bar})
	}

	bars, duplicates := aggregateByDate(rows)
	result.DuplicateDates = duplicates
	if duplicates > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d duplicate date row(s) aggregated", duplicates))
	}

	series := &contracts.Series{Symbol: symbol, Bars: make([]contracts.Bar, 0, len(bars))}
	for _, b := range bars {
		if b.HasOHLC() {
			series.Bars = append(series.Bars, b)
			continue
		}
		if l.opts.Strict {
			return nil, &DataError{
				Symbol: symbol, Path: path, Kind: KindStrictViolation,
				Err: fmt.Errorf("%s: missing required OHLC value", b.Date.Format(contracts.DateLayout)),
			}
		}
		series.DroppedDates = append(series.DroppedDates, b.Date)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: missing required OHLC value, row dropped", b.Date.Format(contracts.DateLayout)))
	}
	result.DroppedRows = len(series.DroppedDates)

	if series.Len() == 0 {
		return nil, &DataError{Symbol: symbol, Path: path, Kind: KindEmptySeries, Err: fmt.Errorf("no usable bars")}
	}

	result.Series = series
	return result, nil
}

func field(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// rowParser collects per-column value problems of one record
type rowParser struct {
	record   []string
	columns  map[string]int
	problems []string
}

func (p *rowParser) price(column string) null.Float {
	v, problem := parsePrice(field(p.record, p.columns, column))
	if problem != "" {
		p.problems = append(p.problems, column+": "+problem)
	}
	return v
}

func (p *rowParser) volume(column string) null.Int {
	v, problem := parseVolume(field(p.record, p.columns, column))
	if problem != "" {
		p.problems = append(p.problems, column+": "+problem)
	}
	return v
}
