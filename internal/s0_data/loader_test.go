package s0_data

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestLoader(dir string, strict bool) *Loader {
	return NewLoader(dir, strategyconfig.Loader{Strict: strict}, logger.Nop())
}

func day(s string) time.Time {
	t, err := contracts.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestLoadFile_DuplicateDateAggregation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dup.csv", `Date,Open,High,Low,Close,Volume,Adj Close
2024-01-02,9,10,8,9.5,100,9.4
2024-01-02,,12,7,11,50,
2024-01-03,11,11.5,10.5,11.2,80,11.1
`)

	result, err := newTestLoader(dir, false).LoadFile("DUP", path)
	require.NoError(t, err)

	bars := result.Series.Bars
	require.Len(t, bars, 2)

	agg := bars[0]
	assert.Equal(t, day("2024-01-02"), agg.Date)
	assert.Equal(t, 9.0, agg.Open.Float64, "open = first non-null")
	assert.Equal(t, 12.0, agg.High.Float64, "high = max")
	assert.Equal(t, 7.0, agg.Low.Float64, "low = min")
	assert.Equal(t, 11.0, agg.Close.Float64, "close = last non-null")
	assert.Equal(t, int64(150), agg.Volume.Int64, "volume = sum")
	assert.Equal(t, 9.4, agg.AdjClose.Float64, "adj_close = last non-null")

	assert.Equal(t, 1, result.DuplicateDates)
	assert.Equal(t, 3, result.RawRows)
	assert.Len(t, result.ContentHash, 64)
}

func TestLoadFile_VolumeNullsCountAsZeroInAggregation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "v.csv", `date,open,high,low,close,volume
2024-01-02,1,1,1,1,
2024-01-02,1,1,1,1,40
2024-01-03,1,1,1,1,
`)

	result, err := newTestLoader(dir, false).LoadFile("V", path)
	require.NoError(t, err)

	assert.True(t, result.Series.Bars[0].Volume.Valid)
	assert.Equal(t, int64(40), result.Series.Bars[0].Volume.Int64)
	assert.False(t, result.Series.Bars[1].Volume.Valid, "all-null group stays null")
}

func TestLoadFile_CaseInsensitiveHeaderAndSort(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "x.txt", "DATE;OPEN;HIGH;LOW;CLOSE\n"+
		"2024-01-04;3;3;3;3\n"+
		"2024-01-02;1;1;1;1\n"+
		"2024-01-03;2;2;2;2\n")

	result, err := newTestLoader(dir, false).LoadFile("X", path)
	require.NoError(t, err)

	require.Len(t, result.Series.Bars, 3)
	for i, want := range []string{"2024-01-02", "2024-01-03", "2024-01-04"} {
		assert.Equal(t, day(want), result.Series.Bars[i].Date)
	}
	assert.False(t, contracts.HasVolume(result.Series.Bars))
}

func TestLoadFile_FallbackDateFormats(t *testing.T) {
	tests := []struct {
		name string
		date string
		want string
	}{
		{"iso", "2024-02-09", "2024-02-09"},
		{"slashes", "2024/02/09", "2024-02-09"},
		{"compact", "20240209", "2024-02-09"},
		{"us", "02/09/2024", "2024-02-09"},
		{"us unpadded", "2/9/2024", "2024-02-09"},
		{"us unpadded two digit day", "3/15/2024", "2024-03-15"},
		{"month name", "09-Feb-2024", "2024-02-09"},
		{"rfc3339", "2024-02-09T15:30:00Z", "2024-02-09"},
		{"datetime", "2024-02-09 15:30:00", "2024-02-09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "f.csv", "Date,Open,High,Low,Close\n"+tt.date+",1,1,1,1\n")

			result, err := newTestLoader(dir, false).LoadFile("F", path)
			require.NoError(t, err)
			assert.Equal(t, day(tt.want), result.Series.Bars[0].Date)
		})
	}
}

func TestLoadFile_DropsRowsMissingOHLC(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gap.csv", `Date,Open,High,Low,Close
2024-01-02,1,1,1,1
2024-01-03,2,2,2,
2024-01-04,3,3,3,3
2024-01-05,abc,4,4,4
`)

	result, err := newTestLoader(dir, false).LoadFile("GAP", path)
	require.NoError(t, err)

	assert.Len(t, result.Series.Bars, 2)
	assert.Equal(t, 2, result.DroppedRows)
	assert.True(t, result.MissingData())
	assert.Equal(t, []time.Time{day("2024-01-03"), day("2024-01-05")}, result.Series.DroppedDates)
	assert.NotEmpty(t, result.Warnings)
}

func TestLoadFile_StrictModeFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gap.csv", `Date,Open,High,Low,Close
2024-01-02,1,1,1,1
2024-01-03,2,2,2,
`)

	_, err := newTestLoader(dir, true).LoadFile("GAP", path)
	require.Error(t, err)

	var derr *DataError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, KindStrictViolation, derr.Kind)
	assert.Equal(t, "GAP", derr.Symbol)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantKind ErrorKind
	}{
		{"bad date", "Date,Open,High,Low,Close\nnot-a-date,1,1,1,1\n", KindBadDate},
		{"header only", "Date,Open,High,Low,Close\n", KindEmptySeries},
		{"empty file", "", KindEmptySeries},
		{"missing close column", "Date,Open,High,Low\n2024-01-02,1,1,1\n", KindMissingColumn},
		{"all rows dropped", "Date,Open,High,Low,Close\n2024-01-02,,,,\n", KindEmptySeries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "e.csv", tt.content)

			_, err := newTestLoader(dir, false).LoadFile("E", path)
			require.Error(t, err)

			var derr *DataError
			require.True(t, errors.As(err, &derr), "expected DataError, got %v", err)
			assert.Equal(t, tt.wantKind, derr.Kind)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestLoadFile_BadDateReportsLine(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "e.csv", "Date,Open,High,Low,Close\n2024-01-02,1,1,1,1\n2024-13-45,1,1,1,1\n")

	_, err := newTestLoader(dir, false).LoadFile("E", path)

	var derr *DataError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, 3, derr.Line)
}

func TestLoad_FindsFileCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spy.CSV", "Date,Open,High,Low,Close\n2024-01-02,1,1,1,1\n")

	loader := newTestLoader(dir, false)
	result, err := loader.Load(context.Background(), contracts.Member{
		Symbol:      "SPY",
		AssetType:   contracts.AssetTypeETF,
		ThemeBucket: "broad",
	})
	require.NoError(t, err)

	assert.Equal(t, "SPY", result.Series.Symbol)
	assert.Equal(t, contracts.AssetTypeETF, result.Series.AssetType)
	assert.Equal(t, "broad", result.Series.ThemeBucket)
}

func TestLoad_MissingFile(t *testing.T) {
	loader := newTestLoader(t.TempDir(), false)

	_, err := loader.Load(context.Background(), contracts.Member{Symbol: "NOPE"})

	var derr *DataError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, KindMissingFile, derr.Kind)
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLoader(t.TempDir(), false).Load(ctx, contracts.Member{Symbol: "SPY"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndexDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "qqq.txt", "x")
	writeFile(t, dir, "QQQ.csv", "x")
	writeFile(t, dir, "iwm.TXT", "x")
	writeFile(t, dir, "notes.md", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))

	idx, err := IndexDir(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"IWM", "QQQ"}, idx.Symbols())

	path, ok := idx.Lookup("qqq")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "QQQ.csv"), path, ".csv preferred over .txt")

	_, ok = idx.Lookup("NOTES")
	assert.False(t, ok)
}

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Date", colDate},
		{" TIMESTAMP ", colDate},
		{"Adj Close", colAdjClose},
		{"adj_close", colAdjClose},
		{"AdjClose", colAdjClose},
		{"Adjusted Close", colAdjClose},
		{"Vol", colVolume},
		{"\ufeffDate", colDate},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeColumnName(tt.in))
		})
	}
}

func TestNoLookAheadInLoad(t *testing.T) {
	// future rows never change bars at or before an anchor
	dir := t.TempDir()
	base := "Date,Open,High,Low,Close,Volume\n2024-01-02,1,1,1,1,10\n2024-01-03,2,2,2,2,20\n"
	a := writeFile(t, dir, "a.csv", base)
	b := writeFile(t, dir, "b.csv", base+"2024-01-04,3,3,3,3,30\n2024-01-03,2,9,1,2,5\n")

	loader := newTestLoader(dir, false)
	ra, err := loader.LoadFile("A", a)
	require.NoError(t, err)
	rb, err := loader.LoadFile("B", b)
	require.NoError(t, err)

	anchor := day("2024-01-02")
	assert.Equal(t, ra.Series.Window(anchor), rb.Series.Window(anchor))
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Date,Open,Close\n2024-01-02,1,1\n", ','},
		{"semicolon", "Date;Open;Close\n", ';'},
		{"tab", "Date\tOpen\tClose\n", '\t'},
		{"pipe", "Date|Open|Close", '|'},
		{"comment before header", "# a, b, c, d, e\n\nDate;Open;Close\n", ';'},
		{"single column", "Date\n", ','},
		{"empty", "", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffDelimiter([]byte(tt.data)))
		})
	}
}
