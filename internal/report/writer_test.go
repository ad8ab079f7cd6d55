package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/metrics"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

func day(s string) time.Time {
	t, err := contracts.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleResult() *contracts.RunResult {
	asOf := day("2024-02-09")
	spyScore := contracts.ScoreRow{
		Symbol:       "SPY",
		Rank:         1,
		MonitorScore: 7,
		RiskFlags:    []contracts.RiskFlag{contracts.FlagHighVolatility, contracts.FlagStaleData},
		RiskLevel:    contracts.RiskAmber,
		Explanation:  "trend=0.83x30 dd=0 theme=+0 pts=64.2 -> 7",
		ThemeBucket:  "broad",
		AssetType:    contracts.AssetTypeETF,
		LastDate:     null.TimeFrom(day("2024-01-10")),
		LagDays:      null.IntFrom(30),
	}

	return &contracts.RunResult{
		Manifest: contracts.RunManifest{
			RunID:        "run-1",
			ToolVersion:  "test",
			AsOfDate:     "2024-02-09",
			AnchorPolicy: strategyconfig.AnchorExplicit,
			RunTimestamp: time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC),
			ConfigHash:   "abc123",
			InputHashes:  map[string]string{"watchlist.csv": "ff"},
			Counts:       contracts.RunCounts{Watchlist: 2, Universe: 2, MissingFiles: 1, Loaded: 1, Eligible: 1, Scored: 1},
			Lag: contracts.LagSummary{
				WorstLagDays:  null.IntFrom(30),
				WorstSymbol:   "SPY",
				MedianLagDays: null.FloatFrom(30),
				MaxLagAllowed: 5,
				StaleSymbols:  1,
			},
			GateFailures: map[contracts.GateReason]int{
				contracts.ReasonMissingOHLC:  1,
				contracts.ReasonHistoryLtMin: 1,
			},
		},
		Universe: &contracts.Universe{Excluded: map[string]string{"AAPL": "asset_type EQUITY not in include_asset_types"}},
		Symbols: []contracts.SymbolResult{
			{
				Member:   contracts.Member{Symbol: "MISS", ThemeBucket: "x", AssetType: contracts.AssetTypeETF},
				Features: contracts.FeatureRow{Symbol: "MISS", AsOfDate: asOf, LoadError: "file not found"},
				Gate: contracts.GateResult{
					Symbol:  "MISS",
					Reasons: []contracts.GateReason{contracts.ReasonMissingOHLC, contracts.ReasonHistoryLtMin},
				},
			},
			{
				Member: contracts.Member{Symbol: "SPY", ThemeBucket: "broad", AssetType: contracts.AssetTypeETF},
				Features: contracts.FeatureRow{
					Symbol:      "SPY",
					AsOfDate:    asOf,
					HistoryDays: 300,
					LastDate:    null.TimeFrom(day("2024-01-10")),
					LagDays:     null.IntFrom(30),
					Close:       null.FloatFrom(1.0 / 3.0),
				},
				Gate:  contracts.GateResult{Symbol: "SPY", Eligible: true, Reasons: []contracts.GateReason{}, Stale: true},
				Score: &spyScore,
			},
		},
		Scored: []contracts.ScoreRow{spyScore},
	}
}

func newTestWriter(dir string, m *metrics.Metrics) *Writer {
	return NewWriter(dir, strategyconfig.Default().Report, m, logger.Nop())
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := newTestWriter(dir, metrics.New())

	artifacts, err := w.Write(sampleResult())
	require.NoError(t, err)
	assert.Len(t, artifacts.Files, 7)

	assert.Equal(t,
		"symbol,eligible,gate_fail_reasons,theme_bucket,asset_type\n"+
			"MISS,False,MISSING_OHLC|HISTORY_LT_MIN,x,ETF\n"+
			"SPY,True,,broad,ETF\n",
		readFile(t, w.Path(FileEligible)))

	scored := strings.Split(strings.TrimSpace(readFile(t, w.Path(FileScored))), "\n")
	require.Len(t, scored, 2)
	assert.Equal(t, strings.Join(scoredHeader, ","), scored[0])
	assert.Equal(t,
		"SPY,7,high_volatility|stale_data,trend=0.83x30 dd=0 theme=+0 pts=64.2 -> 7,broad,ETF,2024-01-10,30,1,AMBER,,",
		scored[1])

	features := readFile(t, w.Path(FileFeatures))
	assert.Contains(t, features, "SPY,2024-02-09,300,2024-01-10,30,,0.333333,")
	assert.Contains(t, features, "file not found")

	summary := readFile(t, w.Path(FileSummaryMD))
	assert.Contains(t, summary, "# Watchlist Monitor: 2024-02-09")
	assert.Contains(t, summary, `MISSING_OHLC\|HISTORY_LT_MIN`)
	assert.Contains(t, summary, "AAPL")

	page := readFile(t, w.Path(FileSummaryHTML))
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<title>Watchlist Monitor 2024-02-09</title>")

	var manifest contracts.RunManifest
	require.NoError(t, json.Unmarshal([]byte(readFile(t, w.Path(FileManifest))), &manifest))
	assert.Equal(t, "2024-02-09", manifest.AsOfDate)
	assert.Equal(t, int64(30), manifest.Lag.WorstLagDays.Int64)
	assert.Contains(t, manifest.Artifacts, FileMetrics)

	assert.Contains(t, readFile(t, w.Path(FileMetrics)), `monitor_symbols{state="eligible"} 1`)

	leftovers, err := filepath.Glob(filepath.Join(dir, "*"+tmpSuffix))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestWriter_Deterministic(t *testing.T) {
	a := newTestWriter(filepath.Join(t.TempDir(), "a"), nil)
	b := newTestWriter(filepath.Join(t.TempDir(), "b"), nil)

	_, err := a.Write(sampleResult())
	require.NoError(t, err)
	_, err = b.Write(sampleResult())
	require.NoError(t, err)

	for _, name := range []string{FileEligible, FileScored, FileFeatures, FileSummaryMD} {
		assert.Equal(t, readFile(t, a.Path(name)), readFile(t, b.Path(name)), name)
	}
	_, err = os.Stat(a.Path(FileMetrics))
	assert.True(t, os.IsNotExist(err), "no metrics.prom without a registry")
}

func TestWriter_FailureLeavesNoPartialArtifacts(t *testing.T) {
	dir := t.TempDir()
	// a directory where the scored temp file should go makes staging fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, FileScored+tmpSuffix), 0o755))

	w := newTestWriter(dir, nil)
	_, err := w.Write(sampleResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), FileScored)

	_, statErr := os.Stat(w.Path(FileEligible))
	assert.True(t, os.IsNotExist(statErr), "nothing published")
	_, statErr = os.Stat(filepath.Join(dir, FileEligible+tmpSuffix))
	assert.True(t, os.IsNotExist(statErr), "temps removed")
}

func TestWriter_PublishFailureRestoresPreviousRun(t *testing.T) {
	dir := t.TempDir()
	_, err := newTestWriter(dir, nil).Write(sampleResult())
	require.NoError(t, err)

	before := map[string]string{}
	for _, name := range []string{FileEligible, FileScored, FileFeatures, FileSummaryMD, FileSummaryHTML, FileManifest} {
		before[name] = readFile(t, filepath.Join(dir, name))
	}

	// the last artifact cannot be published
	renameFile = func(oldpath, newpath string) error {
		if strings.HasSuffix(oldpath, tmpSuffix) && filepath.Base(newpath) == FileManifest {
			return os.ErrPermission
		}
		return os.Rename(oldpath, newpath)
	}
	t.Cleanup(func() { renameFile = os.Rename })

	next := sampleResult()
	next.Manifest.RunID = "run-2"
	next.Symbols[0].Member.ThemeBucket = "changed"

	w := newTestWriter(dir, metrics.New())
	_, err = w.Write(next)
	require.Error(t, err)
	assert.Contains(t, err.Error(), FileManifest)

	for name, content := range before {
		assert.Equal(t, content, readFile(t, filepath.Join(dir, name)), name)
	}
	_, statErr := os.Stat(w.Path(FileMetrics))
	assert.True(t, os.IsNotExist(statErr), "artifact new to this run removed")

	for _, pattern := range []string{"*" + tmpSuffix, "*" + prevSuffix} {
		leftovers, err := filepath.Glob(filepath.Join(dir, pattern))
		require.NoError(t, err)
		assert.Empty(t, leftovers, pattern)
	}
}

func TestWriter_UnwritableOutputDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := newTestWriter(filepath.Join(file, "out"), nil).Write(sampleResult())
	assert.Error(t, err)
}
