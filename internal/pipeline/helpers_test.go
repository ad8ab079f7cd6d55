package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
)

func seriesEnding(symbol string, last time.Time) *contracts.Series {
	return &contracts.Series{
		Symbol: symbol,
		Bars: []contracts.Bar{
			{Date: last.AddDate(0, 0, -1), Close: null.FloatFrom(1)},
			{Date: last, Close: null.FloatFrom(1)},
		},
	}
}

func TestResolveAnchor(t *testing.T) {
	d1 := time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)
	series := []*contracts.Series{seriesEnding("A", d1), nil, seriesEnding("B", d2)}

	tests := []struct {
		name    string
		anchor  strategyconfig.Anchor
		series  []*contracts.Series
		want    time.Time
		wantErr string
	}{
		{"explicit", strategyconfig.Anchor{Policy: strategyconfig.AnchorExplicit, AsOf: "2024-01-31"}, series, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), ""},
		{"explicit missing date", strategyconfig.Anchor{Policy: strategyconfig.AnchorExplicit}, series, time.Time{}, "required"},
		{"explicit bad date", strategyconfig.Anchor{Policy: strategyconfig.AnchorExplicit, AsOf: "31/01/2024"}, series, time.Time{}, "YYYY-MM-DD"},
		{"frontier", strategyconfig.Anchor{Policy: strategyconfig.AnchorFrontier}, series, d2, ""},
		{"empty policy is frontier", strategyconfig.Anchor{}, series, d2, ""},
		{"frontier without data", strategyconfig.Anchor{Policy: strategyconfig.AnchorFrontier}, nil, time.Time{}, "--as-of"},
		{"unknown policy", strategyconfig.Anchor{Policy: "today"}, series, time.Time{}, "unknown policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveAnchor(tt.anchor, tt.series)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForEach(t *testing.T) {
	out := make([]int, 50)
	var calls atomic.Int32

	err := forEach(context.Background(), len(out), 4, func(i int) {
		calls.Add(1)
		out[i] = i * i
	})
	require.NoError(t, err)
	assert.EqualValues(t, 50, calls.Load())
	for i, v := range out {
		assert.Equal(t, i*i, v)
	}

	require.NoError(t, forEach(context.Background(), 0, 4, func(int) { t.Fatal("no jobs") }))
}

func TestForEach_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err := forEach(ctx, 100, 2, func(int) { calls.Add(1) })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestSafely(t *testing.T) {
	err := safely(func() error { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: boom")

	assert.NoError(t, safely(func() error { return nil }))
}

func TestLoadPredictions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preds.csv")
	require.NoError(t, os.WriteFile(path, []byte("Symbol,ML_Signal,ML_Model_ID\nspy,0.75,m1\nQQQ,,m1\n,0.1,x\n"), 0o644))

	preds, err := LoadPredictions(path)
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.InDelta(t, 0.75, preds["SPY"].Signal.Float64, 1e-12)
	assert.False(t, preds["QQQ"].Signal.Valid)
	assert.Equal(t, "m1", preds["QQQ"].ModelID.String)

	rows := []contracts.ScoreRow{{Symbol: "SPY"}, {Symbol: "IWM"}}
	assert.Equal(t, 1, mergePredictions(rows, preds))
	assert.True(t, rows[0].MLSignal.Valid)
	assert.False(t, rows[1].MLSignal.Valid)
	assert.False(t, rows[1].MLModelID.Valid)
}

func TestLoadPredictions_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadPredictions(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	noSymbol := filepath.Join(dir, "nosym.csv")
	require.NoError(t, os.WriteFile(noSymbol, []byte("ticker,ml_signal\nSPY,1\n"), 0o644))
	_, err = LoadPredictions(noSymbol)
	assert.ErrorContains(t, err, "symbol column missing")

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("symbol,ml_signal\nSPY,high\n"), 0o644))
	_, err = LoadPredictions(bad)
	assert.ErrorContains(t, err, "bad.csv:2")
}
