package s1_universe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

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

func TestLoadWatchlist(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "watchlist.csv", `Symbol,Theme_Bucket,Asset_Type,Name
 spy ,broad_market,etf,SPDR S&P 500
QQQ,tech,ETF,
SMH,semiconductors,bond,VanEck Semis
,orphan,ETF,
spy,dup,ETF,
AAPL,tech,stock,Apple
`)

	wl, err := LoadWatchlist(path)
	require.NoError(t, err)

	require.Len(t, wl.Rows, 4)
	assert.Equal(t, "SPY", wl.Rows[0].Symbol)
	assert.Equal(t, "broad_market", wl.Rows[0].ThemeBucket)
	assert.Equal(t, contracts.AssetTypeETF, wl.Rows[0].AssetType)
	assert.Empty(t, wl.Rows[0].Invalid)

	smh := wl.Rows[2]
	assert.Equal(t, "SMH", smh.Symbol)
	assert.NotEmpty(t, smh.Invalid, "bad asset_type marks the row invalid")
	assert.Equal(t, "bond", smh.RawAssetType)

	assert.Equal(t, contracts.AssetTypeEquity, wl.Rows[3].AssetType)
	assert.Len(t, wl.Warnings, 2, "empty symbol and duplicate")
	assert.Len(t, wl.ContentHash, 64)
}

func TestLoadWatchlist_InvalidSymbol(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "w.csv", "symbol,theme_bucket,asset_type\nBAD SYM,x,ETF\n")

	wl, err := LoadWatchlist(path)
	require.NoError(t, err)
	require.Len(t, wl.Rows, 1)
	assert.Contains(t, wl.Rows[0].Invalid, "ticker")
}

func TestLoadWatchlist_Delimiters(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"semicolon", "symbol;theme_bucket;asset_type\nSPY;broad;ETF\nQQQ;tech;ETF\n"},
		{"tab", "symbol\ttheme_bucket\tasset_type\nSPY\tbroad\tETF\nQQQ\ttech\tETF\n"},
		{"pipe after comment", "# exported watchlist\nsymbol|theme_bucket|asset_type\nSPY|broad|ETF\nQQQ|tech|ETF\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "w.csv", tt.content)

			wl, err := LoadWatchlist(path)
			require.NoError(t, err)
			require.Len(t, wl.Rows, 2)
			assert.Equal(t, "SPY", wl.Rows[0].Symbol)
			assert.Equal(t, "broad", wl.Rows[0].ThemeBucket)
			assert.Equal(t, contracts.AssetTypeETF, wl.Rows[1].AssetType)
			assert.Empty(t, wl.Rows[1].Invalid)
		})
	}
}

func TestLoadWatchlist_Fatal(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"missing symbol column", "ticker,theme_bucket,asset_type\nSPY,x,ETF\n", "symbol"},
		{"missing asset_type column", "symbol,theme_bucket\nSPY,x\n", "asset_type"},
		{"empty file", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "w.csv", tt.content)

			_, err := LoadWatchlist(path)
			require.Error(t, err)

			var werr *WatchlistError
			require.True(t, errors.As(err, &werr))
			assert.Equal(t, tt.field, werr.Field)
			assert.Equal(t, path, werr.Path)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadWatchlist(filepath.Join(t.TempDir(), "nope.csv"))
		var werr *WatchlistError
		require.True(t, errors.As(err, &werr))
		assert.Contains(t, err.Error(), "file not found")
	})
}

func TestBuilder_Build(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "ohlcv")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	writeFile(t, dataDir, "qqq.csv", "date,open,high,low,close\n")
	writeFile(t, dataDir, "SPY.txt", "date,open,high,low,close\n")
	writeFile(t, dataDir, "AAPL.csv", "date,open,high,low,close\n")

	wlPath := writeFile(t, root, "watchlist.csv", `symbol,theme_bucket,asset_type
SPY,broad,ETF
QQQ,tech,ETF
AAPL,tech,EQUITY
IWM,small,ETF
XYZ,misc,warrant
`)
	wl, err := LoadWatchlist(wlPath)
	require.NoError(t, err)

	tests := []struct {
		name     string
		include  []string
		members  []string
		missing  []string
		excluded []string
	}{
		{
			name:    "no filter keeps everything",
			members: []string{"AAPL", "IWM", "QQQ", "SPY", "XYZ"},
			missing: []string{"IWM", "XYZ"},
		},
		{
			name:     "etf only",
			include:  []string{"ETF"},
			members:  []string{"IWM", "QQQ", "SPY", "XYZ"},
			missing:  []string{"IWM", "XYZ"},
			excluded: []string{"AAPL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(dataDir, strategyconfig.Universe{IncludeAssetTypes: tt.include}, logger.Nop())

			u, err := b.Build(context.Background(), wl)
			require.NoError(t, err)

			assert.Equal(t, tt.members, u.Symbols(), "sorted by symbol")
			assert.Equal(t, tt.missing, u.Missing)
			assert.Len(t, u.Excluded, len(tt.excluded))
			for _, s := range tt.excluded {
				excluded, reason := u.IsExcluded(s)
				assert.True(t, excluded)
				assert.Contains(t, reason, "include_asset_types")
			}
			assert.Equal(t, 5, u.TotalCount)

			qqq, ok := u.Find("QQQ")
			require.True(t, ok)
			assert.Equal(t, filepath.Join(dataDir, "qqq.csv"), qqq.FilePath)

			xyz, ok := u.Find("XYZ")
			require.True(t, ok)
			assert.False(t, xyz.Valid())
		})
	}
}

func TestBuilder_MissingDataDir(t *testing.T) {
	b := NewBuilder(filepath.Join(t.TempDir(), "absent"), strategyconfig.Universe{}, nil)

	_, err := b.Build(context.Background(), &Watchlist{})
	assert.Error(t, err)
}
