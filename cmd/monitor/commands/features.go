package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/pipeline"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s0_data"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s1_universe"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s2_features"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s3_gates"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s4_scoring"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
)

// featuresCmd represents the features command
var featuresCmd = &cobra.Command{
	Use:   "features SYMBOL",
	Short: "한 종목의 피처/게이트/스코어를 JSON으로 출력",
	Long: `한 종목의 OHLCV 파일만 로드해 S2~S4를 계산하고 JSON으로 출력합니다.
watchlist에 있으면 theme_bucket/asset_type을 사용합니다.

Anchor:
  --as-of 미지정 시 run config의 anchor 정책 (frontier = 이 종목의 마지막 bar).

Example:
  go run ./cmd/monitor features SPY
  go run ./cmd/monitor features SPY --as-of 2024-02-09`,
	Args: cobra.ExactArgs(1),
	RunE: runFeatures,
}

var featuresAsOf string

func init() {
	rootCmd.AddCommand(featuresCmd)

	featuresCmd.Flags().StringVar(&featuresAsOf, "as-of", "", "anchor date YYYY-MM-DD")
}

// featuresOutput is the JSON document printed by the features command
type featuresOutput struct {
	Features contracts.FeatureRow  `json:"features"`
	Gate     contracts.GateResult  `json:"gate"`
	Score    *contracts.ScoreRow   `json:"score,omitempty"`
	Load     *contracts.LoadResult `json:"load"`
}

func runFeatures(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}

	symbol := s1_universe.NormalizeSymbol(args[0])
	member := lookupMember(a.cfg.Paths.Watchlist, symbol)

	path, err := s0_data.FindFile(a.cfg.Paths.DataDir, symbol)
	if err != nil {
		return err
	}
	load, err := s0_data.NewLoader(a.cfg.Paths.DataDir, a.run.Loader, a.log).LoadFile(symbol, path)
	if err != nil {
		return err
	}
	load.Series.AssetType = member.AssetType
	load.Series.ThemeBucket = member.ThemeBucket

	anchor := a.run.Anchor
	if featuresAsOf != "" {
		anchor = strategyconfig.Anchor{Policy: strategyconfig.AnchorExplicit, AsOf: featuresAsOf}
	}
	asOf, err := pipeline.ResolveAnchor(anchor, []*contracts.Series{load.Series})
	if err != nil {
		return err
	}

	row := s2_features.NewEngine(a.run.Features, a.log).Compute(load.Series, asOf, time.Now().UTC())
	gate := s3_gates.NewEvaluator(a.run.Gates).Evaluate(&row, member)

	out := featuresOutput{Features: row, Gate: gate}
	if gate.Eligible {
		score := s4_scoring.NewScorer(a.run, a.log).Score(&row, member, gate)
		out.Score = &score
	}

	// 시계열 전체는 출력하지 않음
	series := *load.Series
	series.Bars = nil
	out.Load = &contracts.LoadResult{
		Series:         &series,
		Path:           load.Path,
		ContentHash:    load.ContentHash,
		RawRows:        load.RawRows,
		DuplicateDates: load.DuplicateDates,
		DroppedRows:    load.DroppedRows,
		Warnings:       load.Warnings,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode features: %w", err)
	}
	return nil
}

// lookupMember finds symbol in the watchlist; a symbol outside it gets a bare member
func lookupMember(watchlistPath, symbol string) contracts.Member {
	member := contracts.Member{Symbol: symbol, AssetType: contracts.AssetTypeEquity}
	wl, err := s1_universe.LoadWatchlist(watchlistPath)
	if err != nil {
		return member
	}
	for _, r := range wl.Rows {
		if r.Symbol == symbol {
			return contracts.Member{
				Symbol:        r.Symbol,
				Name:          r.Name,
				ThemeBucket:   r.ThemeBucket,
				AssetType:     r.AssetType,
				RawAssetType:  r.RawAssetType,
				Line:          r.Line,
				InvalidReason: r.Invalid,
			}
		}
	}
	return member
}
