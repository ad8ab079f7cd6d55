package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/s1_universe"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "run config + watchlist 검증 (파이프라인 미실행)",
	Long: `run config와 watchlist를 검증합니다. 데이터 파일은 존재 여부만 확인합니다.

실패 조건 (exit 1):
  - run config 파싱/검증 실패 (필드 경로 포함)
  - watchlist 파일 없음, 비어 있음, 필수 컬럼 누락

경고만 출력:
  - 잘못된 행 (WATCHLIST_INVALID_ROW 로 게이트됨)
  - 중복/빈 symbol, OHLCV 파일 없음

Example:
  go run ./cmd/monitor validate --config configs/monitor.yaml --watchlist data/watchlist.csv`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	start := time.Now()
	out := cmd.OutOrStdout()

	a, err := bootstrap()
	if err != nil {
		return err
	}

	wl, err := s1_universe.LoadWatchlist(a.cfg.Paths.Watchlist)
	if err != nil {
		return err
	}

	universe, err := s1_universe.NewBuilder(a.cfg.Paths.DataDir, a.run.Universe, a.log).Build(context.Background(), wl)
	if err != nil {
		return err
	}

	invalid := 0
	for _, r := range wl.Rows {
		if r.Invalid != "" {
			invalid++
		}
	}

	configLabel := a.cfg.Paths.RunConfig
	if configLabel == "" {
		configLabel = "(built-in defaults)"
	}
	PrintHeader(out, "Validate", [][2]string{
		{"Config", configLabel},
		{"Hash", a.runHash},
		{"Profile", a.run.Meta.ProfileID},
		{"Watchlist", fmt.Sprintf("%s (%d rows, %d invalid)", wl.Path, len(wl.Rows), invalid)},
		{"Universe", fmt.Sprintf("%d members, %d excluded, %d missing files", len(universe.Members), len(universe.Excluded), len(universe.Missing))},
	})

	for _, r := range wl.Rows {
		if r.Invalid != "" {
			fmt.Fprintf(out, "  ⚠️  line %d %s: %s\n", r.Line, r.Symbol, r.Invalid)
		}
	}
	for _, w := range wl.Warnings {
		fmt.Fprintf(out, "  ⚠️  %s\n", w)
	}
	for _, symbol := range universe.Missing {
		fmt.Fprintf(out, "  ⚠️  %s: no OHLCV file in %s\n", symbol, a.cfg.Paths.DataDir)
	}

	PrintCompletion(out, "Validation", time.Since(start))
	return nil
}
