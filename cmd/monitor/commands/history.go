package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/s1_universe"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "실행 이력 조회",
	Long: `기록된 실행 이력을 조회합니다 (SQLite 기본, DATABASE_URL 설정 시 Postgres).

Example:
  go run ./cmd/monitor history
  go run ./cmd/monitor history --limit 5
  go run ./cmd/monitor history --symbol SPY`,
	RunE: runHistory,
}

var (
	historyLimit  int
	historySymbol string
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "max rows")
	historyCmd.Flags().StringVar(&historySymbol, "symbol", "", "show one symbol across runs")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	ctx := context.Background()
	out := cmd.OutOrStdout()

	rec := a.openRecorder(ctx)
	defer rec.Close()

	if historySymbol != "" {
		symbol := s1_universe.NormalizeSymbol(historySymbol)
		rows, err := rec.SymbolHistory(ctx, symbol, historyLimit)
		if err != nil {
			return fmt.Errorf("symbol history: %w", err)
		}
		fmt.Fprintf(out, "%-36s  %-10s  %-8s  %5s  %4s  %-5s  %s\n", "RUN", "AS-OF", "ELIGIBLE", "SCORE", "RANK", "RISK", "REASONS/FLAGS")
		for _, r := range rows {
			detail := r.Reasons
			if r.Eligible {
				detail = r.RiskFlags
			}
			fmt.Fprintf(out, "%-36s  %-10s  %-8t  %5s  %4s  %-5s  %s\n",
				r.RunID, r.AsOfDate, r.Eligible, nullInt(r.MonitorScore.Valid, r.MonitorScore.Int64), nullInt(r.Rank.Valid, r.Rank.Int64), r.RiskLevel, detail)
		}
		if len(rows) == 0 {
			fmt.Fprintf(out, "(no history for %s)\n", symbol)
		}
		return nil
	}

	runs, err := rec.ListRuns(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	fmt.Fprintf(out, "%-36s  %-10s  %-20s  %9s  %8s  %6s  %5s  %s\n", "RUN", "AS-OF", "RUN AT", "WATCHLIST", "ELIGIBLE", "SCORED", "LAG", "TOP")
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s  %-10s  %-20s  %9d  %8d  %6d  %5s  %s\n",
			r.RunID, r.AsOfDate, r.RunTimestamp.UTC().Format("2006-01-02 15:04:05"), r.Watchlist, r.Eligible, r.Scored,
			nullInt(r.WorstLagDays.Valid, r.WorstLagDays.Int64), r.TopSymbol)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "(no recorded runs)")
	}
	return nil
}

func nullInt(valid bool, v int64) string {
	if !valid {
		return "-"
	}
	return fmt.Sprintf("%d", v)
}
