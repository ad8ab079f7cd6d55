package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/audit"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/metrics"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "파이프라인 1회 실행 (S0~S5)",
	Long: `watchlist 전체에 대해 파이프라인을 1회 실행하고 산출물을 씁니다.

산출물 (all-or-nothing):
  eligible.csv, scored.csv, features.csv, summary.md, summary.html,
  metrics.prom, manifest.json

Anchor:
  --as-of 미지정 시 run config의 anchor 정책 (기본: frontier = 로드된 데이터의 최신 날짜).
  wall clock은 사용하지 않습니다.

Example:
  go run ./cmd/monitor run
  go run ./cmd/monitor run --as-of 2024-02-09 --out outputs/2024-02-09`,
	RunE: runPipeline,
}

var (
	runAsOf        string
	runID          string
	runPredictions string
	runNoHistory   bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runAsOf, "as-of", "", "anchor date YYYY-MM-DD (explicit policy)")
	runCmd.Flags().StringVar(&runID, "run-id", "", "run id (default: random UUID)")
	runCmd.Flags().StringVar(&runPredictions, "predictions", "", "optional ML prediction CSV (symbol,ml_signal,ml_model_id)")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "do not record the run in the history store")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	if runPredictions != "" {
		a.cfg.Paths.MLPrediction = runPredictions
	}

	rc, err := a.baseRunConfig()
	if err != nil {
		return err
	}
	rc.RunID = runID
	if runAsOf != "" {
		asOf, err := contracts.ParseDate(runAsOf)
		if err != nil {
			return fmt.Errorf("--as-of: %q is not YYYY-MM-DD", runAsOf)
		}
		rc.AsOf = asOf
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rec audit.Recorder = audit.Noop{}
	if !runNoHistory {
		rec = a.openRecorder(ctx)
	}
	defer rec.Close()

	runner := a.newRunner(metrics.New(), rec)
	result, artifacts, err := runner.Execute(ctx, rc)
	if err != nil {
		return err
	}

	PrintRunSummary(cmd.OutOrStdout(), result, artifacts, a.run.Report.TopN)
	return nil
}
