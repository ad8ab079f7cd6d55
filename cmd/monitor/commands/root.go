package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	runConfigPath string
	dataDir       string
	watchlistPath string
	outDir        string
	workers       int
	verbose       bool
	quiet         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watchlist monitor - offline OHLCV 기반 종목 모니터",
	Long: `Watchlist Monitor CLI

로컬 OHLCV 파일과 watchlist만으로 동작하는 결정적(deterministic) 모니터.
S0 로드 → S1 유니버스 → S2 피처 → S3 게이트 → S4 스코어 → S5 리포트.

Usage:
  go run ./cmd/monitor [command]

Examples:
  go run ./cmd/monitor run --as-of 2024-02-09
  go run ./cmd/monitor validate --config configs/monitor.yaml
  go run ./cmd/monitor features SPY
  go run ./cmd/monitor schedule --cron "0 30 18 * * 1-5"
  go run ./cmd/monitor serve --port 8089`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags (override the MONITOR_* environment)
	rootCmd.PersistentFlags().StringVar(&runConfigPath, "config", "", "run config YAML (default: MONITOR_CONFIG or built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "OHLCV directory (default: MONITOR_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&watchlistPath, "watchlist", "", "watchlist CSV (default: MONITOR_WATCHLIST)")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "", "artifact directory (default: MONITOR_OUT_DIR)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "per-symbol worker count (default: MONITOR_WORKERS)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "log errors only")
}
