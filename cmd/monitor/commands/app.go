package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/audit"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/metrics"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/pipeline"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/report"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/config"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

// app bundles the resolved process and run configuration shared by commands
type app struct {
	cfg     *config.Config
	run     *strategyconfig.Config
	runHash string
	log     *logger.Logger
}

// bootstrap loads the environment, applies flag overrides and
// loads the run config. Every error names the file or field at fault.
func bootstrap() (*app, error) {
	// 1. Load process config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyFlags(cfg)

	// 2. Initialize logger
	log := logger.New(cfg)
	if quiet {
		log = logger.NewWithWriter(os.Stderr, "error")
	}

	// 3. Load run config
	runCfg, _, err := strategyconfig.Load(cfg.Paths.RunConfig)
	if err != nil {
		return nil, err
	}
	hash, err := strategyconfig.Hash(runCfg)
	if err != nil {
		return nil, fmt.Errorf("hash run config: %w", err)
	}
	for _, w := range strategyconfig.Warn(runCfg) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	return &app{cfg: cfg, run: runCfg, runHash: hash, log: log}, nil
}

func applyFlags(cfg *config.Config) {
	if runConfigPath != "" {
		cfg.Paths.RunConfig = runConfigPath
	}
	if dataDir != "" {
		cfg.Paths.DataDir = dataDir
	}
	if watchlistPath != "" {
		cfg.Paths.Watchlist = watchlistPath
	}
	if outDir != "" {
		cfg.Paths.OutDir = outDir
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
}

// openRecorder opens the run history sink. Failures degrade to Noop.
func (a *app) openRecorder(ctx context.Context) audit.Recorder {
	rec, err := audit.Open(ctx, a.cfg.History, a.log)
	if err != nil {
		a.log.WithError(err).Warn("run history unavailable, continuing without it")
		return audit.Noop{}
	}
	return rec
}

// newRunner wires orchestrator, writer and recorder around one metrics registry
func (a *app) newRunner(m *metrics.Metrics, rec audit.Recorder) *pipeline.Runner {
	o := pipeline.NewOrchestrator(a.run, a.cfg.Paths.DataDir, a.log, pipeline.WithMetrics(m))
	w := report.NewWriter(a.cfg.Paths.OutDir, a.run.Report, m, a.log)
	return pipeline.NewRunner(o, w, rec, m, a.log)
}

// baseRunConfig fills the per-run inputs that come from configuration
func (a *app) baseRunConfig() (pipeline.RunConfig, error) {
	rc := pipeline.RunConfig{
		WatchlistPath: a.cfg.Paths.Watchlist,
		Workers:       a.cfg.Workers,
		ConfigPath:    a.cfg.Paths.RunConfig,
		ConfigHash:    a.runHash,
		ToolVersion:   Version,
	}
	if a.cfg.Paths.MLPrediction != "" {
		preds, err := pipeline.LoadPredictions(a.cfg.Paths.MLPrediction)
		if err != nil {
			return rc, err
		}
		rc.Predictions = preds
	}
	return rc, nil
}
