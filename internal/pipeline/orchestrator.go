package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/metrics"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s0_data"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s0_data/quality"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s1_universe"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s2_features"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s3_gates"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s4_scoring"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

// Orchestrator coordinates S0~S4 of one run. S5 (report) is left to the caller.
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	config *strategyconfig.Config

	universeBuilder *s1_universe.Builder
	loader          contracts.SeriesLoader
	qualityGate     *quality.Gate
	engine          contracts.FeatureEngine
	gates           contracts.GateEvaluator
	scorer          contracts.Scorer
	ranker          contracts.Ranker

	metrics *metrics.Metrics
	now     func() time.Time
	logger  *logger.Logger
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithLoader replaces the OHLCV loader
func WithLoader(l contracts.SeriesLoader) Option {
	return func(o *Orchestrator) { o.loader = l }
}

// WithMetrics records stage durations
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock replaces the clock used for the run timestamp
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator wires every stage from one resolved config
func NewOrchestrator(cfg *strategyconfig.Config, dataDir string, log *logger.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	o := &Orchestrator{
		config:          cfg,
		universeBuilder: s1_universe.NewBuilder(dataDir, cfg.Universe, log),
		loader:          s0_data.NewLoader(dataDir, cfg.Loader, log),
		qualityGate:     quality.NewGate(quality.DefaultConfig()),
		engine:          s2_features.NewEngine(cfg.Features, log),
		gates:           s3_gates.NewEvaluator(cfg.Gates),
		scorer:          s4_scoring.NewScorer(cfg, log),
		ranker:          s4_scoring.NewRanker(log),
		now:             func() time.Time { return time.Now().UTC() },
		logger:          log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunConfig holds the per-run inputs
type RunConfig struct {
	WatchlistPath string
	AsOf          time.Time // zero → AnchorPolicy
	AnchorPolicy  string    // empty → config anchor policy
	RunTime       time.Time // zero → clock; only feeds staleness_days_at_run
	RunID         string    // empty → random UUID
	Workers       int

	ConfigPath  string
	ConfigHash  string
	ToolVersion string

	Predictions map[string]Prediction // optional ML augmentation
}

// Run executes S1 → S0 → S2 → S3 → S4.
// Per-symbol failures become gate failures; only run-level problems
// (watchlist, data dir, anchor, cancellation) return an error.
func (o *Orchestrator) Run(ctx context.Context, rc RunConfig) (*contracts.RunResult, error) {
	runTime := rc.RunTime
	if runTime.IsZero() {
		runTime = o.now()
	}
	runID := rc.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	log := o.logger.WithField("run_id", runID)

	result := &contracts.RunResult{
		StageDurations: make(map[contracts.Stage]time.Duration),
		Warnings:       make([]string, 0),
	}
	timed := func(stage contracts.Stage, fn func() error) error {
		start := time.Now()
		err := fn()
		d := time.Since(start)
		result.StageDurations[stage] = d
		if o.metrics != nil {
			o.metrics.ObserveStage(stage, d)
		}
		log.WithFields(map[string]interface{}{
			"stage":       stage.ShortName(),
			"description": stage.Description(),
			"duration_ms": d.Milliseconds(),
		}).Debug("Stage finished")
		return err
	}

	log.WithFields(map[string]interface{}{
		"watchlist": rc.WatchlistPath,
		"workers":   rc.Workers,
	}).Info("Starting pipeline run")

	// S1: watchlist → universe
	var watchlist *s1_universe.Watchlist
	if err := timed(contracts.StageUniverse, func() error {
		wl, err := s1_universe.LoadWatchlist(rc.WatchlistPath)
		if err != nil {
			return err
		}
		watchlist = wl
		u, err := o.universeBuilder.Build(ctx, wl)
		if err != nil {
			return err
		}
		result.Universe = u
		return nil
	}); err != nil {
		return nil, fmt.Errorf("S1 failed: %w", err)
	}
	for _, w := range watchlist.Warnings {
		result.Warnings = append(result.Warnings, "watchlist "+w)
	}

	members := result.Universe.Members
	symbols := make([]contracts.SymbolResult, len(members))
	loadErrs := make([]error, len(members))

	// S0: load every member
	if err := timed(contracts.StageLoad, func() error {
		return forEach(ctx, len(members), rc.Workers, func(i int) {
			m := members[i]
			symbols[i].Member = m
			if !m.HasFile() {
				loadErrs[i] = &s0_data.DataError{
					Symbol: m.Symbol,
					Kind:   s0_data.KindMissingFile,
					Err:    errors.New("no .csv/.txt file in data dir"),
				}
				return
			}
			loadErrs[i] = safely(func() error {
				res, err := o.loader.Load(ctx, m)
				if err != nil {
					return err
				}
				symbols[i].Load = res
				return nil
			})
		})
	}); err != nil {
		return nil, fmt.Errorf("S0 failed: %w", err)
	}

	outcomes := make([]quality.Outcome, len(symbols))
	loaded := make([]*contracts.Series, 0, len(symbols))
	for i, s := range symbols {
		outcomes[i] = quality.Outcome{Symbol: s.Member.Symbol, FileFound: s.Member.HasFile(), Result: s.Load, Err: loadErrs[i]}
		if s.Load != nil {
			loaded = append(loaded, s.Load.Series)
			for _, w := range s.Load.Warnings {
				result.Warnings = append(result.Warnings, s.Member.Symbol+": "+w)
			}
		}
		if loadErrs[i] != nil && s.Member.HasFile() {
			log.WithSymbol(s.Member.Symbol).WithError(loadErrs[i]).Warn("load failed")
		}
	}
	snapshot, err := o.qualityGate.Check(ctx, outcomes)
	if err != nil {
		return nil, fmt.Errorf("S0 quality: %w", err)
	}

	// anchor
	anchor := o.config.Anchor
	if rc.AnchorPolicy != "" {
		anchor = strategyconfig.Anchor{Policy: rc.AnchorPolicy}
	}
	if !rc.AsOf.IsZero() {
		anchor = strategyconfig.Anchor{Policy: strategyconfig.AnchorExplicit, AsOf: contracts.Day(rc.AsOf).Format(contracts.DateLayout)}
	}
	asOf, err := ResolveAnchor(anchor, loaded)
	if err != nil {
		return nil, err
	}
	log = log.WithField("as_of", asOf.Format(contracts.DateLayout))

	// S2: features at the anchor
	if err := timed(contracts.StageFeatures, func() error {
		return forEach(ctx, len(symbols), rc.Workers, func(i int) {
			s := &symbols[i]
			if s.Load == nil {
				s.Features = contracts.FeatureRow{Symbol: s.Member.Symbol, AsOfDate: asOf, LoadError: errorText(loadErrs[i])}
				return
			}
			if err := safely(func() error {
				s.Features = o.engine.Compute(s.Load.Series, asOf, runTime)
				return nil
			}); err != nil {
				log.WithSymbol(s.Member.Symbol).WithError(err).Error("feature computation failed")
				s.Features = contracts.FeatureRow{Symbol: s.Member.Symbol, AsOfDate: asOf, LoadError: "feature computation failed"}
			}
		})
	}); err != nil {
		return nil, fmt.Errorf("S2 failed: %w", err)
	}

	// S3: gates (collect all reasons)
	_ = timed(contracts.StageGates, func() error {
		for i := range symbols {
			symbols[i].Gate = o.gates.Evaluate(&symbols[i].Features, symbols[i].Member)
		}
		return nil
	})

	// S4: score eligible symbols, rank
	_ = timed(contracts.StageScoring, func() error {
		scored := make([]contracts.ScoreRow, 0, len(symbols))
		for i := range symbols {
			if !symbols[i].Gate.Eligible {
				continue
			}
			scored = append(scored, o.scorer.Score(&symbols[i].Features, symbols[i].Member, symbols[i].Gate))
		}
		result.Scored = o.ranker.Rank(scored)
		if len(rc.Predictions) > 0 {
			n := mergePredictions(result.Scored, rc.Predictions)
			log.WithField("merged", n).Info("ml predictions merged")
		}

		bySymbol := make(map[string]int, len(result.Scored))
		for i, r := range result.Scored {
			bySymbol[r.Symbol] = i
		}
		for i := range symbols {
			if j, ok := bySymbol[symbols[i].Member.Symbol]; ok {
				row := result.Scored[j]
				symbols[i].Score = &row
			}
		}
		return nil
	})

	sort.Slice(symbols, func(i, j int) bool {
		return symbols[i].Member.Symbol < symbols[j].Member.Symbol
	})
	result.Symbols = symbols

	result.Manifest = o.buildManifest(rc, runID, runTime, asOf, anchor.Policy, watchlist, result, snapshot, loaded)

	log.WithFields(map[string]interface{}{
		"universe": len(symbols),
		"loaded":   snapshot.LoadedSymbols,
		"eligible": result.Manifest.Counts.Eligible,
		"scored":   len(result.Scored),
	}).Info("Pipeline run completed")

	return result, nil
}

func (o *Orchestrator) buildManifest(
	rc RunConfig,
	runID string,
	runTime, asOf time.Time,
	policy string,
	watchlist *s1_universe.Watchlist,
	result *contracts.RunResult,
	snapshot *contracts.DataQualitySnapshot,
	loaded []*contracts.Series,
) contracts.RunManifest {
	gates := result.Gates()

	m := contracts.RunManifest{
		RunID:        runID,
		ToolVersion:  rc.ToolVersion,
		AsOfDate:     asOf.Format(contracts.DateLayout),
		AnchorPolicy: policy,
		RunTimestamp: runTime,
		ConfigPath:   rc.ConfigPath,
		ConfigHash:   rc.ConfigHash,
		InputHashes:  map[string]string{watchlist.Path: watchlist.ContentHash},
		Counts: contracts.RunCounts{
			Watchlist:    result.Universe.TotalCount,
			Universe:     len(result.Symbols),
			Excluded:     len(result.Universe.Excluded),
			MissingFiles: len(result.Universe.Missing),
			Loaded:       snapshot.LoadedSymbols,
			Eligible:     s3_gates.CountEligible(gates),
			Scored:       len(result.Scored),
		},
		Quality:      snapshot,
		GateFailures: s3_gates.Summarize(gates),
	}

	for _, s := range result.Symbols {
		if s.Load != nil {
			m.InputHashes[s.Load.Path] = s.Load.ContentHash
		}
	}

	m.Lag = lagSummary(result.Symbols, o.config.Gates.MaxLagDays)
	if frontier, ok := DataFrontier(loaded); ok {
		m.Lag.DataFrontier = null.TimeFrom(frontier)
	}
	return m
}

// lagSummary computes worst/median lag_days across symbols with data.
// Ties on the worst lag go to the smallest symbol.
func lagSummary(symbols []contracts.SymbolResult, maxLag int) contracts.LagSummary {
	summary := contracts.LagSummary{MaxLagAllowed: maxLag}

	lags := make([]int64, 0, len(symbols))
	for _, s := range symbols {
		if s.Gate.Stale {
			summary.StaleSymbols++
		}
		lag := s.Features.LagDays
		if !lag.Valid {
			continue
		}
		lags = append(lags, lag.Int64)
		if !summary.WorstLagDays.Valid || lag.Int64 > summary.WorstLagDays.Int64 {
			summary.WorstLagDays = lag
			summary.WorstSymbol = s.Member.Symbol
		}
	}
	if len(lags) == 0 {
		return summary
	}

	sort.Slice(lags, func(i, j int) bool { return lags[i] < lags[j] })
	mid := len(lags) / 2
	if len(lags)%2 == 1 {
		summary.MedianLagDays = null.FloatFrom(float64(lags[mid]))
	} else {
		summary.MedianLagDays = null.FloatFrom(float64(lags[mid-1]+lags[mid]) / 2)
	}
	return summary
}

func errorText(err error) string {
	if err == nil {
		return "not loaded"
	}
	return err.Error()
}
