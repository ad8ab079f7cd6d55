package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/audit"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/metrics"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/report"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

// Runner executes one full monitor cycle: S0~S4, S5 publish, history record
type Runner struct {
	orchestrator *Orchestrator
	writer       *report.Writer
	recorder     audit.Recorder
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

// NewRunner wires a Runner. recorder and m may be nil.
func NewRunner(o *Orchestrator, w *report.Writer, recorder audit.Recorder, m *metrics.Metrics, log *logger.Logger) *Runner {
	if recorder == nil {
		recorder = audit.Noop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		orchestrator: o,
		writer:       w,
		recorder:     recorder,
		metrics:      m,
		logger:       log,
	}
}

// Execute runs the pipeline and publishes its artifacts.
// A history recording failure is logged, never returned.
func (r *Runner) Execute(ctx context.Context, rc RunConfig) (*contracts.RunResult, *report.Artifacts, error) {
	result, err := r.orchestrator.Run(ctx, rc)
	if err != nil {
		r.failed()
		return nil, nil, err
	}

	start := time.Now()
	artifacts, err := r.writer.Write(result)
	d := time.Since(start)
	result.StageDurations[contracts.StageReport] = d
	if r.metrics != nil {
		r.metrics.ObserveStage(contracts.StageReport, d)
	}
	if err != nil {
		r.failed()
		return result, nil, fmt.Errorf("S5 failed: %w", err)
	}

	if err := r.recorder.RecordRun(ctx, result); err != nil {
		r.logger.WithError(err).WithField("run_id", result.Manifest.RunID).Warn("failed to record run history")
	}

	return result, artifacts, nil
}

func (r *Runner) failed() {
	if r.metrics != nil {
		r.metrics.ObserveFailure()
	}
}
