package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/pipeline"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

// DefaultSchedule reruns the monitor on weekday evenings (with seconds)
const DefaultSchedule = "0 30 18 * * 1-5"

// MonitorJob reruns the full pipeline against the data frontier
// ⭐ SSOT: 모니터 재실행 스케줄은 이 Job에서만
type MonitorJob struct {
	runner   *pipeline.Runner
	base     pipeline.RunConfig
	schedule string
	logger   *logger.Logger
}

// NewMonitorJob creates a monitor job. base supplies paths and workers;
// the anchor, run id and run time are reset on every run.
func NewMonitorJob(runner *pipeline.Runner, base pipeline.RunConfig, schedule string, log *logger.Logger) *MonitorJob {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &MonitorJob{
		runner:   runner,
		base:     base,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *MonitorJob) Name() string {
	return "watchlist_monitor"
}

// Schedule returns the cron schedule
func (j *MonitorJob) Schedule() string {
	return j.schedule
}

// Run executes one pipeline run with the frontier anchor
func (j *MonitorJob) Run(ctx context.Context) error {
	rc := j.base
	rc.AsOf = time.Time{}
	rc.AnchorPolicy = strategyconfig.AnchorFrontier
	rc.RunID = ""
	rc.RunTime = time.Time{}

	result, artifacts, err := j.runner.Execute(ctx, rc)
	if err != nil {
		return fmt.Errorf("scheduled run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":   result.Manifest.RunID,
		"as_of":    result.Manifest.AsOfDate,
		"eligible": result.Manifest.Counts.Eligible,
		"scored":   result.Manifest.Counts.Scored,
		"files":    len(artifacts.Files),
	}).Info("Scheduled monitor run completed")

	return nil
}
