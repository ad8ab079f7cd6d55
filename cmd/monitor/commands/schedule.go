package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/api"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/api/handlers"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/metrics"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/scheduler"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/scheduler/jobs"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "cron 기반 주기 실행 (frontier anchor)",
	Long: `스케줄러 데몬을 시작합니다. 매 실행은 frontier anchor로 파이프라인을 돌리고
산출물을 갱신합니다. 이전 실행이 끝나지 않았으면 해당 회차는 건너뜁니다.

Cron 형식 (초 포함 6필드):
  "0 30 18 * * 1-5"  평일 18:30
  "@every 1h"

Example:
  go run ./cmd/monitor schedule
  go run ./cmd/monitor schedule --cron "0 0 7 * * *" --now
  go run ./cmd/monitor schedule --serve --port 8089`,
	RunE: runSchedule,
}

var (
	scheduleCron    string
	scheduleNow     bool
	scheduleServe   bool
	scheduleRetries int
)

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "cron expression with seconds (default: MONITOR_SCHEDULE)")
	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", false, "run once immediately after start")
	scheduleCmd.Flags().BoolVar(&scheduleServe, "serve", false, "also serve artifacts and live metrics")
	scheduleCmd.Flags().IntVar(&scheduleRetries, "retries", 1, "retries per failed run")
	scheduleCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 when --serve (default: MONITOR_SERVE_PORT)")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	if scheduleCron != "" {
		a.cfg.Schedule = scheduleCron
	}
	if servePort != "" {
		a.cfg.ServePort = servePort
	}

	base, err := a.baseRunConfig()
	if err != nil {
		return err
	}

	rec := a.openRecorder(context.Background())
	defer rec.Close()

	m := metrics.New()
	job := jobs.NewMonitorJob(a.newRunner(m, rec), base, a.cfg.Schedule, a.log)

	sched := scheduler.New(a.log, scheduler.WithRetries(scheduleRetries, time.Minute))
	if err := sched.AddJob(job); err != nil {
		return err
	}
	sched.Start()

	var server *api.Server
	if scheduleServe {
		h := handlers.NewArtifactHandler(a.cfg.Paths.OutDir, rec, a.log)
		server = startServer(a, h, m.Handler())
	}

	if scheduleNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	next, _ := sched.NextRun(job.Name())
	PrintHeader(out, "Scheduler", [][2]string{
		{"Job", job.Name()},
		{"Cron", job.Schedule()},
		{"Next run", next.Format(time.RFC3339)},
		{"Out dir", a.cfg.Paths.OutDir},
	})
	if server != nil {
		fmt.Fprintf(out, "  Serving on http://localhost:%s\n", a.cfg.ServePort)
	}
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	waitForSignal()

	sched.Stop()
	for name, stats := range sched.GetJobStats() {
		a.log.WithFields(map[string]interface{}{
			"job":     name,
			"runs":    stats.TotalRuns,
			"success": stats.SuccessCount,
			"failed":  stats.FailureCount,
			"skipped": stats.SkippedCount,
		}).Info("Scheduler job summary")
	}

	if server != nil {
		return shutdownServer(a, server)
	}
	return nil
}
