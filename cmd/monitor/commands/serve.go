package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/api"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "산출물 조회 API 서버 시작 (read-only)",
	Long: `최근 산출물(out dir)을 읽기 전용으로 제공하는 HTTP 서버를 시작합니다.

Endpoints:
  GET  /health                      - Health check
  GET  /metrics                     - 최근 run의 metrics.prom
  GET  /api/runs                    - 실행 이력
  GET  /api/runs/latest/manifest    - manifest.json
  GET  /api/runs/latest/eligible    - eligible.csv (JSON, ?format=csv)
  GET  /api/runs/latest/scored      - scored.csv (JSON, ?format=csv)
  GET  /api/symbols/{symbol}        - 종목별 결과 + 이력

Example:
  go run ./cmd/monitor serve
  go run ./cmd/monitor serve --port 8089`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (default: MONITOR_SERVE_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	if servePort != "" {
		a.cfg.ServePort = servePort
	}

	rec := a.openRecorder(context.Background())
	defer rec.Close()

	h := handlers.NewArtifactHandler(a.cfg.Paths.OutDir, rec, a.log)
	server := startServer(a, h, http.HandlerFunc(h.GetMetrics))

	fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Server running on http://localhost:%s\n", a.cfg.ServePort)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	waitForSignal()
	return shutdownServer(a, server)
}

// startServer runs the artifact server in the background
func startServer(a *app, h *handlers.ArtifactHandler, metricsHandler http.Handler) *api.Server {
	router := api.NewRouter(h, metricsHandler, a.log)
	server := api.New(a.cfg, a.log, router)

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()
	return server
}

func shutdownServer(a *app, server *api.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	a.log.Info("Server stopped")
	return nil
}

func waitForSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
}

