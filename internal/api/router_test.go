package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/api/handlers"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/metrics"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/report"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

func newTestRouter(t *testing.T, publish bool) http.Handler {
	t.Helper()
	dir := t.TempDir()
	if publish {
		files := map[string]string{
			report.FileManifest: `{"run_id":"run-1","as_of_date":"2024-02-09"}`,
			report.FileEligible: "symbol,eligible,gate_fail_reasons,theme_bucket,asset_type\n" +
				"MISS,False,MISSING_OHLC|HISTORY_LT_MIN,x,ETF\n" +
				"SPY,True,,broad,ETF\n",
			report.FileScored:  "symbol,monitor_score,rank\nSPY,7,1\n",
			report.FileMetrics: "# TYPE monitor_runs_total counter\nmonitor_runs_total{status=\"ok\"} 1\n",
		}
		for name, content := range files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
		}
	}

	h := handlers.NewArtifactHandler(dir, nil, logger.Nop())
	return NewRouter(h, metrics.New().Handler(), logger.Nop())
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouter_Health(t *testing.T) {
	rec := get(t, newTestRouter(t, false), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestRouter_Artifacts(t *testing.T) {
	r := newTestRouter(t, true)

	tests := []struct {
		name     string
		path     string
		status   int
		contains string
	}{
		{"manifest", "/api/runs/latest/manifest", http.StatusOK, `"run_id":"run-1"`},
		{"eligible json", "/api/runs/latest/eligible", http.StatusOK, `"gate_fail_reasons":"MISSING_OHLC|HISTORY_LT_MIN"`},
		{"scored csv", "/api/runs/latest/scored?format=csv", http.StatusOK, "SPY,7,1"},
		{"symbol scored", "/api/symbols/spy", http.StatusOK, `"monitor_score":"7"`},
		{"symbol ineligible", "/api/symbols/MISS", http.StatusOK, `"eligible":"False"`},
		{"symbol unknown", "/api/symbols/NOPE", http.StatusNotFound, "not in latest run"},
		{"runs", "/api/runs", http.StatusOK, "[]"},
		{"metrics", "/metrics", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, r, tt.path)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestRouter_SymbolResponse(t *testing.T) {
	rec := get(t, newTestRouter(t, true), "/api/symbols/MISS")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.SymbolResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MISS", resp.Symbol)
	assert.Nil(t, resp.Scored, "ineligible symbols are not in scored.csv")
	assert.NotNil(t, resp.History)
}

func TestRouter_PublishedMetrics(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, report.FileMetrics), []byte("monitor_runs_total{status=\"ok\"} 1\n"), 0o644))

	h := handlers.NewArtifactHandler(dir, nil, logger.Nop())
	rec := get(t, NewRouter(h, http.HandlerFunc(h.GetMetrics), logger.Nop()), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "monitor_runs_total")
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestRouter_NoPublishedRun(t *testing.T) {
	r := newTestRouter(t, false)
	for _, path := range []string{"/api/runs/latest/manifest", "/api/runs/latest/scored", "/api/symbols/SPY"} {
		rec := get(t, r, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.True(t, strings.Contains(rec.Body.String(), "no published run"), path)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, true).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/runs/latest/scored", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
