package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/audit"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/report"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s1_universe"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

// ArtifactHandler serves the latest published run artifacts (read-only)
// ⭐ SSOT: 산출물 조회 API 핸들러는 이 구조체에서만
type ArtifactHandler struct {
	outDir   string
	recorder audit.Recorder
	logger   *logger.Logger
}

// NewArtifactHandler creates a handler over outDir. recorder may be nil.
func NewArtifactHandler(outDir string, recorder audit.Recorder, log *logger.Logger) *ArtifactHandler {
	if recorder == nil {
		recorder = audit.Noop{}
	}
	return &ArtifactHandler{
		outDir:   outDir,
		recorder: recorder,
		logger:   log,
	}
}

// GetManifest returns manifest.json of the latest run
// GET /api/runs/latest/manifest
func (h *ArtifactHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(filepath.Join(h.outDir, report.FileManifest))
	if err != nil {
		h.fileError(w, report.FileManifest, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetEligible returns eligible.csv
// GET /api/runs/latest/eligible[?format=csv]
func (h *ArtifactHandler) GetEligible(w http.ResponseWriter, r *http.Request) {
	h.serveTable(w, r, report.FileEligible)
}

// GetScored returns scored.csv
// GET /api/runs/latest/scored[?format=csv]
func (h *ArtifactHandler) GetScored(w http.ResponseWriter, r *http.Request) {
	h.serveTable(w, r, report.FileScored)
}

// GetMetrics serves metrics.prom of the latest run in the Prometheus text format
// GET /metrics
func (h *ArtifactHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(filepath.Join(h.outDir, report.FileMetrics))
	if err != nil {
		h.fileError(w, report.FileMetrics, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// SymbolResponse is the per-symbol view across artifacts and history
type SymbolResponse struct {
	Symbol   string               `json:"symbol"`
	Eligible map[string]string    `json:"eligible"`
	Scored   map[string]string    `json:"scored,omitempty"`
	History  []audit.SymbolRecord `json:"history"`
}

// GetSymbol returns one symbol's rows from the latest run plus its recorded history
// GET /api/symbols/{symbol}
func (h *ArtifactHandler) GetSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := s1_universe.NormalizeSymbol(mux.Vars(r)["symbol"])
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	eligible, err := h.readTable(report.FileEligible)
	if err != nil {
		h.fileError(w, report.FileEligible, err)
		return
	}
	row, ok := findRow(eligible, symbol)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("symbol %s not in latest run", symbol))
		return
	}

	resp := SymbolResponse{Symbol: symbol, Eligible: row}

	// scored.csv는 eligible 종목만 포함
	if scored, err := h.readTable(report.FileScored); err == nil {
		if s, ok := findRow(scored, symbol); ok {
			resp.Scored = s
		}
	}

	history, err := h.recorder.SymbolHistory(r.Context(), symbol, queryInt(r, "limit", 20))
	if err != nil {
		h.logger.WithError(err).Warn("Failed to load symbol history")
	}
	if history == nil {
		history = []audit.SymbolRecord{}
	}
	resp.History = history

	respondJSON(w, http.StatusOK, resp)
}

// ListRuns returns recorded runs, newest first
// GET /api/runs?limit=N
func (h *ArtifactHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.recorder.ListRuns(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve run history")
		return
	}
	if runs == nil {
		runs = []audit.RunRecord{}
	}
	respondJSON(w, http.StatusOK, runs)
}

func (h *ArtifactHandler) serveTable(w http.ResponseWriter, r *http.Request, name string) {
	if r.URL.Query().Get("format") == "csv" {
		data, err := os.ReadFile(filepath.Join(h.outDir, name))
		if err != nil {
			h.fileError(w, name, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}

	rows, err := h.readTable(name)
	if err != nil {
		h.fileError(w, name, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// readTable parses an artifact CSV into header-keyed rows
func (h *ArtifactHandler) readTable(name string) ([]map[string]string, error) {
	f, err := os.Open(filepath.Join(h.outDir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	rows := make([]map[string]string, 0, len(records))
	if len(records) == 0 {
		return rows, nil
	}
	header := records[0]
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (h *ArtifactHandler) fileError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, os.ErrNotExist) {
		respondError(w, http.StatusNotFound, "no published run: "+name+" not found")
		return
	}
	h.logger.WithError(err).WithField("file", name).Error("Failed to read artifact")
	respondError(w, http.StatusInternalServerError, "Failed to read "+name)
}

func findRow(rows []map[string]string, symbol string) (map[string]string, bool) {
	for _, row := range rows {
		if strings.EqualFold(row["symbol"], symbol) {
			return row, true
		}
	}
	return nil, false
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
