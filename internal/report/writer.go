package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/metrics"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

// Artifact file names
const (
	FileEligible    = "eligible.csv"
	FileScored      = "scored.csv"
	FileFeatures    = "features.csv"
	FileSummaryMD   = "summary.md"
	FileSummaryHTML = "summary.html"
	FileManifest    = "manifest.json"
	FileMetrics     = "metrics.prom"
)

// Artifacts lists the files published by one Write
type Artifacts struct {
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}

// Writer implements S5: publishes run artifacts all-or-nothing
// ⭐ SSOT: 산출물 파일 쓰기는 여기서만
type Writer struct {
	outDir  string
	config  strategyconfig.Report
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewWriter creates a new report writer. m may be nil (no metrics.prom).
func NewWriter(outDir string, config strategyconfig.Report, m *metrics.Metrics, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.Nop()
	}
	return &Writer{
		outDir:  outDir,
		config:  config,
		metrics: m,
		logger:  log.WithStage(contracts.StageReport.ShortName()),
	}
}

// Write stages every artifact as *.tmp and renames them only after all
// were written. On any failure the temps are removed and the previous
// artifacts stay untouched.
func (w *Writer) Write(result *contracts.RunResult) (*Artifacts, error) {
	if result == nil {
		return nil, fmt.Errorf("write report: nil result")
	}

	stage, err := newStaging(w.outDir)
	if err != nil {
		return nil, err
	}

	if err := w.stageAll(stage, result); err != nil {
		stage.abort()
		return nil, err
	}

	files, err := stage.commit()
	if err != nil {
		stage.abort()
		return nil, err
	}

	w.logger.WithFields(map[string]interface{}{
		"dir":      w.outDir,
		"files":    len(files),
		"eligible": result.Manifest.Counts.Eligible,
		"scored":   result.Manifest.Counts.Scored,
	}).Info("artifacts written")

	return &Artifacts{Dir: w.outDir, Files: files}, nil
}

func (w *Writer) stageAll(stage *staging, result *contracts.RunResult) error {
	f := formatter{precision: int32(w.config.FloatPrecision)}

	names := []string{FileEligible, FileScored}
	if w.config.WriteFeatures {
		names = append(names, FileFeatures)
	}
	names = append(names, FileSummaryMD)
	if w.config.WriteHTML {
		names = append(names, FileSummaryHTML)
	}
	if w.metrics != nil {
		names = append(names, FileMetrics)
	}
	names = append(names, FileManifest)
	result.Manifest.Artifacts = names

	if err := stage.write(FileEligible, func(out io.Writer) error {
		return writeCSV(out, eligibleHeader, f.eligibleRows(result.Symbols))
	}); err != nil {
		return err
	}

	if err := stage.write(FileScored, func(out io.Writer) error {
		return writeCSV(out, scoredHeader, f.scoredRows(result.Scored))
	}); err != nil {
		return err
	}

	if w.config.WriteFeatures {
		if err := stage.write(FileFeatures, func(out io.Writer) error {
			return writeCSV(out, featuresHeader, f.featureRows(result.Symbols))
		}); err != nil {
			return err
		}
	}

	var md bytes.Buffer
	if err := f.summaryMarkdown(&md, result, w.config.TopN); err != nil {
		return fmt.Errorf("build summary: %w", err)
	}
	if err := stage.write(FileSummaryMD, func(out io.Writer) error {
		_, err := out.Write(md.Bytes())
		return err
	}); err != nil {
		return err
	}

	if w.config.WriteHTML {
		title := "Watchlist Monitor " + result.Manifest.AsOfDate
		if err := stage.write(FileSummaryHTML, func(out io.Writer) error {
			return renderHTML(out, title, md.Bytes())
		}); err != nil {
			return err
		}
	}

	if w.metrics != nil {
		w.metrics.ObserveRun(&result.Manifest, result.Scored)
		if err := stage.stageFile(FileMetrics, w.metrics.WriteTextfile); err != nil {
			return err
		}
	}

	return stage.write(FileManifest, func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Manifest)
	})
}

// Path returns the published location of an artifact
func (w *Writer) Path(name string) string {
	return filepath.Join(w.outDir, name)
}
