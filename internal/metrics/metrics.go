package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
)

const namespace = "monitor"

// Metrics holds the Prometheus collectors of the monitor.
// Per-run gauges are reset on every ObserveRun; counters accumulate
// across runs of one process (schedule / serve).
type Metrics struct {
	registry *prometheus.Registry

	StageDuration *prometheus.GaugeVec
	Runs          *prometheus.CounterVec

	Symbols         *prometheus.GaugeVec
	GateFailures    *prometheus.GaugeVec
	RiskFlags       *prometheus.GaugeVec
	RiskLevels      *prometheus.GaugeVec
	ScoreHistogram  prometheus.Histogram
	WorstLagDays    prometheus.Gauge
	MedianLagDays   prometheus.Gauge
	QualityScore    prometheus.Gauge
	AnchorTimestamp prometheus.Gauge
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		StageDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each pipeline stage in the last run",
			},
			[]string{"stage"},
		),

		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Pipeline runs by status",
			},
			[]string{"status"},
		),

		Symbols: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "symbols",
				Help:      "Symbols per pipeline state in the last run",
			},
			[]string{"state"},
		),

		GateFailures: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "gate_failures",
				Help:      "Symbols failing each gate in the last run",
			},
			[]string{"reason"},
		),

		RiskFlags: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "risk_flags",
				Help:      "Scored symbols carrying each risk flag in the last run",
			},
			[]string{"flag"},
		),

		RiskLevels: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "risk_levels",
				Help:      "Scored symbols per risk level in the last run",
			},
			[]string{"level"},
		),

		ScoreHistogram: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "score",
				Help:      "Distribution of monitor scores (1-10)",
				Buckets:   prometheus.LinearBuckets(1, 1, 10),
			},
		),

		WorstLagDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worst_lag_days",
			Help:      "Largest lag_days across loaded symbols",
		}),

		MedianLagDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "median_lag_days",
			Help:      "Median lag_days across loaded symbols",
		}),

		QualityScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "data_quality_score",
			Help:      "S0 data quality score (0-1)",
		}),

		AnchorTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "as_of_timestamp_seconds",
			Help:      "Anchor date of the last run as unix seconds",
		}),
	}

	m.registry.MustRegister(
		m.StageDuration,
		m.Runs,
		m.Symbols,
		m.GateFailures,
		m.RiskFlags,
		m.RiskLevels,
		m.ScoreHistogram,
		m.WorstLagDays,
		m.MedianLagDays,
		m.QualityScore,
		m.AnchorTimestamp,
	)

	return m
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStage records one stage duration
func (m *Metrics) ObserveStage(stage contracts.Stage, d time.Duration) {
	m.StageDuration.WithLabelValues(stage.ShortName()).Set(d.Seconds())
}

// ObserveFailure counts a run that aborted
func (m *Metrics) ObserveFailure() {
	m.Runs.WithLabelValues("failed").Inc()
}

// ObserveRun replaces the per-run gauges with the given run
func (m *Metrics) ObserveRun(manifest *contracts.RunManifest, scored []contracts.ScoreRow) {
	m.Runs.WithLabelValues("ok").Inc()

	m.Symbols.Reset()
	m.Symbols.WithLabelValues("watchlist").Set(float64(manifest.Counts.Watchlist))
	m.Symbols.WithLabelValues("universe").Set(float64(manifest.Counts.Universe))
	m.Symbols.WithLabelValues("missing_file").Set(float64(manifest.Counts.MissingFiles))
	m.Symbols.WithLabelValues("loaded").Set(float64(manifest.Counts.Loaded))
	m.Symbols.WithLabelValues("eligible").Set(float64(manifest.Counts.Eligible))
	m.Symbols.WithLabelValues("scored").Set(float64(manifest.Counts.Scored))

	m.GateFailures.Reset()
	for _, reason := range contracts.GateOrder() {
		m.GateFailures.WithLabelValues(string(reason)).Set(float64(manifest.GateFailures[reason]))
	}

	m.RiskFlags.Reset()
	m.RiskLevels.Reset()
	for _, level := range []contracts.RiskLevel{contracts.RiskGreen, contracts.RiskAmber, contracts.RiskRed} {
		m.RiskLevels.WithLabelValues(string(level)).Set(0)
	}
	for _, row := range scored {
		m.ScoreHistogram.Observe(float64(row.MonitorScore))
		m.RiskLevels.WithLabelValues(string(row.RiskLevel)).Inc()
		for _, f := range row.RiskFlags {
			m.RiskFlags.WithLabelValues(string(f)).Inc()
		}
	}

	m.WorstLagDays.Set(float64(manifest.Lag.WorstLagDays.Int64))
	m.MedianLagDays.Set(manifest.Lag.MedianLagDays.Float64)
	if manifest.Quality != nil {
		m.QualityScore.Set(manifest.Quality.QualityScore)
	}
	if asOf, err := contracts.ParseDate(manifest.AsOfDate); err == nil {
		m.AnchorTimestamp.Set(float64(asOf.Unix()))
	}
}

// WriteTextfile writes the registry in the node-exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Handler serves the registry over HTTP
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
