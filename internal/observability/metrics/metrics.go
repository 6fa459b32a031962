package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "campus_energy_"

	resultSuccess = "success"
	resultError   = "error"
	resultSkipped = "skipped"
)

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
	ResultSkipped = resultSkipped

	RowsAccepted = "accepted"
	RowsImputed  = "imputed"
	RowsSkipped  = "skipped"
)

// Metrics bundles the metrics of one pipeline run in its own registry.
type Metrics struct {
	registry *prometheus.Registry

	SourcesTotal   *prometheus.CounterVec
	RowsTotal      *prometheus.CounterVec
	ArtifactsTotal *prometheus.CounterVec
	ExportsTotal   *prometheus.CounterVec
	RunDuration    prometheus.Gauge
	Buildings      prometheus.Gauge
	Readings       prometheus.Gauge
	CampusTotalKWh prometheus.Gauge
	LastRunUnix    prometheus.Gauge
}

// New constructs and registers the run metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SourcesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sources_total",
				Help: "Total input sources by result",
			},
			[]string{"result"},
		),
		RowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_total",
				Help: "Total input rows by outcome",
			},
			[]string{"outcome"},
		),
		ArtifactsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "artifacts_total",
				Help: "Total output artifacts by name and result",
			},
			[]string{"artifact", "result"},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Total exports by sink and result",
			},
			[]string{"sink", "result"},
		),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "run_duration_seconds",
			Help: "Duration of the last run in seconds",
		}),
		Buildings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "buildings",
			Help: "Buildings tracked in the last run",
		}),
		Readings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "readings",
			Help: "Valid readings aggregated in the last run",
		}),
		CampusTotalKWh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "campus_total_kwh",
			Help: "Campus consumption computed by the last run",
		}),
		LastRunUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "last_run_timestamp_seconds",
			Help: "Unix time of the last run",
		}),
	}
	m.registry.MustRegister(
		m.SourcesTotal,
		m.RowsTotal,
		m.ArtifactsTotal,
		m.ExportsTotal,
		m.RunDuration,
		m.Buildings,
		m.Readings,
		m.CampusTotalKWh,
		m.LastRunUnix,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveSource increments the source counter.
func (m *Metrics) ObserveSource(result string) {
	if m == nil {
		return
	}
	if result == "" {
		result = resultSuccess
	}
	m.SourcesTotal.WithLabelValues(result).Inc()
}

// AddRows adds row outcomes.
func (m *Metrics) AddRows(accepted, imputed, skipped int) {
	if m == nil {
		return
	}
	m.RowsTotal.WithLabelValues(RowsAccepted).Add(float64(accepted))
	m.RowsTotal.WithLabelValues(RowsImputed).Add(float64(imputed))
	m.RowsTotal.WithLabelValues(RowsSkipped).Add(float64(skipped))
}

// ObserveArtifact increments the artifact counter.
func (m *Metrics) ObserveArtifact(name, result string) {
	if m == nil {
		return
	}
	if name == "" {
		name = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	m.ArtifactsTotal.WithLabelValues(name, result).Inc()
}

// ObserveExport increments the export counter.
func (m *Metrics) ObserveExport(sink, result string) {
	if m == nil {
		return
	}
	if sink == "" {
		sink = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	m.ExportsTotal.WithLabelValues(sink, result).Inc()
}

// ObserveRun records the figures of a finished run.
func (m *Metrics) ObserveRun(buildings, readings int, campusTotal float64, finishedAt time.Time, duration time.Duration) {
	if m == nil {
		return
	}
	m.Buildings.Set(float64(buildings))
	m.Readings.Set(float64(readings))
	m.CampusTotalKWh.Set(campusTotal)
	m.LastRunUnix.Set(float64(finishedAt.Unix()))
	m.RunDuration.Set(duration.Seconds())
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
// The file is written to a temp path and renamed into place.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
