// Package metrics exposes Prometheus instruments for the artifact server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks artifact distribution and analytics ingestion.
type Metrics struct {
	ArtifactFetches *prometheus.CounterVec
	ArtifactReloads *prometheus.CounterVec
	ArtifactRecords prometheus.Gauge
	EventsIngested  *prometheus.CounterVec
	EventsRejected  prometheus.Counter
	RPCDuration     *prometheus.HistogramVec
	registry        *prometheus.Registry
}

// New creates a Metrics instance registered on its own registry, so several
// servers (and tests) can coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		ArtifactFetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gophcheck_artifact_fetches_total",
			Help: "Artifact downloads by transport (http, grpc)",
		}, []string{"transport"}),
		ArtifactReloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gophcheck_artifact_reloads_total",
			Help: "Artifact reload attempts by outcome (ok, rejected)",
		}, []string{"outcome"}),
		ArtifactRecords: f.NewGauge(prometheus.GaugeOpts{
			Name: "gophcheck_artifact_records",
			Help: "Number of records in the artifact currently served",
		}),
		EventsIngested: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gophcheck_events_ingested_total",
			Help: "Analytics events stored, by check result",
		}, []string{"result"}),
		EventsRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "gophcheck_events_rejected_total",
			Help: "Analytics events refused by validation",
		}),
		RPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gophcheck_rpc_duration_seconds",
			Help:    "Duration of gRPC calls by method and status code",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "code"}),
		registry: reg,
	}
}

// Registry is the gatherer backing /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) IncArtifactFetch(transport string) {
	m.ArtifactFetches.WithLabelValues(transport).Inc()
}

// ObserveReload records a reload attempt; records is ignored when ok is false.
func (m *Metrics) ObserveReload(ok bool, records int) {
	if !ok {
		m.ArtifactReloads.WithLabelValues("rejected").Inc()
		return
	}
	m.ArtifactReloads.WithLabelValues("ok").Inc()
	m.ArtifactRecords.Set(float64(records))
}

func (m *Metrics) IncEventIngested(result string) {
	m.EventsIngested.WithLabelValues(result).Inc()
}

func (m *Metrics) IncEventRejected() {
	m.EventsRejected.Inc()
}

// ObserveRPC records the duration of a gRPC call.
// Call with time.Now() at the start of the call.
func (m *Metrics) ObserveRPC(method, code string, start time.Time) {
	m.RPCDuration.WithLabelValues(method, code).Observe(time.Since(start).Seconds())
}
