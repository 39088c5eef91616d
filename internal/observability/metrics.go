// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"math"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/oracle"
	"dyad-exchange-lab/internal/simulation"
)

// Metrics holds all Prometheus metrics for the application.
// Each instance owns its registry, so independent runs never collide.
type Metrics struct {
	registry *prometheus.Registry

	// Simulation metrics
	Encounters     prometheus.Counter
	TradesExecuted prometheus.Counter
	NoCandidate    prometheus.Counter
	OracleSolves   prometheus.Counter
	MinUtilityGain prometheus.Histogram

	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

var _ simulation.Observer = (*Metrics)(nil)

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "dyad_exchange"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Encounters: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "encounters_total",
			Help:      "Total number of bilateral encounters",
		}),
		TradesExecuted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trades_executed_total",
			Help:      "Total number of executed trades",
		}),
		NoCandidate: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "no_candidate_total",
			Help:      "Total number of encounters without a strictly improving trade",
		}),
		OracleSolves: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "solves_total",
			Help:      "Total number of two-good equilibrium solves",
		}),
		MinUtilityGain: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "min_utility_gain",
			Help:      "Smaller realized utility gain of the two sides of each trade",
			Buckets:   prometheus.ExponentialBuckets(1e-9, 10, 10),
		}),

		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of runs by status",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Run execution duration in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Registry returns the registry holding m's collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OnEncounter implements simulation.Observer.
func (m *Metrics) OnEncounter(int) {
	m.Encounters.Inc()
}

// OnTrade implements simulation.Observer.
func (m *Metrics) OnTrade(ev domain.TradeEvent) {
	m.TradesExecuted.Inc()
	m.MinUtilityGain.Observe(math.Min(ev.DeltaUI, ev.DeltaUJ))
}

// OnNoCandidate implements simulation.Observer.
func (m *Metrics) OnNoCandidate(int) {
	m.NoCandidate.Inc()
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(status string, durationSeconds float64) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(durationSeconds)
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// instrumentedOracle counts solves and delegates to the wrapped oracle.
type instrumentedOracle struct {
	next   oracle.ParetoOracle
	solves prometheus.Counter
}

// InstrumentOracle wraps o so every solve is counted in m.
func InstrumentOracle(o oracle.ParetoOracle, m *Metrics) oracle.ParetoOracle {
	return &instrumentedOracle{next: o, solves: m.OracleSolves}
}

func (o *instrumentedOracle) SolveTwoGoodExchange(d oracle.Dyad, minQty float64, iters int) oracle.DyadExchange {
	o.solves.Inc()
	return o.next.SolveTwoGoodExchange(d, minQty, iters)
}
