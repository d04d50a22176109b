// Package telemetry exposes integration and ephemeris metrics to Prometheus.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kjnapes/spacerocks/pkg/astronomy/nbody"
)

const namespace = "spacerocks"

// MetricsCollector records integrator steps, ephemeris lookups and cache use
type MetricsCollector struct {
	registry *prometheus.Registry

	stepsTotal     *prometheus.CounterVec
	rejectedTotal  *prometheus.CounterVec
	halvingsTotal  *prometheus.CounterVec
	iterations     *prometheus.HistogramVec
	timestep       *prometheus.GaugeVec
	bodies         prometheus.Gauge
	lookupDuration *prometheus.HistogramVec
	lookupsTotal   *prometheus.CounterVec
	cacheTotal     *prometheus.CounterVec
}

func NewMetricsCollector() *MetricsCollector {
	m := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "integrator_steps_total",
				Help:      "Accepted integrator steps",
			},
			[]string{"integrator"},
		),
		rejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "integrator_rejected_steps_total",
				Help:      "Trial steps rejected by the timestep controller",
			},
			[]string{"integrator"},
		),
		halvingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "integrator_halvings_total",
				Help:      "Timestep halvings after a non-converging predictor-corrector",
			},
			[]string{"integrator"},
		),
		iterations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "integrator_iterations",
				Help:      "Predictor-corrector passes per accepted step",
				Buckets:   prometheus.LinearBuckets(1, 1, 12),
			},
			[]string{"integrator"},
		),
		timestep: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "integrator_timestep_days",
				Help:      "Most recent accepted timestep",
			},
			[]string{"integrator"},
		),
		bodies: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "simulation_bodies",
				Help:      "Bodies in the most recently stepped simulation",
			},
		),
		lookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ephemeris_lookup_duration_seconds",
				Help:      "Time spent resolving a body state",
			},
			[]string{"source"},
		),
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ephemeris_lookups_total",
				Help:      "Body state lookups by outcome",
			},
			[]string{"source", "outcome"},
		),
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ephemeris_cache_requests_total",
				Help:      "Ephemeris cache requests by result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.stepsTotal,
		m.rejectedTotal,
		m.halvingsTotal,
		m.iterations,
		m.timestep,
		m.bodies,
		m.lookupDuration,
		m.lookupsTotal,
		m.cacheTotal,
	)
	return m
}

// Registry is the registry every collector is registered with
func (m *MetricsCollector) Registry() *prometheus.Registry { return m.registry }

// ObserveStep implements nbody.StepObserver
func (m *MetricsCollector) ObserveStep(stats nbody.StepStats, bodies int) {
	m.stepsTotal.WithLabelValues(stats.Integrator).Inc()
	m.rejectedTotal.WithLabelValues(stats.Integrator).Add(float64(stats.Rejected))
	m.halvingsTotal.WithLabelValues(stats.Integrator).Add(float64(stats.Halvings))
	m.iterations.WithLabelValues(stats.Integrator).Observe(float64(stats.Iterations))
	m.timestep.WithLabelValues(stats.Integrator).Set(stats.Timestep)
	m.bodies.Set(float64(bodies))
}

func (m *MetricsCollector) ObserveLookup(source string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.lookupsTotal.WithLabelValues(source, outcome).Inc()
	m.lookupDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

func (m *MetricsCollector) ObserveCache(hit bool) {
	if hit {
		m.cacheTotal.WithLabelValues("hit").Inc()
		return
	}
	m.cacheTotal.WithLabelValues("miss").Inc()
}

// Handler serves the collector's registry in the Prometheus text format
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ServeMetrics serves /metrics on addr until ctx is done
func (m *MetricsCollector) ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
