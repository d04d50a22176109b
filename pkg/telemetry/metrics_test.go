package telemetry

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjnapes/spacerocks/pkg/astronomy/nbody"
)

func TestObserveStep(t *testing.T) {
	m := NewMetricsCollector()

	m.ObserveStep(nbody.StepStats{Integrator: "ias15", Timestep: 4.5, Iterations: 3, Rejected: 1}, 5)
	m.ObserveStep(nbody.StepStats{Integrator: "ias15", Timestep: 6, Iterations: 2, Halvings: 2}, 5)
	m.ObserveStep(nbody.StepStats{Integrator: "leapfrog", Timestep: 1, Iterations: 1}, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.stepsTotal.WithLabelValues("ias15")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejectedTotal.WithLabelValues("ias15")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.halvingsTotal.WithLabelValues("ias15")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.timestep.WithLabelValues("ias15")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bodies))
	assert.Equal(t, 2, testutil.CollectAndCount(m.iterations))
}

func TestObserveLookupAndCache(t *testing.T) {
	m := NewMetricsCollector()

	m.ObserveLookup("horizons", nil, 120*time.Millisecond)
	m.ObserveLookup("horizons", errors.New("boom"), time.Second)
	m.ObserveCache(true)
	m.ObserveCache(true)
	m.ObserveCache(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookupsTotal.WithLabelValues("horizons", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookupsTotal.WithLabelValues("horizons", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheTotal.WithLabelValues("miss")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetricsCollector()
	m.ObserveStep(nbody.StepStats{Integrator: "leapfrog", Timestep: 1, Iterations: 1}, 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `spacerocks_integrator_steps_total{integrator="leapfrog"} 1`))
	assert.Contains(t, string(body), "spacerocks_simulation_bodies 3")
}

func TestCollectorFeedsFromSimulation(t *testing.T) {
	m := NewMetricsCollector()
	sim := nbody.NewSimulation()
	sim.Observer = m
	sim.SetIntegrator(nbody.NewLeapfrog(1))

	sun := nbody.FromXYZ("sun", 0, 0, 0, 0, 0, 0, sim.Epoch, sim.ReferencePlane, sim.Origin)
	sun.SetMass(1)
	require.NoError(t, sim.Add(sun))
	require.NoError(t, sim.Add(nbody.FromXYZ("rock", 1, 0, 0, 0, 0.017, 0, sim.Epoch, sim.ReferencePlane, sim.Origin)))

	require.NoError(t, sim.Integrate(sim.Epoch.Add(10)))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.stepsTotal.WithLabelValues("leapfrog")))
}
