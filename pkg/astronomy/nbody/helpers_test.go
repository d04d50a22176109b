package nbody

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kjnapes/spacerocks/pkg/astronomy/astrotime"
	"github.com/kjnapes/spacerocks/pkg/astronomy/constants"
	"github.com/kjnapes/spacerocks/pkg/astronomy/coordinates"
)

var j2000 = astrotime.FromJD(2451545.0, astrotime.TDB)

func newTestSimulation(t *testing.T, integrator Integrator) *Simulation {
	t.Helper()
	sim := NewSimulation()
	require.NoError(t, sim.SetEpoch(j2000))
	if integrator != nil {
		sim.SetIntegrator(integrator)
	}
	return sim
}

func testBody(name string, x, y, z, vx, vy, vz, mass float64) Body {
	b := FromXYZ(name, x, y, z, vx, vy, vz, j2000, coordinates.ECLIPJ2000, coordinates.SSB())
	if mass != 0 {
		b.SetMass(mass)
	}
	return b
}

// circularVelocity about a unit solar mass at distance r
func circularVelocity(r float64) float64 {
	return math.Sqrt(constants.GravitationalConstant / r)
}

// sunAndGiants adds a sun and two giant planets on circular, coplanar orbits
func sunAndGiants(t *testing.T, sim *Simulation) {
	t.Helper()
	require.NoError(t, sim.Add(testBody("sun", 0, 0, 0, 0, 0, 0, 1)))
	require.NoError(t, sim.Add(testBody("jupiter", 5.2, 0, 0, 0, circularVelocity(5.2), 0, 9.547919e-4)))
	require.NoError(t, sim.Add(testBody("saturn", 0, -9.58, 0.1, circularVelocity(9.58), 0, 0, 2.858860e-4)))
}
