package nbody

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjnapes/spacerocks/pkg/astronomy/constants"
	astromath "github.com/kjnapes/spacerocks/pkg/astronomy/math"
)

func TestIAS15AdaptsTimestep(t *testing.T) {
	ias := NewIAS15(1)
	sim := newTestSimulation(t, ias)
	require.NoError(t, sim.Add(testBody("sun", 0, 0, 0, 0, 0, 0, 1)))
	require.NoError(t, sim.Add(testBody("rock", 1, 0, 0, 0, circularVelocity(1), 0, 0)))

	for i := 0; i < 5; i++ {
		require.NoError(t, sim.Step())
	}

	// a smooth circular orbit allows steps far longer than a day
	assert.Greater(t, ias.Timestep(), 1.0)
	assert.Greater(t, ias.LastTimestep(), 0.0)
	assert.LessOrEqual(t, ias.Timestep(), 10*ias.LastTimestep())
	assert.True(t, j2000.Before(sim.Epoch))
}

func TestIAS15CoefficientCacheFollowsBodies(t *testing.T) {
	ias := NewIAS15(5)
	sim := newTestSimulation(t, ias)
	sunAndGiants(t, sim)

	_, ok := ias.Coefficients("jupiter")
	assert.False(t, ok)

	require.NoError(t, sim.Step())
	require.NoError(t, sim.Step())
	jupiter, ok := ias.Coefficients("jupiter")
	require.True(t, ok)
	assert.NotEqual(t, CoefficientSeptet{}, jupiter)

	require.NoError(t, sim.Remove("saturn"))
	require.NoError(t, sim.Step())

	_, ok = ias.Coefficients("saturn")
	assert.False(t, ok)
	_, ok = ias.Coefficients("jupiter")
	assert.True(t, ok)
}

func TestIAS15CloneCopiesCache(t *testing.T) {
	ias := NewIAS15(5)
	sim := newTestSimulation(t, ias)
	sunAndGiants(t, sim)
	require.NoError(t, sim.Step())

	c := ias.Clone().(*IAS15)
	before, _ := ias.Coefficients("jupiter")

	other := sim.Clone()
	other.SetIntegrator(c)
	require.NoError(t, other.Step())

	after, _ := ias.Coefficients("jupiter")
	assert.Equal(t, before, after)
	assert.Equal(t, ias.Timestep(), sim.Timestep())
}

func TestIAS15ConvergenceFailureRollsBack(t *testing.T) {
	ias := NewIAS15(1e4)
	ias.MaxRetries = 0
	sim := newTestSimulation(t, ias)

	v := math.Sqrt(constants.GravitationalConstant / 0.01)
	require.NoError(t, sim.Add(testBody("a", -0.005, 0, 0, 0, -v/2, 0, 0.5)))
	require.NoError(t, sim.Add(testBody("b", 0.005, 0, 0, 0, v/2, 0, 0.5)))
	before := sim.Clone()

	err := sim.Step()
	require.ErrorIs(t, err, ErrConvergenceFailure)

	assert.Equal(t, before.Epoch, sim.Epoch)
	for i := range sim.Particles {
		assert.Equal(t, before.Particles[i].Position, sim.Particles[i].Position)
		assert.Equal(t, before.Particles[i].Velocity, sim.Particles[i].Velocity)
		assert.Equal(t, before.Particles[i].Epoch, sim.Particles[i].Epoch)
	}

	// with retries allowed the same step succeeds on a shorter timestep
	ias.MaxRetries = DefaultMaxRetries
	require.NoError(t, sim.Step())
	assert.Less(t, ias.LastStats().Timestep, 1e4)
}

func TestIAS15RejectsInvalidTimestep(t *testing.T) {
	ias := NewIAS15(math.NaN())
	sim := newTestSimulation(t, ias)
	sunAndGiants(t, sim)

	assert.ErrorIs(t, sim.Step(), ErrInvalidTimestep)
	assert.Equal(t, j2000, sim.Epoch)
}

func TestPredictNextResetsOnLargeRatio(t *testing.T) {
	slot := &coefficientSlot{}
	for k := range slot.b {
		slot.b[k].X = float64(k + 1)
		slot.bLast[k].X = float64(k + 1)
	}

	predictNext([]*coefficientSlot{slot}, 25)
	assert.Equal(t, CoefficientSeptet{}, slot.b)
	assert.Equal(t, CoefficientSeptet{}, slot.e)

	// with no earlier prediction the correction term is bLast itself
	slot2 := &coefficientSlot{}
	for k := range slot2.bLast {
		slot2.bLast[k].Y = float64(k + 1)
	}
	predictNext([]*coefficientSlot{slot2}, 1)
	for j := 0; j < 7; j++ {
		var want float64
		for m := j; m < 7; m++ {
			want += binomial[j][m] * float64(m+1)
		}
		want += float64(j + 1)
		assert.InDelta(t, want, slot2.b[j].Y, 1e-12)
	}
}

func TestGFromBInvertsUpdate(t *testing.T) {
	// a constant jerk shows up only in b0, whatever the substep order
	slot := &coefficientSlot{}
	var a0 astromath.Vector3
	for k := 1; k < 8; k++ {
		a := a0
		a.X = gaussRadauH[k] * 3
		updateCoefficients(k, slot, a0, a)
	}
	assert.InDelta(t, 3, slot.b[0].X, 1e-12)
	for k := 1; k < 7; k++ {
		assert.InDelta(t, 0, slot.b[k].X, 1e-10)
	}

	g := gFromB(&slot.b)
	for k := range g {
		assert.InDelta(t, slot.g[k].X, g[k].X, 1e-10)
	}
}
