package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjnapes/spacerocks/internal/types"
	"github.com/kjnapes/spacerocks/pkg/astronomy/astrotime"
	"github.com/kjnapes/spacerocks/pkg/astronomy/coordinates"
	"github.com/kjnapes/spacerocks/pkg/astronomy/nbody"
	"github.com/kjnapes/spacerocks/pkg/astronomy/orbital"
)

var epoch = astrotime.FromJD(2451545.0, astrotime.TDB)

func rock(t *testing.T, name string, oe orbital.Elements) nbody.Body {
	t.Helper()
	b, err := nbody.FromKepler(name, oe, epoch, coordinates.ECLIPJ2000, coordinates.Sun())
	require.NoError(t, err)
	return b
}

func TestEnergyDrift(t *testing.T) {
	assert.Equal(t, types.EnergyDrift{}, EnergyDrift(nil))

	d := EnergyDrift([]float64{-2, -2, -2.2, -1.8})
	assert.Equal(t, -2.0, d.Initial)
	assert.Equal(t, -1.8, d.Final)
	assert.InDelta(t, 0.1, d.Max, 1e-12)
	assert.InDelta(t, 0.05, d.Mean, 1e-12)
	assert.Greater(t, d.StdDev, 0.0)

	single := EnergyDrift([]float64{-3})
	assert.Equal(t, 0.0, single.StdDev)
	assert.Equal(t, 0.0, single.Max)

	// zero initial energy falls back to absolute errors
	abs := EnergyDrift([]float64{0, 1e-3})
	assert.InDelta(t, 1e-3, abs.Max, 1e-15)
}

func TestElementChanges(t *testing.T) {
	base := orbital.Elements{
		SemiMajorAxis:          40,
		Eccentricity:           0.2,
		Inclination:            10 * math.Pi / 180,
		LongitudeAscendingNode: 100 * math.Pi / 180,
		ArgumentPerihelion:     355 * math.Pi / 180,
		MeanAnomaly:            1,
	}
	moved := base
	moved.Inclination += 2 * math.Pi / 180
	moved.ArgumentPerihelion += 10 * math.Pi / 180
	moved.Eccentricity = 0.25

	initial := []nbody.Body{rock(t, "tno", base), rock(t, "other", base)}
	final := []nbody.Body{rock(t, "tno", moved), rock(t, "newcomer", base)}

	changes := ElementChanges(initial, final)
	require.Len(t, changes, 1)
	c := changes[0]
	assert.Equal(t, "tno", c.Name)
	assert.InDelta(t, 40, c.SemiMajorAxis, 1e-8)
	assert.InDelta(t, 0.25, c.Eccentricity, 1e-10)
	assert.InDelta(t, 40*0.75-40*0.8, c.PerihelionShift, 1e-8)
	assert.InDelta(t, 2, c.InclinationChange, 1e-6)
	// the argument of perihelion wraps from 355 to 5 degrees
	assert.InDelta(t, 10, c.LongPeriChange, 1e-6)
}

func TestWrapDegrees(t *testing.T) {
	assert.InDelta(t, -10, wrapDegrees(350), 1e-12)
	assert.InDelta(t, 10, wrapDegrees(-350), 1e-12)
	assert.InDelta(t, 180, wrapDegrees(-180), 1e-12)
	assert.InDelta(t, 45, wrapDegrees(45), 1e-12)
}

func TestEnergyRecorderForwardsSnapshots(t *testing.T) {
	next := &countingSink{}
	rec := NewEnergyRecorder(next)

	sim := nbody.NewSimulation()
	require.NoError(t, sim.SetEpoch(epoch))
	sun := nbody.FromXYZ("sun", 0, 0, 0, 0, 0, 0, epoch, coordinates.ECLIPJ2000, coordinates.SSB())
	sun.SetMass(1)
	require.NoError(t, sim.Add(sun))
	require.NoError(t, sim.Add(rock(t, "tno", orbital.Elements{SemiMajorAxis: 40, Eccentricity: 0.1, MeanAnomaly: 0.5})))

	target := astrotime.FromJD(2451545.0+200, astrotime.TDB)
	require.NoError(t, sim.IntegrateWithSink(target, 5, rec))

	assert.Equal(t, next.snapshots, rec.Snapshots())
	assert.GreaterOrEqual(t, rec.Snapshots(), 2)
	assert.Equal(t, 1, next.ended)
	assert.Less(t, rec.Drift().Max, 1e-8)
}

type countingSink struct {
	snapshots int
	ended     int
}

func (c *countingSink) OnStart(int, int) error { return nil }
func (c *countingSink) OnSnapshot(astrotime.Time, []nbody.Body) error {
	c.snapshots++
	return nil
}
func (c *countingSink) OnEnd(astrotime.Time) error { c.ended++; return nil }
func (c *countingSink) Close() error               { return nil }
