package ephemeris

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjnapes/spacerocks/pkg/astronomy/coordinates"
	"github.com/kjnapes/spacerocks/pkg/astronomy/nbody"
)

func stateBodies() []nbody.Body {
	sun := nbody.FromXYZ("sun", -0.007, 0.006, 0.0001, -7e-6, -6e-6, 2e-7, j2000, coordinates.ECLIPJ2000, coordinates.SSB())
	sun.SetMass(1)
	ceres := nbody.FromXYZ("Ceres", -2.2, 1.4, 0.46, -0.0062, -0.0101, 0.0008, j2000, coordinates.ECLIPJ2000, coordinates.SSB())
	ceres.SetMass(4.7e-10)
	return []nbody.Body{sun, ceres}
}

func TestStateFileRoundTrip(t *testing.T) {
	for _, name := range []string{"state.yaml", "state.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, SaveStateFile(path, stateBodies()))

			sf, err := LoadStateFile(path)
			require.NoError(t, err)
			assert.Equal(t, stateBodies(), sf.Bodies)
		})
	}
}

func TestFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, SaveStateFile(path, stateBodies()))

	p, err := NewFileProvider(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sun", "Ceres"}, p.Names())
	stored, ok := p.Epoch()
	require.True(t, ok)
	assert.True(t, stored.Equal(j2000))

	ctx := context.Background()
	ceres, err := p.BodyFromService(ctx, "ceres", j2000, coordinates.ECLIPJ2000, coordinates.SSB())
	require.NoError(t, err)
	assert.Equal(t, "Ceres", ceres.Name)
	assert.Equal(t, -2.2, ceres.Position.X)
	assert.Equal(t, 4.7e-10, ceres.Mass())

	equatorial, err := p.BodyFromService(ctx, "Ceres", j2000, coordinates.J2000, coordinates.SSB())
	require.NoError(t, err)
	assert.Equal(t, coordinates.J2000, equatorial.ReferencePlane)
	assert.InDelta(t, ceres.Position.Magnitude(), equatorial.Position.Magnitude(), 1e-14)

	_, err = p.BodyFromService(ctx, "vesta", j2000, coordinates.ECLIPJ2000, coordinates.SSB())
	assert.ErrorIs(t, err, ErrBodyNotFound)
	_, err = p.BodyFromService(ctx, "ceres", j2000.Add(1), coordinates.ECLIPJ2000, coordinates.SSB())
	assert.ErrorIs(t, err, ErrStateMismatch)
	_, err = p.BodyFromService(ctx, "ceres", j2000, coordinates.ECLIPJ2000, coordinates.Sun())
	assert.ErrorIs(t, err, ErrStateMismatch)
}

func TestFileProviderFeedsSimulation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, SaveStateFile(path, stateBodies()))
	p, err := NewFileProvider(path)
	require.NoError(t, err)

	sim, err := nbody.FromProvider(context.Background(), p, []string{"sun", "ceres"}, j2000, coordinates.ECLIPJ2000, coordinates.SSB())
	require.NoError(t, err)
	assert.Equal(t, 2, sim.Len())

	require.NoError(t, sim.Integrate(j2000.Add(30)))
	assert.True(t, sim.Epoch.Equal(j2000.Add(30)))
}
