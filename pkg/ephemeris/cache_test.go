package ephemeris

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjnapes/spacerocks/pkg/astronomy/astrotime"
	"github.com/kjnapes/spacerocks/pkg/astronomy/coordinates"
	"github.com/kjnapes/spacerocks/pkg/astronomy/nbody"
)

type countingProvider struct {
	calls int
}

func (p *countingProvider) BodyFromService(_ context.Context, name string, epoch astrotime.Time, plane coordinates.ReferencePlane, origin coordinates.Origin) (nbody.Body, error) {
	p.calls++
	b := nbody.FromXYZ(name, float64(p.calls), 0, 0, 0, 0, 0, epoch, plane, origin)
	b.SetMass(1e-9)
	return b, nil
}

type hitCounter struct{ hits, misses int }

func (h *hitCounter) ObserveCache(hit bool) {
	if hit {
		h.hits++
		return
	}
	h.misses++
}

func TestCachedProvider(t *testing.T) {
	next := &countingProvider{}
	cached, err := NewCachedProvider(next, 2)
	require.NoError(t, err)
	obs := &hitCounter{}
	cached.Observer = obs
	ctx := context.Background()

	first, err := cached.BodyFromService(ctx, "ceres", j2000, coordinates.ECLIPJ2000, coordinates.SSB())
	require.NoError(t, err)

	// the same instant in another timescale is the same key
	again, err := cached.BodyFromService(ctx, "ceres", j2000.In(astrotime.TT), coordinates.ECLIPJ2000, coordinates.SSB())
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first.Position, again.Position)
	assert.Equal(t, astrotime.TT, again.Epoch.Scale)

	// cached bodies are copies
	again.SetMass(5)
	third, err := cached.BodyFromService(ctx, "ceres", j2000, coordinates.ECLIPJ2000, coordinates.SSB())
	require.NoError(t, err)
	assert.Equal(t, 1e-9, third.Mass())

	_, err = cached.BodyFromService(ctx, "ceres", j2000, coordinates.J2000, coordinates.SSB())
	require.NoError(t, err)
	_, err = cached.BodyFromService(ctx, "vesta", j2000, coordinates.ECLIPJ2000, coordinates.SSB())
	require.NoError(t, err)
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, 2, cached.Len())
	assert.Equal(t, 2, obs.hits)
	assert.Equal(t, 3, obs.misses)

	_, err = NewCachedProvider(next, 0)
	assert.Error(t, err)
}
