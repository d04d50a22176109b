package nbody

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kjnapes/spacerocks/pkg/astronomy/constants"
	"github.com/kjnapes/spacerocks/pkg/astronomy/coordinates"
	"github.com/kjnapes/spacerocks/pkg/astronomy/orbital"
)

func TestBodyMassAndProperties(t *testing.T) {
	b := testBody("rock", 1, 0, 0, 0, 0, 0, 0)
	assert.Nil(t, b.Properties)
	assert.Equal(t, 0.0, b.Mass())

	b.SetAbsoluteMagnitude(7.5)
	require.NotNil(t, b.Properties)
	assert.Equal(t, 7.5, b.Properties.AbsoluteMagnitude)
	assert.Equal(t, 0.15, b.Properties.GSlope)
	assert.Equal(t, 0.0, b.Mass())

	c := b.Clone()
	c.SetMass(1e-10)
	c.SetGSlope(0.3)
	assert.Equal(t, 0.0, b.Mass())
	assert.Equal(t, 0.15, b.Properties.GSlope)
}

func TestFromSpherical(t *testing.T) {
	b := FromSpherical("rock", math.Pi/2, 0, 2, 0.01, 0.02, 0, j2000, coordinates.ECLIPJ2000, coordinates.Sun())

	assert.InDelta(t, 0, b.Position.X, 1e-15)
	assert.InDelta(t, 2, b.Position.Y, 1e-15)
	assert.InDelta(t, 0, b.Position.Z, 1e-15)
	assert.InDelta(t, -0.02, b.Velocity.X, 1e-15)
	assert.InDelta(t, 0.01, b.Velocity.Y, 1e-15)
	assert.InDelta(t, math.Hypot(0.01, 0.02), b.V(), 1e-15)
}

func TestFromKeplerRoundTrip(t *testing.T) {
	oe := orbital.Elements{SemiMajorAxis: 2.77, Eccentricity: 0.08, Inclination: 0.19, LongitudeAscendingNode: 1.4, ArgumentPerihelion: 1.28, MeanAnomaly: 0.5}
	b, err := FromKepler("ceres", oe, j2000, coordinates.ECLIPJ2000, coordinates.Sun())
	require.NoError(t, err)

	assert.InDelta(t, 0.08, b.E(), 1e-12)
	back, err := b.Elements()
	require.NoError(t, err)
	assert.InDelta(t, oe.SemiMajorAxis, back.SemiMajorAxis, 1e-10)
	assert.InDelta(t, oe.Inclination, back.Inclination, 1e-12)

	_, err = FromKepler("hyperbolic", orbital.Elements{SemiMajorAxis: 1, Eccentricity: 1.5}, j2000, coordinates.ECLIPJ2000, coordinates.Sun())
	assert.Error(t, err)
}

func TestBodyChangeOrigin(t *testing.T) {
	sun := testBody("sun", 0.01, 0, 0, 0, 1e-3, 0, 1)
	b := testBody("rock", 1, 1, 0, 0, 0.02, 0, 0)

	b.ChangeOrigin(sun)
	assert.InDelta(t, 0.99, b.Position.X, 1e-15)
	assert.InDelta(t, 0.019, b.Velocity.Y, 1e-15)
	assert.Equal(t, "sun", b.Origin.Name())
	assert.Equal(t, constants.GravitationalConstant, b.Origin.Mu())
}

func TestBodyEncoding(t *testing.T) {
	b := testBody("ceres", 2.5, -1, 0.3, 0.004, 0.009, -0.001, 4.7e-10)

	raw, err := json.Marshal(b)
	require.NoError(t, err)
	var fromJSON Body
	require.NoError(t, json.Unmarshal(raw, &fromJSON))
	assert.Equal(t, b, fromJSON)

	out, err := yaml.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(out), "reference_plane: ECLIPJ2000")
	var fromYAML Body
	require.NoError(t, yaml.Unmarshal(out, &fromYAML))
	assert.Equal(t, b, fromYAML)
}
