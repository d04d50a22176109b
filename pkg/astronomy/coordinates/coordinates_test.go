package coordinates

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	astromath "github.com/kjnapes/spacerocks/pkg/astronomy/math"
)

func TestParseReferencePlane(t *testing.T) {
	for _, name := range []string{"J2000", "eclipj2000", "Invariable", "GALACTIC", "fk4"} {
		p, err := ParseReferencePlane(name)
		require.NoError(t, err)
		assert.Equal(t, strings.ToUpper(name), p.String())
	}
}

func TestParseReferencePlaneCaseFolds(t *testing.T) {
	p, err := ParseReferencePlane("eclipj2000")
	require.NoError(t, err)
	assert.Equal(t, ECLIPJ2000, p)

	_, err = ParseReferencePlane("ICRF")
	require.ErrorIs(t, err, ErrInvalidReferencePlane)
}

func TestRotationMatricesAreOrthonormal(t *testing.T) {
	for p := range planeNames {
		r, err := p.RotationMatrix()
		require.NoError(t, err)

		var rrt mat.Dense
		rrt.Mul(r, r.T())
		assert.True(t, mat.EqualApprox(&rrt, mat.NewDiagDense(3, []float64{1, 1, 1}), 1e-9), p.String())
	}

	_, err := ReferencePlane(42).RotationMatrix()
	require.ErrorIs(t, err, ErrInvalidReferencePlane)
}

func TestEclipticTransform(t *testing.T) {
	m, err := Transform(J2000, ECLIPJ2000)
	require.NoError(t, err)

	// the equatorial pole sits at the obliquity from the ecliptic pole
	pole := Rotate(m, astromath.NewVector3(0, 0, 1))
	obliquity := math.Acos(pole.Z) * 180 / math.Pi
	assert.InDelta(t, 23.439, obliquity, 1e-3)
}

func TestTransformRoundTrip(t *testing.T) {
	v := astromath.NewVector3(1.2, -0.4, 0.3)
	for from := range planeNames {
		for to := range planeNames {
			there, err := Transform(from, to)
			require.NoError(t, err)
			back, err := Transform(to, from)
			require.NoError(t, err)

			w := Rotate(back, Rotate(there, v))
			assert.InDelta(t, 0.0, w.Distance(v), 1e-12, "%s <-> %s", from, to)
			assert.InDelta(t, v.Magnitude(), Rotate(there, v).Magnitude(), 1e-12)
		}
	}
}

func TestOrigins(t *testing.T) {
	assert.Equal(t, "SSB", SSB().Name())
	assert.Equal(t, "SUN", Sun().Name())
	assert.InDelta(t, 2.9630927493968080e-04, SSB().Mu(), 1e-20)
	assert.Equal(t, SSB(), SSB())
	assert.NotEqual(t, SSB(), Sun())

	o, err := ParseOrigin("sun")
	require.NoError(t, err)
	assert.Equal(t, Sun(), o)

	_, err = ParseOrigin("earth")
	require.ErrorIs(t, err, ErrInvalidOrigin)

	c := NewCustomOrigin(1e-9, "earth")
	assert.Equal(t, c, NewCustomOrigin(1e-9, "earth"))
	assert.NotEqual(t, c, NewCustomOrigin(2e-9, "earth"))
	assert.True(t, Origin{}.IsZero())
}

func TestOriginEncoding(t *testing.T) {
	c := NewCustomOrigin(1.5e-7, "jupiter barycenter")

	b, err := json.Marshal(c)
	require.NoError(t, err)
	var fromJSON Origin
	require.NoError(t, json.Unmarshal(b, &fromJSON))
	assert.Equal(t, c, fromJSON)

	y, err := yaml.Marshal(c)
	require.NoError(t, err)
	var fromYAML Origin
	require.NoError(t, yaml.Unmarshal(y, &fromYAML))
	assert.Equal(t, c, fromYAML)

	var named Origin
	require.NoError(t, yaml.Unmarshal([]byte("ssb"), &named))
	assert.Equal(t, SSB(), named)
}
