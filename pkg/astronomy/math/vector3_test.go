package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorArithmetic(t *testing.T) {
	a := NewVector3(1, 2, 3)
	b := NewVector3(-2, 0.5, 4)

	assert.Equal(t, Vector3{X: -1, Y: 2.5, Z: 7}, a.Add(b))
	assert.Equal(t, Vector3{X: 3, Y: 1.5, Z: -1}, a.Sub(b))
	assert.Equal(t, Vector3{X: 2, Y: 4, Z: 6}, a.Scale(2))
	assert.Equal(t, Vector3{X: -3, Y: 3, Z: 11}, a.AddScaled(b, 2))
	assert.Equal(t, Vector3{X: -1, Y: -2, Z: -3}, a.Neg())
	assert.InDelta(t, 11.0, a.Dot(b), 1e-15)
}

func TestCrossIsOrthogonal(t *testing.T) {
	a := NewVector3(0.3, -1.2, 2.0)
	b := NewVector3(1.5, 0.2, -0.7)
	c := a.Cross(b)

	assert.InDelta(t, 0.0, c.Dot(a), 1e-14)
	assert.InDelta(t, 0.0, c.Dot(b), 1e-14)
	assert.Equal(t, NewVector3(0, 0, 1), NewVector3(1, 0, 0).Cross(NewVector3(0, 1, 0)))
}

func TestMagnitudeAndNormalize(t *testing.T) {
	v := NewVector3(3, 4, 12)
	assert.InDelta(t, 13.0, v.Magnitude(), 1e-15)
	assert.InDelta(t, 169.0, v.MagnitudeSquared(), 1e-12)
	assert.InDelta(t, 1.0, v.Normalize().Magnitude(), 1e-15)

	var zero Vector3
	assert.True(t, zero.IsZero())
	assert.Equal(t, zero, zero.Normalize())
	assert.InDelta(t, math.Sqrt(3), NewVector3(1, 1, 1).Distance(zero), 1e-15)
}

func TestSliceRoundTrip(t *testing.T) {
	v := NewVector3(1.25, -2.5, 3.75)
	assert.Equal(t, v, FromSlice(v.Slice()))
}
