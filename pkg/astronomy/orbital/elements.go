package orbital

import (
	"math"

	errorsmod "cosmossdk.io/errors"

	astromath "github.com/kjnapes/spacerocks/pkg/astronomy/math"
)

const codespace = "orbital"

var (
	ErrUnboundOrbit = errorsmod.Register(codespace, 2, "orbit is not elliptical")
	ErrDegenerate   = errorsmod.Register(codespace, 3, "degenerate state vector")
)

// Elements represents Keplerian orbital elements
type Elements struct {
	SemiMajorAxis          float64 `json:"a" yaml:"a"`         // AU
	Eccentricity           float64 `json:"e" yaml:"e"`         // 0 <= e < 1
	Inclination            float64 `json:"inc" yaml:"inc"`     // radians
	LongitudeAscendingNode float64 `json:"node" yaml:"node"`   // radians
	ArgumentPerihelion     float64 `json:"arg" yaml:"arg"`     // radians
	MeanAnomaly            float64 `json:"M" yaml:"M"`         // radians
}

// ToCartesian converts the elements to position and velocity relative to
// a central body with gravitational parameter mu (AU³/day²).
func (oe Elements) ToCartesian(mu float64) (pos, vel astromath.Vector3, err error) {
	if oe.Eccentricity < 0 || oe.Eccentricity >= 1 || oe.SemiMajorAxis <= 0 {
		return pos, vel, errorsmod.Wrapf(ErrUnboundOrbit, "a=%g e=%g", oe.SemiMajorAxis, oe.Eccentricity)
	}

	E := oe.EccentricAnomaly()
	cosE := math.Cos(E)
	sqrt1me2 := math.Sqrt(1 - oe.Eccentricity*oe.Eccentricity)

	// position and velocity in the orbital plane
	x := oe.SemiMajorAxis * (cosE - oe.Eccentricity)
	y := oe.SemiMajorAxis * sqrt1me2 * math.Sin(E)

	r := oe.SemiMajorAxis * (1 - oe.Eccentricity*cosE)
	factor := math.Sqrt(mu*oe.SemiMajorAxis) / r
	vx := -factor * math.Sin(E)
	vy := factor * sqrt1me2 * cosE

	cosO := math.Cos(oe.LongitudeAscendingNode)
	sinO := math.Sin(oe.LongitudeAscendingNode)
	cosI := math.Cos(oe.Inclination)
	sinI := math.Sin(oe.Inclination)
	cosW := math.Cos(oe.ArgumentPerihelion)
	sinW := math.Sin(oe.ArgumentPerihelion)

	r11 := cosO*cosW - sinO*sinW*cosI
	r12 := -cosO*sinW - sinO*cosW*cosI
	r21 := sinO*cosW + cosO*sinW*cosI
	r22 := -sinO*sinW + cosO*cosW*cosI
	r31 := sinW * sinI
	r32 := cosW * sinI

	pos = astromath.Vector3{X: r11*x + r12*y, Y: r21*x + r22*y, Z: r31*x + r32*y}
	vel = astromath.Vector3{X: r11*vx + r12*vy, Y: r21*vx + r22*vy, Z: r31*vx + r32*vy}
	return pos, vel, nil
}

// EccentricAnomaly solves Kepler's equation M = E - e*sin(E) for E
func (oe Elements) EccentricAnomaly() float64 {
	M := math.Mod(oe.MeanAnomaly, 2*math.Pi)
	E := M
	if oe.Eccentricity > 0.8 {
		E = math.Pi
	}

	for i := 0; i < 50; i++ {
		f := E - oe.Eccentricity*math.Sin(E) - M
		fp := 1 - oe.Eccentricity*math.Cos(E)
		delta := f / fp
		E -= delta
		if math.Abs(delta) < 1e-14 {
			break
		}
	}
	return E
}

// TrueAnomaly returns the true anomaly in radians
func (oe Elements) TrueAnomaly() float64 {
	E := oe.EccentricAnomaly()
	return 2.0 * math.Atan2(
		math.Sqrt(1+oe.Eccentricity)*math.Sin(E/2),
		math.Sqrt(1-oe.Eccentricity)*math.Cos(E/2),
	)
}

// Perihelion returns the perihelion distance
func (oe Elements) Perihelion() float64 {
	return oe.SemiMajorAxis * (1 - oe.Eccentricity)
}

// Aphelion returns the aphelion distance
func (oe Elements) Aphelion() float64 {
	return oe.SemiMajorAxis * (1 + oe.Eccentricity)
}

// Period returns the orbital period in days
func (oe Elements) Period(mu float64) float64 {
	return 2 * math.Pi * math.Sqrt(math.Pow(oe.SemiMajorAxis, 3)/mu)
}

// FromCartesian converts a bound state vector to orbital elements
func FromCartesian(pos, vel astromath.Vector3, mu float64) (Elements, error) {
	h := pos.Cross(vel)
	r := pos.Magnitude()
	if r == 0 || h.Magnitude() == 0 {
		return Elements{}, errorsmod.Wrap(ErrDegenerate, "zero position or angular momentum")
	}

	v2 := vel.MagnitudeSquared()
	eVec := vel.Cross(h).Scale(1.0 / mu).Sub(pos.Scale(1.0 / r))
	e := eVec.Magnitude()
	energy := v2/2 - mu/r
	if energy >= 0 {
		return Elements{}, errorsmod.Wrapf(ErrUnboundOrbit, "e=%g", e)
	}
	a := -mu / (2 * energy)

	inc := math.Acos(h.Z / h.Magnitude())

	n := astromath.Vector3{Z: 1}.Cross(h)
	node := 0.0
	if n.Magnitude() > 1e-12 {
		node = math.Atan2(n.Y, n.X)
		if node < 0 {
			node += 2 * math.Pi
		}
	}

	arg := 0.0
	if n.Magnitude() > 1e-12 && e > 1e-12 {
		cosArg := n.Dot(eVec) / (n.Magnitude() * e)
		arg = math.Acos(math.Max(-1, math.Min(1, cosArg)))
		if eVec.Z < 0 {
			arg = 2*math.Pi - arg
		}
	}

	M := 0.0
	if e > 1e-12 {
		cosE := (1 - r/a) / e
		E := math.Acos(math.Max(-1, math.Min(1, cosE)))
		if pos.Dot(vel) < 0 {
			E = 2*math.Pi - E
		}
		M = E - e*math.Sin(E)
	}

	return Elements{
		SemiMajorAxis:          a,
		Eccentricity:           e,
		Inclination:            inc,
		LongitudeAscendingNode: node,
		ArgumentPerihelion:     arg,
		MeanAnomaly:            M,
	}, nil
}
