package nbody

import (
	"math"

	errorsmod "cosmossdk.io/errors"

	"github.com/kjnapes/spacerocks/pkg/astronomy/constants"
	astromath "github.com/kjnapes/spacerocks/pkg/astronomy/math"
)

// DefaultCentralBody is the body SolarGR and SolarJ2 center on when none is given
const DefaultCentralBody = "sun"

// Force computes one acceleration contribution per body, in body order.
// Implementations read positions, velocities and masses only.
type Force interface {
	Acceleration(bodies []Body) ([]astromath.Vector3, error)
	Name() string
}

// NewtonianGravity is the O(n²) pairwise point-mass attraction. Two
// coincident massive bodies yield non-finite accelerations.
type NewtonianGravity struct{}

func (NewtonianGravity) Name() string { return "gravity" }

func (NewtonianGravity) Acceleration(bodies []Body) ([]astromath.Vector3, error) {
	acc := make([]astromath.Vector3, len(bodies))
	for i := range bodies {
		mi := bodies[i].Mass()
		for j := i + 1; j < len(bodies); j++ {
			mj := bodies[j].Mass()
			if mi == 0 && mj == 0 {
				continue
			}

			r := bodies[i].Position.Sub(bodies[j].Position)
			d := r.Magnitude()
			xi := r.Scale(-constants.GravitationalConstant / (d * d * d))

			acc[i] = acc[i].AddScaled(xi, mj)
			acc[j] = acc[j].AddScaled(xi, -mi)
		}
	}
	return acc, nil
}

// SolarGR is the first post-Newtonian correction from a single central mass
type SolarGR struct {
	Center string
}

// NewSolarGR centers the correction on the named body; empty means "sun"
func NewSolarGR(center string) SolarGR { return SolarGR{Center: center} }

func (f SolarGR) Name() string { return "gr" }

func (f SolarGR) Acceleration(bodies []Body) ([]astromath.Vector3, error) {
	ci, err := findCenter(bodies, f.Center)
	if err != nil {
		return nil, err
	}
	center := bodies[ci]
	mu := constants.GravitationalConstant * center.Mass()
	c2 := constants.SpeedOfLight * constants.SpeedOfLight

	acc := make([]astromath.Vector3, len(bodies))
	for i := range bodies {
		if i == ci {
			continue
		}
		r := bodies[i].Position.Sub(center.Position)
		v := bodies[i].Velocity.Sub(center.Velocity)
		d := r.Magnitude()

		s0 := mu / (c2 * d * d * d)
		radial := r.Scale(4*mu/d - v.Dot(v))
		tangential := v.Scale(4 * r.Dot(v))
		acc[i] = radial.Add(tangential).Scale(s0)
	}
	return acc, nil
}

// SolarJ2 is the quadrupole term of an oblate central body, with the
// symmetry axis along z of the simulation's reference plane
type SolarJ2 struct {
	Center string
	J2     float64
	Radius float64 // AU
}

// NewSolarJ2 uses the solar J2 and radius; an empty center means "sun"
func NewSolarJ2(center string) SolarJ2 {
	return SolarJ2{Center: center, J2: constants.SunJ2, Radius: constants.SunRadius}
}

func (f SolarJ2) Name() string { return "j2" }

func (f SolarJ2) Acceleration(bodies []Body) ([]astromath.Vector3, error) {
	ci, err := findCenter(bodies, f.Center)
	if err != nil {
		return nil, err
	}
	j2, radius := f.J2, f.Radius
	if j2 == 0 && radius == 0 {
		j2, radius = constants.SunJ2, constants.SunRadius
	}
	center := bodies[ci]
	mu := constants.GravitationalConstant * center.Mass()

	acc := make([]astromath.Vector3, len(bodies))
	for i := range bodies {
		if i == ci {
			continue
		}
		r := bodies[i].Position.Sub(center.Position)
		d2 := r.MagnitudeSquared()
		d := math.Sqrt(d2)
		z2 := r.Z * r.Z / d2

		factor := 1.5 * j2 * mu * radius * radius / (d2 * d2 * d)
		acc[i] = astromath.Vector3{
			X: factor * r.X * (5*z2 - 1),
			Y: factor * r.Y * (5*z2 - 1),
			Z: factor * r.Z * (5*z2 - 3),
		}
	}
	return acc, nil
}

func findCenter(bodies []Body, name string) (int, error) {
	if name == "" {
		name = DefaultCentralBody
	}
	for i := range bodies {
		if bodies[i].Name == name {
			return i, nil
		}
	}
	return -1, errorsmod.Wrapf(ErrCentralBodyNotFound, "%q", name)
}

// totalAcceleration sums every force's contribution into acc
func totalAcceleration(bodies []Body, forces []Force, acc []astromath.Vector3) error {
	for i := range acc {
		acc[i] = astromath.Vector3{}
	}
	for _, f := range forces {
		contrib, err := f.Acceleration(bodies)
		if err != nil {
			return errorsmod.Wrapf(err, "force %s", f.Name())
		}
		for i := range acc {
			acc[i] = acc[i].Add(contrib[i])
		}
	}
	return nil
}
