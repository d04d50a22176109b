package nbody

import (
	"math"

	"github.com/kjnapes/spacerocks/pkg/astronomy/astrotime"
	"github.com/kjnapes/spacerocks/pkg/astronomy/constants"
	"github.com/kjnapes/spacerocks/pkg/astronomy/coordinates"
	astromath "github.com/kjnapes/spacerocks/pkg/astronomy/math"
	"github.com/kjnapes/spacerocks/pkg/astronomy/orbital"
)

// Properties are the optional physical parameters of a body
type Properties struct {
	Mass              float64 `json:"mass,omitempty" yaml:"mass,omitempty"` // solar masses
	AbsoluteMagnitude float64 `json:"absolute_magnitude,omitempty" yaml:"absolute_magnitude,omitempty"`
	GSlope            float64 `json:"gslope,omitempty" yaml:"gslope,omitempty"`
	Radius            float64 `json:"radius,omitempty" yaml:"radius,omitempty"` // AU
	Albedo            float64 `json:"albedo,omitempty" yaml:"albedo,omitempty"`
}

// Body is a point mass state: position and velocity at an epoch, expressed
// in ReferencePlane relative to Origin. Units are AU and AU/day.
type Body struct {
	Name           string                     `json:"name" yaml:"name"`
	Epoch          astrotime.Time             `json:"epoch" yaml:"epoch"`
	ReferencePlane coordinates.ReferencePlane `json:"reference_plane" yaml:"reference_plane"`
	Origin         coordinates.Origin         `json:"origin" yaml:"origin"`
	Position       astromath.Vector3          `json:"position" yaml:"position"`
	Velocity       astromath.Vector3          `json:"velocity" yaml:"velocity"`
	Properties     *Properties                `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// FromXYZ builds a body from cartesian components
func FromXYZ(name string, x, y, z, vx, vy, vz float64, epoch astrotime.Time, plane coordinates.ReferencePlane, origin coordinates.Origin) Body {
	return Body{
		Name:           name,
		Epoch:          epoch,
		ReferencePlane: plane,
		Origin:         origin,
		Position:       astromath.NewVector3(x, y, z),
		Velocity:       astromath.NewVector3(vx, vy, vz),
	}
}

// FromSpherical builds a body from a pointing (phi, theta) in radians, a
// distance r, radial velocity vr, transverse speed vo and its position
// angle psi.
func FromSpherical(name string, phi, theta, r, vr, vo, psi float64, epoch astrotime.Time, plane coordinates.ReferencePlane, origin coordinates.Origin) Body {
	pointing := astromath.NewVector3(math.Cos(phi)*math.Cos(theta), math.Sin(phi)*math.Cos(theta), math.Sin(theta))
	dhat := astromath.NewVector3(-math.Cos(phi)*math.Sin(theta), -math.Sin(phi)*math.Sin(theta), math.Cos(theta))
	ahat := astromath.NewVector3(-math.Sin(phi), math.Cos(phi), 0)

	transverse := ahat.Scale(math.Cos(psi)).Add(dhat.Scale(math.Sin(psi)))
	return Body{
		Name:           name,
		Epoch:          epoch,
		ReferencePlane: plane,
		Origin:         origin,
		Position:       pointing.Scale(r),
		Velocity:       pointing.Scale(vr).Add(transverse.Scale(vo)),
	}
}

// FromKepler builds a body from orbital elements about origin
func FromKepler(name string, oe orbital.Elements, epoch astrotime.Time, plane coordinates.ReferencePlane, origin coordinates.Origin) (Body, error) {
	pos, vel, err := oe.ToCartesian(origin.Mu())
	if err != nil {
		return Body{}, err
	}
	return Body{
		Name:           name,
		Epoch:          epoch,
		ReferencePlane: plane,
		Origin:         origin,
		Position:       pos,
		Velocity:       vel,
	}, nil
}

// Clone returns a copy that shares no memory with b
func (b Body) Clone() Body {
	if b.Properties != nil {
		p := *b.Properties
		b.Properties = &p
	}
	return b
}

// Mass returns the body's mass, or zero for a test particle
func (b Body) Mass() float64 {
	if b.Properties == nil {
		return 0
	}
	return b.Properties.Mass
}

func (b *Body) props() *Properties {
	if b.Properties == nil {
		b.Properties = &Properties{}
	}
	return b.Properties
}

func (b *Body) SetMass(m float64) { b.props().Mass = m }

// SetAbsoluteMagnitude also resets the slope parameter to the default 0.15
func (b *Body) SetAbsoluteMagnitude(h float64) {
	b.props().AbsoluteMagnitude = h
	b.props().GSlope = 0.15
}

func (b *Body) SetGSlope(g float64) { b.props().GSlope = g }
func (b *Body) SetRadius(r float64) { b.props().Radius = r }
func (b *Body) SetAlbedo(a float64) { b.props().Albedo = a }

// ChangeOrigin re-expresses b relative to center
func (b *Body) ChangeOrigin(center Body) {
	b.Position = b.Position.Sub(center.Position)
	b.Velocity = b.Velocity.Sub(center.Velocity)
	b.Origin = coordinates.NewCustomOrigin(center.Mass()*constants.GravitationalConstant, center.Name)
}

// ChangeReferencePlane rotates the state vector into plane
func (b *Body) ChangeReferencePlane(plane coordinates.ReferencePlane) error {
	if b.ReferencePlane == plane {
		return nil
	}
	m, err := coordinates.Transform(b.ReferencePlane, plane)
	if err != nil {
		return err
	}
	b.Position = coordinates.Rotate(m, b.Position)
	b.Velocity = coordinates.Rotate(m, b.Velocity)
	b.ReferencePlane = plane
	return nil
}

// R is the distance from the origin
func (b Body) R() float64 { return b.Position.Magnitude() }

// V is the speed relative to the origin
func (b Body) V() float64 { return b.Velocity.Magnitude() }

// HVec is the specific angular momentum
func (b Body) HVec() astromath.Vector3 { return b.Position.Cross(b.Velocity) }

// EVec is the eccentricity vector about the origin
func (b Body) EVec() astromath.Vector3 {
	return b.Velocity.Cross(b.HVec()).Scale(1 / b.Origin.Mu()).Sub(b.Position.Scale(1 / b.R()))
}

// E is the osculating eccentricity
func (b Body) E() float64 { return b.EVec().Magnitude() }

// Elements returns the osculating orbital elements about the body's origin
func (b Body) Elements() (orbital.Elements, error) {
	return orbital.FromCartesian(b.Position, b.Velocity, b.Origin.Mu())
}
