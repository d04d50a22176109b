package nbody

import (
	"context"
	"fmt"
	"math"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	"github.com/kjnapes/spacerocks/pkg/astronomy/astrotime"
	"github.com/kjnapes/spacerocks/pkg/astronomy/constants"
	"github.com/kjnapes/spacerocks/pkg/astronomy/coordinates"
	astromath "github.com/kjnapes/spacerocks/pkg/astronomy/math"
)

// BarycenterName names the synthetic origin created by MoveToCenterOfMass
const BarycenterName = "simulation_barycenter"

// epochTolerance is the gap in days below which two epochs are treated as equal
const epochTolerance = 1e-16

// maxExactFitSteps bounds the steps Integrate takes to close the final gap
const maxExactFitSteps = 64

// EphemerisProvider resolves a named body's state at an epoch
type EphemerisProvider interface {
	BodyFromService(ctx context.Context, name string, epoch astrotime.Time, plane coordinates.ReferencePlane, origin coordinates.Origin) (Body, error)
}

// Simulation owns a set of bodies sharing one epoch, reference plane and
// origin, together with the forces acting on them and the integrator that
// advances them. A Simulation is not safe for concurrent use.
type Simulation struct {
	Particles      []Body
	Epoch          astrotime.Time
	ReferencePlane coordinates.ReferencePlane
	Origin         coordinates.Origin
	Integrator     Integrator
	Forces         []Force

	Logger   log.Logger
	Observer StepObserver

	index map[string]int
}

// NewSimulation returns an empty simulation at the current time using
// IAS15 with a one day timestep, Newtonian gravity, the solar system
// barycenter and the J2000 ecliptic.
func NewSimulation() *Simulation {
	return &Simulation{
		Particles:      make([]Body, 0),
		Epoch:          astrotime.Now(),
		ReferencePlane: coordinates.ECLIPJ2000,
		Origin:         coordinates.SSB(),
		Integrator:     NewIAS15(1.0),
		Forces:         []Force{NewtonianGravity{}},
		Logger:         log.NewNopLogger(),
		index:          make(map[string]int),
	}
}

// Giants holds the sun and the four giant planet barycenters
func Giants(ctx context.Context, provider EphemerisProvider, epoch astrotime.Time, plane coordinates.ReferencePlane, origin coordinates.Origin) (*Simulation, error) {
	return FromProvider(ctx, provider, constants.GiantNames, epoch, plane, origin)
}

// Planets holds the sun and the eight planetary system barycenters
func Planets(ctx context.Context, provider EphemerisProvider, epoch astrotime.Time, plane coordinates.ReferencePlane, origin coordinates.Origin) (*Simulation, error) {
	return FromProvider(ctx, provider, constants.PlanetNames, epoch, plane, origin)
}

// Horizons holds the perturber set JPL Horizons integrates small bodies with
func Horizons(ctx context.Context, provider EphemerisProvider, epoch astrotime.Time, plane coordinates.ReferencePlane, origin coordinates.Origin) (*Simulation, error) {
	return FromProvider(ctx, provider, constants.HorizonsNames, epoch, plane, origin)
}

// FromProvider builds a simulation at epoch and adds each named body as
// resolved by provider. Any lookup failure fails the whole call.
func FromProvider(ctx context.Context, provider EphemerisProvider, names []string, epoch astrotime.Time, plane coordinates.ReferencePlane, origin coordinates.Origin) (*Simulation, error) {
	sim := NewSimulation()
	sim.Epoch = epoch
	sim.ReferencePlane = plane
	sim.Origin = origin

	for _, name := range names {
		body, err := provider.BodyFromService(ctx, name, epoch, plane, origin)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "resolving %q", name)
		}
		if err := sim.Add(body); err != nil {
			return nil, err
		}
	}
	return sim, nil
}

func (s *Simulation) logger() log.Logger {
	if s.Logger == nil {
		return log.NewNopLogger()
	}
	return s.Logger
}

func (s *Simulation) ensureIndex() {
	if s.index == nil {
		s.index = make(map[string]int, len(s.Particles))
		for i, p := range s.Particles {
			s.index[p.Name] = i
		}
	}
}

// Len is the number of bodies in the simulation
func (s *Simulation) Len() int { return len(s.Particles) }

// Index returns the position of the named body in Particles
func (s *Simulation) Index(name string) (int, bool) {
	s.ensureIndex()
	i, ok := s.index[name]
	return i, ok
}

// lookupOrigin finds the body an origin names. Origin names are matched
// without regard to case, so SUN resolves to a body called "sun".
func (s *Simulation) lookupOrigin(name string) (int, bool) {
	if i, ok := s.index[name]; ok {
		return i, true
	}
	for i, p := range s.Particles {
		if strings.EqualFold(p.Name, name) {
			return i, true
		}
	}
	return -1, false
}

// SetEpoch moves the clock of an empty simulation
func (s *Simulation) SetEpoch(epoch astrotime.Time) error {
	if len(s.Particles) > 0 {
		return errorsmod.Wrapf(ErrSimulationNotEmpty, "%d particles", len(s.Particles))
	}
	s.Epoch = epoch
	return nil
}

// Add appends a copy of body. The body's epoch must match the simulation's.
// A body whose origin differs from the simulation's must name a body already
// present; it is re-expressed relative to that body. The body is rotated
// into the simulation's reference plane. On error the simulation is unchanged.
func (s *Simulation) Add(body Body) error {
	s.ensureIndex()
	b := body.Clone()

	b.Epoch.ChangeTimescale(s.Epoch.Scale)
	if !b.Epoch.Equal(s.Epoch) {
		return errorsmod.Wrapf(ErrEpochMismatch, "%s: body at %s, simulation at %s", b.Name, b.Epoch, s.Epoch)
	}
	if _, dup := s.index[b.Name]; dup {
		return errorsmod.Wrapf(ErrDuplicateParticle, "%q", b.Name)
	}

	var center *Body
	if b.Origin != s.Origin {
		idx, ok := s.lookupOrigin(b.Origin.Name())
		if !ok {
			return errorsmod.Wrapf(ErrOriginMismatch, "%s: origin %s, simulation origin %s", b.Name, b.Origin, s.Origin)
		}
		center = &s.Particles[idx]
	}

	if err := b.ChangeReferencePlane(s.ReferencePlane); err != nil {
		return errorsmod.Wrapf(err, "adding %s", b.Name)
	}
	if center != nil {
		s.logger().Info("changing origin of particle", "particle", b.Name, "from", b.Origin.Name(), "to", center.Name)
		b.ChangeOrigin(*center)
	}

	b.Epoch = s.Epoch
	s.index[b.Name] = len(s.Particles)
	s.Particles = append(s.Particles, b)
	return nil
}

// Remove deletes the named body, keeping the order of the others
func (s *Simulation) Remove(name string) error {
	s.ensureIndex()
	idx, ok := s.index[name]
	if !ok {
		return errorsmod.Wrapf(ErrParticleNotFound, "%q", name)
	}

	s.Particles = append(s.Particles[:idx], s.Particles[idx+1:]...)
	delete(s.index, name)
	for k, v := range s.index {
		if v > idx {
			s.index[k] = v - 1
		}
	}
	return nil
}

// GetParticle returns a copy of the named body
func (s *Simulation) GetParticle(name string) (Body, error) {
	idx, ok := s.Index(name)
	if !ok {
		return Body{}, errorsmod.Wrapf(ErrParticleNotFound, "%q", name)
	}
	return s.Particles[idx].Clone(), nil
}

func (s *Simulation) AddForce(f Force) {
	s.Forces = append(s.Forces, f)
}

func (s *Simulation) SetIntegrator(i Integrator) {
	s.Integrator = i
}

// Timestep is the integrator's current timestep in days
func (s *Simulation) Timestep() float64 {
	return s.Integrator.Timestep()
}

// Step advances the simulation by one integrator step
func (s *Simulation) Step() error {
	if err := s.Integrator.Step(s.Particles, &s.Epoch, s.Forces); err != nil {
		return err
	}
	if s.Observer != nil {
		if r, ok := s.Integrator.(StatsReporter); ok {
			s.Observer.ObserveStep(r.LastStats(), len(s.Particles))
		}
	}
	return nil
}

// Integrate advances, forward or backward, until the simulation clock
// equals target. The integrator's timestep is left as it was before the
// final exact-fit step.
func (s *Simulation) Integrate(target astrotime.Time) error {
	return s.integrate(target.In(s.Epoch.Scale).As(s.Epoch.Format), nil)
}

func (s *Simulation) integrate(target astrotime.Time, afterStep func() error) error {
	step := func() error {
		if err := s.Step(); err != nil {
			return err
		}
		if afterStep != nil {
			return afterStep()
		}
		return nil
	}

	gap := target.Sub(s.Epoch)
	if math.Abs(gap) < epochTolerance {
		return nil
	}

	for {
		dt := s.Integrator.Timestep()
		if dt == 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
			return errorsmod.Wrapf(ErrInvalidTimestep, "%g", dt)
		}
		gap = target.Sub(s.Epoch)
		if math.Abs(gap) < math.Abs(dt) {
			break
		}
		if (gap < 0) != (dt < 0) {
			s.Integrator.SetTimestep(-dt)
		}
		if err := step(); err != nil {
			return err
		}
	}

	for i := 0; ; i++ {
		gap = target.Sub(s.Epoch)
		if math.Abs(gap) < epochTolerance {
			break
		}
		if i == maxExactFitSteps {
			return errorsmod.Wrapf(ErrConvergenceFailure, "could not land on %s, %g days short", target, gap)
		}
		previous := s.Integrator.Timestep()
		s.Integrator.SetTimestep(gap)
		err := step()
		s.Integrator.SetTimestep(previous)
		if err != nil {
			return err
		}
	}

	s.Epoch = target
	for i := range s.Particles {
		s.Particles[i].Epoch = target
	}
	return nil
}

// MoveToCenterOfMass re-origins every body on the barycenter of the
// massive bodies
func (s *Simulation) MoveToCenterOfMass() error {
	var total float64
	var pos, vel astromath.Vector3
	for _, p := range s.Particles {
		m := p.Mass()
		if m == 0 {
			continue
		}
		pos = pos.AddScaled(p.Position, m)
		vel = vel.AddScaled(p.Velocity, m)
		total += m
	}
	if total == 0 {
		return ErrNoMass
	}
	pos = pos.Scale(1 / total)
	vel = vel.Scale(1 / total)

	barycenter := FromXYZ(BarycenterName, pos.X, pos.Y, pos.Z, vel.X, vel.Y, vel.Z, s.Epoch, s.ReferencePlane, s.Origin)
	barycenter.SetMass(total)

	for i := range s.Particles {
		s.Particles[i].ChangeOrigin(barycenter)
	}
	s.Origin = coordinates.NewCustomOrigin(total*constants.GravitationalConstant, BarycenterName)
	return nil
}

// ChangeOrigin re-origins every body on the named body
func (s *Simulation) ChangeOrigin(name string) error {
	idx, ok := s.Index(name)
	if !ok {
		return errorsmod.Wrapf(ErrParticleNotFound, "origin %q", name)
	}
	center := s.Particles[idx].Clone()
	for i := range s.Particles {
		s.Particles[i].ChangeOrigin(center)
	}
	s.Origin = coordinates.NewCustomOrigin(center.Mass()*constants.GravitationalConstant, name)
	return nil
}

// ChangeReferencePlane rotates every body into plane
func (s *Simulation) ChangeReferencePlane(plane coordinates.ReferencePlane) error {
	if plane == s.ReferencePlane {
		return nil
	}
	m, err := coordinates.Transform(s.ReferencePlane, plane)
	if err != nil {
		return err
	}
	for i := range s.Particles {
		s.Particles[i].Position = coordinates.Rotate(m, s.Particles[i].Position)
		s.Particles[i].Velocity = coordinates.Rotate(m, s.Particles[i].Velocity)
		s.Particles[i].ReferencePlane = plane
	}
	s.ReferencePlane = plane
	return nil
}

// KineticEnergy is Σ ½mv²
func (s *Simulation) KineticEnergy() float64 { return KineticEnergy(s.Particles) }

// PotentialEnergy is the pairwise Newtonian potential
func (s *Simulation) PotentialEnergy() float64 { return PotentialEnergy(s.Particles) }

// Energy is the total mechanical energy, in M☉·AU²/day²
func (s *Simulation) Energy() float64 { return Energy(s.Particles) }

// AngularMomentum is Σ m r×v
func (s *Simulation) AngularMomentum() astromath.Vector3 { return AngularMomentum(s.Particles) }

func KineticEnergy(bodies []Body) float64 {
	var ke float64
	for _, p := range bodies {
		ke += 0.5 * p.Mass() * p.Velocity.MagnitudeSquared()
	}
	return ke
}

func PotentialEnergy(bodies []Body) float64 {
	var pe float64
	for i := range bodies {
		mi := bodies[i].Mass()
		if mi == 0 {
			continue
		}
		for j := i + 1; j < len(bodies); j++ {
			mj := bodies[j].Mass()
			if mj == 0 {
				continue
			}
			r := bodies[i].Position.Distance(bodies[j].Position)
			pe -= constants.GravitationalConstant * mi * mj / r
		}
	}
	return pe
}

// Energy is the Newtonian kinetic plus potential energy of bodies
func Energy(bodies []Body) float64 {
	return KineticEnergy(bodies) + PotentialEnergy(bodies)
}

func AngularMomentum(bodies []Body) astromath.Vector3 {
	var l astromath.Vector3
	for _, p := range bodies {
		l = l.AddScaled(p.Position.Cross(p.Velocity), p.Mass())
	}
	return l
}

// Clone returns an independent copy of the simulation, integrator included
func (s *Simulation) Clone() *Simulation {
	c := *s
	c.Particles = make([]Body, len(s.Particles))
	for i, p := range s.Particles {
		c.Particles[i] = p.Clone()
	}
	c.Forces = append([]Force(nil), s.Forces...)
	if s.Integrator != nil {
		c.Integrator = s.Integrator.Clone()
	}
	c.index = make(map[string]int, len(s.Particles))
	for i, p := range c.Particles {
		c.index[p.Name] = i
	}
	return &c
}

func (s *Simulation) String() string {
	integrator := "none"
	if s.Integrator != nil {
		integrator = fmt.Sprintf("%s(dt=%g)", s.Integrator.Name(), s.Integrator.Timestep())
	}
	return fmt.Sprintf("Simulation(epoch=%s, plane=%s, origin=%s, particles=%d, integrator=%s, forces=%d)",
		s.Epoch, s.ReferencePlane, s.Origin, len(s.Particles), integrator, len(s.Forces))
}
