package nbody

import (
	"strings"

	errorsmod "cosmossdk.io/errors"

	"github.com/kjnapes/spacerocks/pkg/astronomy/astrotime"
	astromath "github.com/kjnapes/spacerocks/pkg/astronomy/math"
)

// Integrator advances every body and the shared clock by one step
type Integrator interface {
	// Step mutates positions, velocities and epochs of bodies in place and
	// advances clock by the step actually taken.
	Step(bodies []Body, clock *astrotime.Time, forces []Force) error
	Timestep() float64
	SetTimestep(dt float64)
	Clone() Integrator
	Name() string
}

// StepStats describes the most recent step of an integrator
type StepStats struct {
	Integrator string
	Timestep   float64 // accepted step, days
	Iterations int     // predictor-corrector passes
	Rejected   int
	Halvings   int
}

// StatsReporter is implemented by integrators that record per-step statistics
type StatsReporter interface {
	LastStats() StepStats
}

// StepObserver receives the statistics of every step a Simulation takes
type StepObserver interface {
	ObserveStep(stats StepStats, bodies int)
}

// NewIntegrator builds an integrator by name ("ias15" or "leapfrog")
func NewIntegrator(name string, timestep float64) (Integrator, error) {
	if timestep == 0 {
		return nil, errorsmod.Wrap(ErrInvalidTimestep, "timestep must be nonzero")
	}
	switch strings.ToLower(name) {
	case "ias15", "":
		return NewIAS15(timestep), nil
	case "leapfrog":
		return NewLeapfrog(timestep), nil
	}
	return nil, errorsmod.Wrapf(ErrUnknownComponent, "integrator %q", name)
}

// NewForce builds a force by name ("gravity", "gr" or "j2"); center applies to gr and j2
func NewForce(name, center string) (Force, error) {
	switch strings.ToLower(name) {
	case "gravity", "newtonian":
		return NewtonianGravity{}, nil
	case "gr", "solar_gr":
		return NewSolarGR(center), nil
	case "j2", "solar_j2":
		return NewSolarJ2(center), nil
	}
	return nil, errorsmod.Wrapf(ErrUnknownComponent, "force %q", name)
}

type stateSnapshot struct {
	positions  []astromath.Vector3
	velocities []astromath.Vector3
}

func takeSnapshot(bodies []Body) stateSnapshot {
	s := stateSnapshot{
		positions:  make([]astromath.Vector3, len(bodies)),
		velocities: make([]astromath.Vector3, len(bodies)),
	}
	for i := range bodies {
		s.positions[i] = bodies[i].Position
		s.velocities[i] = bodies[i].Velocity
	}
	return s
}

func (s stateSnapshot) restore(bodies []Body, epoch astrotime.Time) {
	for i := range bodies {
		bodies[i].Position = s.positions[i]
		bodies[i].Velocity = s.velocities[i]
		bodies[i].Epoch = epoch
	}
}
