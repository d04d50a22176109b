package nbody

import (
	"github.com/kjnapes/spacerocks/pkg/astronomy/astrotime"
	astromath "github.com/kjnapes/spacerocks/pkg/astronomy/math"
)

// Leapfrog is the fixed-step, second order, symplectic drift-kick-drift scheme
type Leapfrog struct {
	timestep float64
	stats    StepStats
}

func NewLeapfrog(timestep float64) *Leapfrog {
	return &Leapfrog{timestep: timestep}
}

func (l *Leapfrog) Step(bodies []Body, clock *astrotime.Time, forces []Force) error {
	dt := l.timestep
	half := 0.5 * dt
	start := takeSnapshot(bodies)

	// drift
	for i := range bodies {
		bodies[i].Position = bodies[i].Position.AddScaled(bodies[i].Velocity, half)
		bodies[i].Epoch = bodies[i].Epoch.Add(half)
	}

	acc := make([]astromath.Vector3, len(bodies))
	if err := totalAcceleration(bodies, forces, acc); err != nil {
		start.restore(bodies, *clock)
		return err
	}

	*clock = clock.Add(dt)

	// kick, drift
	for i := range bodies {
		bodies[i].Velocity = bodies[i].Velocity.AddScaled(acc[i], dt)
		bodies[i].Position = bodies[i].Position.AddScaled(bodies[i].Velocity, half)
		bodies[i].Epoch = *clock
	}

	l.stats = StepStats{Integrator: l.Name(), Timestep: dt, Iterations: 1}
	return nil
}

func (l *Leapfrog) Timestep() float64 { return l.timestep }
func (l *Leapfrog) SetTimestep(dt float64) { l.timestep = dt }
func (l *Leapfrog) Name() string { return "leapfrog" }
func (l *Leapfrog) LastStats() StepStats { return l.stats }

func (l *Leapfrog) Clone() Integrator {
	c := *l
	return &c
}
