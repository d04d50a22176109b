package nbody

import (
	"fmt"
	"math"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	"github.com/kjnapes/spacerocks/pkg/astronomy/astrotime"
	astromath "github.com/kjnapes/spacerocks/pkg/astronomy/math"
)

// Gauss-Radau spacings
var gaussRadauH = [8]float64{
	0.0, 0.05626256053692215, 0.18024069173689236, 0.3526247171131696,
	0.5471536263305554, 0.7342101772154105, 0.8853209468390958, 0.9775206135612875,
}

// rr holds the node differences h_i - h_j used by the divided differences
var rr = [28]float64{
	0.05626256053692215, 0.18024069173689236, 0.12397813119997021, 0.3526247171131696,
	0.2963621565762475, 0.17238402537627728, 0.5471536263305554, 0.49089106579363323,
	0.36691293459366303, 0.19452890921738575, 0.7342101772154105, 0.6779476166784884,
	0.5539694854785182, 0.38158546010224087, 0.18705655088485515, 0.8853209468390958,
	0.8290583863021737, 0.7050802551022034, 0.5326962297259261, 0.33816732050854037,
	0.15111076962368525, 0.9775206135612875, 0.9212580530243654, 0.7972799218243951,
	0.6248958964481178, 0.43036698723073213, 0.24331043634587696, 0.09219966672219174,
}

// cc converts g increments into b increments
var cc = [21]float64{
	-0.05626256053692215, 0.01014080283006363, -0.23650325227381452, -0.0035758977292516176,
	0.09353769525946207, -0.5891279693869842, 0.001956565409947221, -0.05475538688906869,
	0.41588120008230683, -1.1362815957175396, -0.0014365302363708915, 0.042158527721268706,
	-0.3600995965020568, 1.250150711840691, -1.87049177293295, 0.0012717903090268678,
	-0.03876035791590677, 0.360962243452846, -1.466884208400427, 2.9061362593084294,
	-2.7558127197720457,
}

// dd converts b coefficients into g coefficients
var dd = [21]float64{
	0.05626256053692215, 0.0031654757181708293, 0.23650325227381452, 0.00017809776922174338,
	0.04579298550602792, 0.5891279693869842, 0.000010020236522329128, 0.008431857153525702,
	0.25353406905456927, 1.1362815957175396, 0.0000005637641639318208, 0.0015297840025004657,
	0.09783423653244401, 0.8752546646840911, 1.87049177293295, 0.000000031718815401761364,
	0.0002762930909826477, 0.03602855398373646, 0.5767330002770787, 2.24858876076916,
	2.7558127197720457,
}

// binomial[j][m] is C(m+1, j+1), the rescaling weight of b_m in e_j
var binomial = [7][7]float64{
	{1, 2, 3, 4, 5, 6, 7},
	{0, 1, 3, 6, 10, 15, 21},
	{0, 0, 1, 4, 10, 20, 35},
	{0, 0, 0, 1, 5, 15, 35},
	{0, 0, 0, 0, 1, 6, 21},
	{0, 0, 0, 0, 0, 1, 7},
	{0, 0, 0, 0, 0, 0, 1},
}

const (
	safetyFactor          = 0.1
	defaultEpsilon        = 1e-9
	convergedError        = 1e-16
	maxPredictorCorrector = 10
	resetRatio            = 20.0

	// DefaultMaxRetries bounds the halvings and rejections of a single step
	DefaultMaxRetries = 32
)

// CoefficientSeptet holds the seven polynomial correction vectors of one body
type CoefficientSeptet [7]astromath.Vector3

type coefficientSlot struct {
	b, g, e, bLast, eLast CoefficientSeptet
}

// IAS15 is the adaptive 15th order Gauss-Radau predictor-corrector.
//
// Correction coefficients are cached per body name, so adding or removing
// bodies keeps the warm start of the others.
type IAS15 struct {
	Epsilon    float64
	MaxRetries int
	Logger     log.Logger

	timestep     float64
	lastTimestep float64
	cache        map[string]*coefficientSlot
	stats        StepStats
}

func NewIAS15(timestep float64) *IAS15 {
	return &IAS15{
		Epsilon:    defaultEpsilon,
		MaxRetries: DefaultMaxRetries,
		Logger:     log.NewNopLogger(),
		timestep:   timestep,
		cache:      make(map[string]*coefficientSlot),
	}
}

func (ias *IAS15) Name() string { return "ias15" }
func (ias *IAS15) Timestep() float64 { return ias.timestep }
func (ias *IAS15) SetTimestep(dt float64) { ias.timestep = dt }
func (ias *IAS15) LastStats() StepStats { return ias.stats }

// LastTimestep is the most recently accepted step, zero before the first
func (ias *IAS15) LastTimestep() float64 { return ias.lastTimestep }

// Coefficients returns a copy of the current b coefficients of a body
func (ias *IAS15) Coefficients(name string) (CoefficientSeptet, bool) {
	s, ok := ias.cache[name]
	if !ok {
		return CoefficientSeptet{}, false
	}
	return s.b, true
}

func (ias *IAS15) Clone() Integrator {
	c := *ias
	c.cache = make(map[string]*coefficientSlot, len(ias.cache))
	for k, v := range ias.cache {
		slot := *v
		c.cache[k] = &slot
	}
	return &c
}

func (ias *IAS15) logger() log.Logger {
	if ias.Logger == nil {
		return log.NewNopLogger()
	}
	return ias.Logger
}

// bind returns one slot per body, reusing cached slots by name. Slots of
// bodies that are gone are dropped. A repeated name gets a positional key.
func (ias *IAS15) bind(bodies []Body) []*coefficientSlot {
	slots := make([]*coefficientSlot, len(bodies))
	next := make(map[string]*coefficientSlot, len(bodies))
	for i := range bodies {
		key := bodies[i].Name
		if _, taken := next[key]; taken {
			key = fmt.Sprintf("%s#%d", key, i)
		}
		slot, ok := ias.cache[key]
		if !ok {
			slot = &coefficientSlot{}
		}
		next[key] = slot
		slots[i] = slot
	}
	ias.cache = next
	return slots
}

func (ias *IAS15) Step(bodies []Body, clock *astrotime.Time, forces []Force) error {
	ias.stats = StepStats{Integrator: ias.Name()}
	n := len(bodies)
	slots := ias.bind(bodies)
	t0 := *clock
	start := takeSnapshot(bodies)

	a0 := make([]astromath.Vector3, n)
	if err := totalAcceleration(bodies, forces, a0); err != nil {
		return err
	}
	acc := make([]astromath.Vector3, n)

	for attempt := 0; ; attempt++ {
		dt := ias.timestep
		if dt == 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
			start.restore(bodies, t0)
			return errorsmod.Wrapf(ErrInvalidTimestep, "%g", dt)
		}
		if attempt > ias.MaxRetries {
			start.restore(bodies, t0)
			return errorsmod.Wrapf(ErrConvergenceFailure, "gave up after %d retries at timestep %g", ias.MaxRetries, dt)
		}

		for _, s := range slots {
			s.g = gFromB(&s.b)
		}

		converged, err := ias.predictorCorrector(bodies, slots, start, a0, acc, t0, dt, forces)
		if err != nil {
			start.restore(bodies, t0)
			return err
		}
		if !converged {
			start.restore(bodies, t0)
			ias.stats.Halvings++
			ias.timestep = dt / 2
			ias.logger().Debug("predictor-corrector did not converge, halving timestep", "timestep", ias.timestep)
			ias.rescale(slots)
			continue
		}

		newDt := ias.nextTimestep(a0, slots, dt)
		ratio := math.Abs(newDt / dt)
		if ratio < safetyFactor {
			start.restore(bodies, t0)
			ias.stats.Rejected++
			ias.timestep = newDt
			ias.logger().Debug("step rejected", "timestep", dt, "next", newDt)
			ias.rescale(slots)
			continue
		}
		if ratio > 1/safetyFactor {
			newDt = dt / safetyFactor
		}

		ias.accept(bodies, slots, start, a0, dt)
		*clock = t0.Add(dt)
		for i := range bodies {
			bodies[i].Epoch = *clock
		}

		ias.lastTimestep = dt
		ias.timestep = newDt
		for _, s := range slots {
			s.eLast = s.e
			s.bLast = s.b
		}
		predictNext(slots, newDt/dt)

		ias.stats.Timestep = dt
		return nil
	}
}

// rescale re-predicts b for a changed timestep from the last accepted step
func (ias *IAS15) rescale(slots []*coefficientSlot) {
	if ias.lastTimestep != 0 {
		predictNext(slots, ias.timestep/ias.lastTimestep)
	}
}

// predictorCorrector iterates the seven substeps until b6 stops changing.
// It reports false when maxPredictorCorrector passes were not enough.
func (ias *IAS15) predictorCorrector(bodies []Body, slots []*coefficientSlot, start stateSnapshot, a0, acc []astromath.Vector3, t0 astrotime.Time, dt float64, forces []Force) (bool, error) {
	pcError := 1e300
	pcErrorLast := 2.0

	for iterations := 0; ; iterations++ {
		if pcError < convergedError {
			return true, nil
		}
		if iterations >= 2 && pcErrorLast <= pcError {
			return true, nil
		}
		if iterations >= maxPredictorCorrector {
			return false, nil
		}
		pcErrorLast = pcError
		ias.stats.Iterations++

		for k := 1; k < 8; k++ {
			h := gaussRadauH[k]
			for i := range bodies {
				b := &slots[i].b
				bodies[i].Position = start.positions[i].Add(substepPosition(b, a0[i], start.velocities[i], dt, h))
				bodies[i].Velocity = start.velocities[i].Add(substepVelocity(b, a0[i], start.velocities[i], dt, h))
				bodies[i].Epoch = t0.Add(dt * h)
			}

			if err := totalAcceleration(bodies, forces, acc); err != nil {
				return false, err
			}

			var maxDelta, maxAcc float64
			for i := range bodies {
				delta := updateCoefficients(k, slots[i], a0[i], acc[i])
				if k != 7 {
					continue
				}
				if d := delta.Magnitude(); d > maxDelta && isNormal(d) {
					maxDelta = d
				}
				if a := acc[i].Magnitude(); a > maxAcc && isNormal(a) {
					maxAcc = a
				}
			}
			if k == 7 {
				pcError = 0
				if e := maxDelta / maxAcc; isNormal(e) {
					pcError = e
				}
			}
		}
	}
}

// substepPosition is the position change at fraction h of the step
func substepPosition(b *CoefficientSeptet, a0, v0 astromath.Vector3, dt, h float64) astromath.Vector3 {
	s := b[6].Scale(7 * h / 9).Add(b[5])
	s = s.Scale(3 * h / 4).Add(b[4])
	s = s.Scale(5 * h / 7).Add(b[3])
	s = s.Scale(2 * h / 3).Add(b[2])
	s = s.Scale(3 * h / 5).Add(b[1])
	s = s.Scale(h / 2).Add(b[0])
	s = s.Scale(h / 3).Add(a0)
	s = s.Scale(dt * h / 2).Add(v0)
	return s.Scale(dt * h)
}

// substepVelocity is the velocity change at fraction h of the step
func substepVelocity(b *CoefficientSeptet, a0, v0 astromath.Vector3, dt, h float64) astromath.Vector3 {
	s := b[6].Scale(7 * h / 8).Add(b[5])
	s = s.Scale(6 * h / 7).Add(b[4])
	s = s.Scale(5 * h / 6).Add(b[3])
	s = s.Scale(4 * h / 5).Add(b[2])
	s = s.Scale(3 * h / 4).Add(b[1])
	s = s.Scale(2 * h / 3).Add(b[0])
	s = s.Scale(h / 2).Add(a0)
	return s.Scale(dt * h)
}

// updateCoefficients refreshes g[k-1] from the acceleration at substep k by
// divided differences and propagates the change into b. It returns the
// change in g[k-1].
func updateCoefficients(k int, slot *coefficientSlot, a0, a astromath.Vector3) astromath.Vector3 {
	j := k - 1
	r0 := k * (k - 1) / 2
	c0 := (k - 1) * (k - 2) / 2

	g := a.Sub(a0).Scale(1 / rr[r0])
	for m := 0; m < j; m++ {
		g = g.Sub(slot.g[m]).Scale(1 / rr[r0+m+1])
	}
	delta := g.Sub(slot.g[j])
	slot.g[j] = g

	for m := 0; m < j; m++ {
		slot.b[m] = slot.b[m].AddScaled(delta, cc[c0+m])
	}
	slot.b[j] = slot.b[j].Add(delta)
	return delta
}

func gFromB(b *CoefficientSeptet) CoefficientSeptet {
	var g CoefficientSeptet
	for j := 0; j < 7; j++ {
		g[j] = b[j]
		for m := j + 1; m < 7; m++ {
			g[j] = g[j].AddScaled(b[m], dd[m*(m-1)/2+j])
		}
	}
	return g
}

// nextTimestep estimates the step that keeps the b6 term near epsilon
func (ias *IAS15) nextTimestep(a0 []astromath.Vector3, slots []*coefficientSlot, dt float64) float64 {
	minTimescale2 := math.Inf(1)
	for i, s := range slots {
		if !isNormal(a0[i].MagnitudeSquared()) {
			continue
		}
		b := &s.b

		var sum, d1, d2 astromath.Vector3
		for k := 0; k < 7; k++ {
			sum = sum.Add(b[k])
			d1 = d1.AddScaled(b[k], float64(k+1))
			d2 = d2.AddScaled(b[k], float64((k+1)*k))
		}
		y2 := a0[i].Add(sum).MagnitudeSquared()
		y3 := d1.MagnitudeSquared()
		y4 := d2.MagnitudeSquared()

		timescale2 := 2 * y2 / (y3 + math.Sqrt(y4*y2))
		if timescale2 < minTimescale2 && isNormal(timescale2) {
			minTimescale2 = timescale2
		}
	}

	if isNormal(minTimescale2) {
		return math.Sqrt(minTimescale2) * dt * math.Pow(ias.Epsilon*5040, 1.0/7.0)
	}
	return dt / safetyFactor
}

// accept advances every body over the full step with the closed-form polynomial
func (ias *IAS15) accept(bodies []Body, slots []*coefficientSlot, start stateSnapshot, a0 []astromath.Vector3, dt float64) {
	for i := range bodies {
		b := &slots[i].b

		pos := a0[i].Scale(0.5)
		vel := a0[i]
		for k := 0; k < 7; k++ {
			pos = pos.AddScaled(b[k], 1/float64((k+2)*(k+3)))
			vel = vel.AddScaled(b[k], 1/float64(k+2))
		}

		bodies[i].Position = start.positions[i].AddScaled(start.velocities[i], dt).AddScaled(pos, dt*dt)
		bodies[i].Velocity = start.velocities[i].AddScaled(vel, dt)
	}
}

// predictNext extrapolates b for a step ratio times the last accepted one.
// Extreme ratios discard the history instead.
func predictNext(slots []*coefficientSlot, ratio float64) {
	if math.Abs(ratio) > resetRatio {
		for _, s := range slots {
			s.e = CoefficientSeptet{}
			s.b = CoefficientSeptet{}
		}
		return
	}

	var q [7]float64
	q[0] = ratio
	for j := 1; j < 7; j++ {
		q[j] = q[j-1] * ratio
	}

	for _, s := range slots {
		for j := 0; j < 7; j++ {
			var e astromath.Vector3
			for m := j; m < 7; m++ {
				e = e.AddScaled(s.bLast[m], binomial[j][m])
			}
			s.e[j] = e.Scale(q[j])
			s.b[j] = s.e[j].Add(s.bLast[j].Sub(s.eLast[j]))
		}
	}
}

// isNormal mirrors IEEE-754 normality: finite, nonzero and not subnormal
func isNormal(x float64) bool {
	x = math.Abs(x)
	return x >= 0x1p-1022 && !math.IsInf(x, 0) && !math.IsNaN(x)
}
