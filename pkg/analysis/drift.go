// Package analysis turns integration output into report figures: energy
// drift statistics and the change of each body's osculating orbit.
package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kjnapes/spacerocks/internal/types"
	"github.com/kjnapes/spacerocks/pkg/astronomy/astrotime"
	"github.com/kjnapes/spacerocks/pkg/astronomy/nbody"
	"github.com/kjnapes/spacerocks/pkg/astronomy/orbital"
)

// EnergyRecorder is a snapshot sink that records the total energy at every
// snapshot and passes the snapshot on to Next, if set
type EnergyRecorder struct {
	Next     nbody.SnapshotSink
	energies []float64
	initial  []nbody.Body
	last     []nbody.Body
}

func NewEnergyRecorder(next nbody.SnapshotSink) *EnergyRecorder {
	return &EnergyRecorder{Next: next}
}

func (r *EnergyRecorder) OnStart(estimated, every int) error {
	r.energies = r.energies[:0]
	r.initial, r.last = nil, nil
	if r.Next != nil {
		return r.Next.OnStart(estimated, every)
	}
	return nil
}

func (r *EnergyRecorder) OnSnapshot(epoch astrotime.Time, bodies []nbody.Body) error {
	r.energies = append(r.energies, nbody.Energy(bodies))
	if r.initial == nil {
		r.initial = cloneBodies(bodies)
	}
	r.last = cloneBodies(bodies)
	if r.Next != nil {
		return r.Next.OnSnapshot(epoch, bodies)
	}
	return nil
}

func (r *EnergyRecorder) OnEnd(final astrotime.Time) error {
	if r.Next != nil {
		return r.Next.OnEnd(final)
	}
	return nil
}

func (r *EnergyRecorder) Close() error {
	if r.Next != nil {
		return r.Next.Close()
	}
	return nil
}

// Snapshots is the number of snapshots seen since the last OnStart
func (r *EnergyRecorder) Snapshots() int { return len(r.energies) }

// Drift summarizes the relative energy error against the first snapshot
func (r *EnergyRecorder) Drift() types.EnergyDrift {
	return EnergyDrift(r.energies)
}

// Changes compares the first and last recorded states
func (r *EnergyRecorder) Changes() []types.BodyChange {
	return ElementChanges(r.initial, r.last)
}

func cloneBodies(bodies []nbody.Body) []nbody.Body {
	out := make([]nbody.Body, len(bodies))
	for i, b := range bodies {
		out[i] = b.Clone()
	}
	return out
}

// EnergyDrift computes statistics of |E_i - E_0| / |E_0|. A zero initial
// energy yields absolute rather than relative errors.
func EnergyDrift(energies []float64) types.EnergyDrift {
	if len(energies) == 0 {
		return types.EnergyDrift{}
	}
	e0 := energies[0]
	scale := math.Abs(e0)
	if scale == 0 {
		scale = 1
	}

	rel := make([]float64, len(energies))
	for i, e := range energies {
		rel[i] = math.Abs(e-e0) / scale
	}
	mean, std := stat.MeanStdDev(rel, nil)
	if len(rel) == 1 {
		std = 0
	}

	return types.EnergyDrift{
		Initial: e0,
		Final:   energies[len(energies)-1],
		Mean:    mean,
		StdDev:  std,
		Max:     floats.Max(rel),
	}
}

// ElementChanges matches bodies by name and reports how each bound orbit
// changed. Unbound states and origins without a mass are skipped.
func ElementChanges(initial, final []nbody.Body) []types.BodyChange {
	byName := make(map[string]nbody.Body, len(initial))
	for _, b := range initial {
		byName[b.Name] = b
	}

	var changes []types.BodyChange
	for _, f := range final {
		i, ok := byName[f.Name]
		if !ok || f.Origin.Mu() == 0 {
			continue
		}
		before, err := i.Elements()
		if err != nil {
			continue
		}
		after, err := f.Elements()
		if err != nil {
			continue
		}

		changes = append(changes, types.BodyChange{
			Name:              f.Name,
			SemiMajorAxis:     after.SemiMajorAxis,
			Eccentricity:      after.Eccentricity,
			PerihelionShift:   after.Perihelion() - before.Perihelion(),
			InclinationChange: degrees(after.Inclination - before.Inclination),
			LongPeriChange:    wrapDegrees(degrees(longPeri(after) - longPeri(before))),
		})
	}
	return changes
}

func longPeri(oe orbital.Elements) float64 {
	return oe.LongitudeAscendingNode + oe.ArgumentPerihelion
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// wrapDegrees maps an angle difference into (-180, 180]
func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}
