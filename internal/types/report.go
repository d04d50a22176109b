package types

import (
	"time"
)

// IntegrationReport summarizes one integration run
type IntegrationReport struct {
	Name        string        `json:"name" yaml:"name"`
	Integrator  string        `json:"integrator" yaml:"integrator"`
	Forces      []string      `json:"forces" yaml:"forces"`
	Bodies      int           `json:"bodies" yaml:"bodies"`
	StartEpoch  string        `json:"start_epoch" yaml:"start_epoch"`
	EndEpoch    string        `json:"end_epoch" yaml:"end_epoch"`
	Snapshots   int           `json:"snapshots" yaml:"snapshots"`
	Energy      EnergyDrift   `json:"energy" yaml:"energy"`
	Changes     []BodyChange  `json:"changes,omitempty" yaml:"changes,omitempty"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
	Error       string        `json:"error,omitempty" yaml:"error,omitempty"`
	CompletedAt time.Time     `json:"completed_at" yaml:"completed_at"`
}

// EnergyDrift describes |E(t) - E0| / |E0| over the recorded snapshots
type EnergyDrift struct {
	Initial float64 `json:"initial" yaml:"initial"`
	Final   float64 `json:"final" yaml:"final"`
	Mean    float64 `json:"mean" yaml:"mean"`
	StdDev  float64 `json:"std_dev" yaml:"std_dev"`
	Max     float64 `json:"max" yaml:"max"`
}

// BodyChange is the change of a body's osculating orbit over a run
type BodyChange struct {
	Name              string  `json:"name" yaml:"name"`
	SemiMajorAxis     float64 `json:"semi_major_axis" yaml:"semi_major_axis"`       // AU, final
	Eccentricity      float64 `json:"eccentricity" yaml:"eccentricity"`             // final
	PerihelionShift   float64 `json:"perihelion_shift" yaml:"perihelion_shift"`     // AU
	InclinationChange float64 `json:"inclination_change" yaml:"inclination_change"` // degrees
	LongPeriChange    float64 `json:"long_peri_change" yaml:"long_peri_change"`     // degrees, wrapped to (-180, 180]
}
