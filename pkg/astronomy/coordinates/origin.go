package coordinates

import (
	"encoding/json"
	"strings"

	errorsmod "cosmossdk.io/errors"

	"github.com/kjnapes/spacerocks/pkg/astronomy/constants"
)

// Origin is the point a state vector is measured from. The zero value is
// not a valid origin; use SSB, Sun or NewCustomOrigin.
type Origin struct {
	name string
	mu   float64
}

// SSB is the solar system barycenter
func SSB() Origin { return Origin{name: "SSB", mu: constants.MuBarycenter} }

// Sun is the heliocenter
func Sun() Origin { return Origin{name: "SUN", mu: constants.MuSun} }

// NewCustomOrigin builds an origin with an explicit gravitational parameter
func NewCustomOrigin(mu float64, name string) Origin {
	return Origin{name: name, mu: mu}
}

// ParseOrigin accepts SSB or SUN in any case
func ParseOrigin(s string) (Origin, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SSB":
		return SSB(), nil
	case "SUN":
		return Sun(), nil
	}
	return Origin{}, errorsmod.Wrapf(ErrInvalidOrigin, "%q", s)
}

// Name returns the origin's name; for a custom origin this is the body name
func (o Origin) Name() string { return o.name }

// Mu returns G times the origin's mass
func (o Origin) Mu() float64 { return o.mu }

// IsZero reports whether o is the unset zero value
func (o Origin) IsZero() bool { return o.name == "" && o.mu == 0 }

func (o Origin) String() string { return o.name }

type originJSON struct {
	Name string  `json:"name" yaml:"name"`
	Mu   float64 `json:"mu" yaml:"mu"`
}

func (o Origin) MarshalJSON() ([]byte, error) {
	return json.Marshal(originJSON{Name: o.name, Mu: o.mu})
}

func (o *Origin) UnmarshalJSON(b []byte) error {
	var raw originJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*o = NewCustomOrigin(raw.Mu, raw.Name)
	return nil
}

// MarshalYAML writes the origin as a name/mu mapping
func (o Origin) MarshalYAML() (interface{}, error) {
	return originJSON{Name: o.name, Mu: o.mu}, nil
}

// UnmarshalYAML accepts either a bare well-known name or a name/mu mapping
func (o *Origin) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		v, err := ParseOrigin(name)
		if err != nil {
			return err
		}
		*o = v
		return nil
	}
	var raw originJSON
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if raw.Mu == 0 {
		v, err := ParseOrigin(raw.Name)
		if err != nil {
			return err
		}
		*o = v
		return nil
	}
	*o = NewCustomOrigin(raw.Mu, raw.Name)
	return nil
}
