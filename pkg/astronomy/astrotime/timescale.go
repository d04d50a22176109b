package astrotime

import (
	"strings"

	errorsmod "cosmossdk.io/errors"
)

// Scale is the physical timescale an epoch is expressed in
type Scale int

const (
	UTC Scale = iota
	TDB
	TT
	TAI
)

// Format is the numeric representation of an epoch
type Format int

const (
	JD Format = iota
	MJD
)

// mjdOffset is JD - MJD
const mjdOffset = 2400000.5

func (s Scale) String() string {
	switch s {
	case UTC:
		return "UTC"
	case TDB:
		return "TDB"
	case TT:
		return "TT"
	case TAI:
		return "TAI"
	}
	return "UNKNOWN"
}

// ParseScale accepts a case-insensitive timescale name
func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "utc":
		return UTC, nil
	case "tdb":
		return TDB, nil
	case "tt":
		return TT, nil
	case "tai":
		return TAI, nil
	}
	return UTC, errorsmod.Wrapf(ErrInvalidTimeScale, "%q", s)
}

func (s Scale) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Scale) UnmarshalText(b []byte) error {
	v, err := ParseScale(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (f Format) String() string {
	switch f {
	case JD:
		return "JD"
	case MJD:
		return "MJD"
	}
	return "UNKNOWN"
}

// ParseFormat accepts "jd" or "mjd" in any case
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jd":
		return JD, nil
	case "mjd":
		return MJD, nil
	}
	return JD, errorsmod.Wrapf(ErrInvalidTimeFormat, "%q", s)
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
