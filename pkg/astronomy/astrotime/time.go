// Package astrotime provides epochs tagged with a timescale and a numeric
// format, and conversions between UTC, TAI, TT and TDB.
package astrotime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"
)

// equalTolerance absorbs round-off from timescale conversion, in days
const equalTolerance = 1e-8

// Time is an epoch value together with its timescale and format
type Time struct {
	Epoch  float64 `json:"epoch" yaml:"epoch"`
	Scale  Scale   `json:"timescale" yaml:"timescale"`
	Format Format  `json:"format" yaml:"format"`
}

// New creates a Time from an epoch and case-insensitive scale and format names
func New(epoch float64, scale, format string) (Time, error) {
	s, err := ParseScale(scale)
	if err != nil {
		return Time{}, err
	}
	f, err := ParseFormat(format)
	if err != nil {
		return Time{}, err
	}
	return Time{Epoch: epoch, Scale: s, Format: f}, nil
}

// FromJD builds a JD-format time in the given scale
func FromJD(jd float64, scale Scale) Time {
	return Time{Epoch: jd, Scale: scale, Format: JD}
}

// FromTime converts a wall-clock time to a UTC Julian date
func FromTime(t time.Time) Time {
	return FromJD(julianFromTime(t.UTC()), UTC)
}

// Now returns the current time in UTC, JD format
func Now() Time {
	return FromTime(time.Now())
}

// Parse reads "now" or "<epoch> <timescale> <format>", e.g. "2451545.0 tdb jd".
// Scale and format are optional; a missing format is inferred from the
// epoch's magnitude and a missing scale defaults to UTC.
func Parse(s string) (Time, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 1 && fields[0] == "now" {
		return Now(), nil
	}
	if len(fields) == 0 || len(fields) > 3 {
		return Time{}, errorsmod.Wrapf(ErrInvalidTime, "%q", s)
	}
	epoch, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Time{}, errorsmod.Wrapf(ErrInvalidTime, "%q: %s", s, err)
	}

	t := Time{Epoch: epoch, Scale: UTC, Format: JD}
	if epoch < 100_000 {
		t.Format = MJD
	}
	if len(fields) > 1 {
		if t.Scale, err = ParseScale(fields[1]); err != nil {
			return Time{}, err
		}
	}
	if len(fields) > 2 {
		if t.Format, err = ParseFormat(fields[2]); err != nil {
			return Time{}, err
		}
	}
	return t, nil
}

// JD returns the epoch as a Julian date in the receiver's scale
func (t Time) JD() float64 {
	if t.Format == MJD {
		return t.Epoch + mjdOffset
	}
	return t.Epoch
}

// MJD returns the epoch as a modified Julian date in the receiver's scale
func (t Time) MJD() float64 {
	if t.Format == MJD {
		return t.Epoch
	}
	return t.Epoch - mjdOffset
}

func (t *Time) setJD(jd float64) {
	if t.Format == MJD {
		t.Epoch = jd - mjdOffset
		return
	}
	t.Epoch = jd
}

// ChangeTimescale rewrites the epoch in place so it denotes the same instant in s
func (t *Time) ChangeTimescale(s Scale) {
	if t.Scale == s {
		return
	}
	t.setJD(ConvertJD(t.JD(), t.Scale, s))
	t.Scale = s
}

// In returns a copy of t converted to scale s
func (t Time) In(s Scale) Time {
	t.ChangeTimescale(s)
	return t
}

// As returns a copy of t expressed in format f
func (t Time) As(f Format) Time {
	jd := t.JD()
	t.Format = f
	t.setJD(jd)
	return t
}

// Add returns t shifted by days
func (t Time) Add(days float64) Time {
	t.Epoch += days
	return t
}

// Sub returns t - other in days. other is first converted to t's scale.
func (t Time) Sub(other Time) float64 {
	o := other.In(t.Scale)
	if o.Format == t.Format {
		return t.Epoch - o.Epoch
	}
	return t.JD() - o.JD()
}

// Equal reports whether two times denote the same instant
func (t Time) Equal(other Time) bool {
	if t == other {
		return true
	}
	return math.Abs(t.Sub(other)) < equalTolerance
}

// Before reports whether t is earlier than other
func (t Time) Before(other Time) bool {
	return t.Sub(other) < 0
}

// Calendar returns the epoch as a wall-clock time in the receiver's scale
func (t Time) Calendar() time.Time {
	return timeFromJulian(t.JD())
}

func (t Time) String() string {
	return fmt.Sprintf("%.9f %s %s", t.Epoch, t.Scale, t.Format)
}
