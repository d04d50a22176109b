// Package constants holds the physical constants and body tables shared by
// the simulation packages. Units are AU, days and solar masses throughout.
package constants

import "strings"

const (
	// GravitationalConstant in AU³/(M☉·day²)
	GravitationalConstant = 0.00029591220828559104

	// SpeedOfLight in AU/day
	SpeedOfLight = 173.14463268466926

	KmPerAU       = 149_597_870.700
	KmToAU        = 1.0 / KmPerAU
	SecondsPerDay = 86_400.0

	// KmPerSecondToAUPerDay converts km/s into AU/day
	KmPerSecondToAUPerDay = KmToAU * SecondsPerDay

	// GM conversion from km³/s² to AU³/day²
	Km3PerSecond2ToAU3PerDay2 = KmToAU * KmToAU * KmToAU * SecondsPerDay * SecondsPerDay

	// MuSun and MuBarycenter are the gravitational parameters of the named origins
	MuSun        = 0.0002959122082841195
	MuBarycenter = 2.9630927493968080e-04

	// SunJ2 and SunRadius parameterise the solar oblateness term
	SunJ2     = 2.17e-7
	SunRadius = 696_342.0 * KmToAU
)

// gm lists GM values in km³/s², as published with the DE440 and SB441-N16 kernels
var gm = map[string]float64{
	"sun":                1.3271244004127942e11,
	"mercury barycenter": 2.2031868551400003e4,
	"venus barycenter":   3.24858592e5,
	"earth":              3.9860043550702266e5,
	"moon":               4.9028001184575496e3,
	"earth barycenter":   4.0350323562548019e5,
	"mars barycenter":    4.282837581575610e4,
	"jupiter barycenter": 1.2671276409999998e8,
	"saturn barycenter":  3.79405848418e7,
	"uranus barycenter":  5.7945563999999985e6,
	"neptune barycenter": 6.836527100580399e6,
	"pluto barycenter":   9.755e2,
	"2000001":            6.2628888644409933e1,
	"2000002":            1.3665878145967422e1,
	"2000003":            1.9205707002025889,
	"2000004":            1.7288232879171513e1,
	"2000007":            1.1398723232184107,
	"2000010":            5.6251476453852289,
	"2000015":            2.0230209871098284,
	"2000016":            1.5896582441709424,
	"2000031":            1.0793714577033560,
	"2000052":            2.6830359242821795,
	"2000065":            9.3810575639151328e-1,
	"2000087":            2.1682320736996910,
	"2000088":            1.1898077088121908,
	"2000107":            1.4437384031866001,
	"2000511":            3.8944831481705644,
	"2000704":            2.8304096393299849,
}

// KnownMass returns the mass in solar masses of a body from the GM table.
// Lookup is case-insensitive.
func KnownMass(name string) (float64, bool) {
	v, ok := gm[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, false
	}
	return v * Km3PerSecond2ToAU3PerDay2 / GravitationalConstant, true
}

// Body name sets used by the preset simulations.
var (
	GiantNames = []string{
		"sun",
		"jupiter barycenter",
		"saturn barycenter",
		"uranus barycenter",
		"neptune barycenter",
	}

	PlanetNames = []string{
		"sun",
		"mercury barycenter",
		"venus barycenter",
		"earth barycenter",
		"mars barycenter",
		"jupiter barycenter",
		"saturn barycenter",
		"uranus barycenter",
		"neptune barycenter",
	}

	// HorizonsNames is the perturber set JPL Horizons uses for small-body integrations
	HorizonsNames = []string{
		"sun",
		"mercury barycenter",
		"venus barycenter",
		"earth",
		"moon",
		"mars barycenter",
		"jupiter barycenter",
		"saturn barycenter",
		"uranus barycenter",
		"neptune barycenter",
		"pluto barycenter",
		"2000001", "2000002", "2000003", "2000004", "2000007", "2000010",
		"2000015", "2000016", "2000031", "2000052", "2000065", "2000087",
		"2000088", "2000107", "2000511", "2000704",
	}
)
