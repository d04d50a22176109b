package astrotime

import (
	"math"
	"sort"
	"time"
)

const (
	secondsPerDay = 86400.0
	ttMinusTAI    = 32.184 / secondsPerDay
	unixEpochJD   = 2440587.5
	j2000JD       = 2451545.0
)

type leapSecond struct {
	jd     float64
	offset float64
}

// leapSeconds holds TAI-UTC from each UTC date on which it changed
var leapSeconds = buildLeapSeconds([]leapRow{
	{1972, time.January, 10}, {1972, time.July, 11}, {1973, time.January, 12},
	{1974, time.January, 13}, {1975, time.January, 14}, {1976, time.January, 15},
	{1977, time.January, 16}, {1978, time.January, 17}, {1979, time.January, 18},
	{1980, time.January, 19}, {1981, time.July, 20}, {1982, time.July, 21},
	{1983, time.July, 22}, {1985, time.July, 23}, {1988, time.January, 24},
	{1990, time.January, 25}, {1991, time.January, 26}, {1992, time.July, 27},
	{1993, time.July, 28}, {1994, time.July, 29}, {1996, time.January, 30},
	{1997, time.July, 31}, {1999, time.January, 32}, {2006, time.January, 33},
	{2009, time.January, 34}, {2012, time.July, 35}, {2015, time.July, 36},
	{2017, time.January, 37},
})

type leapRow struct {
	year   int
	month  time.Month
	offset float64
}

func buildLeapSeconds(rows []leapRow) []leapSecond {
	out := make([]leapSecond, len(rows))
	for i, r := range rows {
		out[i] = leapSecond{
			jd:     julianFromTime(time.Date(r.year, r.month, 1, 0, 0, 0, 0, time.UTC)),
			offset: r.offset,
		}
	}
	return out
}

// LeapSeconds returns TAI-UTC in seconds at a UTC Julian date. Epochs
// before 1972 use the first table entry.
func LeapSeconds(jd float64) float64 {
	i := sort.Search(len(leapSeconds), func(i int) bool { return leapSeconds[i].jd > jd })
	if i == 0 {
		return leapSeconds[0].offset
	}
	return leapSeconds[i-1].offset
}

func julianFromTime(t time.Time) float64 {
	return float64(t.UnixNano())/1e9/secondsPerDay + unixEpochJD
}

func timeFromJulian(jd float64) time.Time {
	ns := (jd - unixEpochJD) * secondsPerDay * 1e9
	return time.Unix(0, int64(math.Round(ns))).UTC()
}

func utcToTAI(jd float64) float64 { return jd + LeapSeconds(jd)/secondsPerDay }

func taiToUTC(jd float64) float64 {
	guess := jd - LeapSeconds(jd)/secondsPerDay
	return jd - LeapSeconds(guess)/secondsPerDay
}

func taiToTT(jd float64) float64 { return jd + ttMinusTAI }
func ttToTAI(jd float64) float64 { return jd - ttMinusTAI }

// tdbMinusTT is the two-term periodic approximation in days
func tdbMinusTT(jd float64) float64 {
	g := (357.53 + 0.9856003*(jd-j2000JD)) * math.Pi / 180.0
	return (0.001658*math.Sin(g) + 0.000014*math.Sin(2*g)) / secondsPerDay
}

func ttToTDB(jd float64) float64 { return jd + tdbMinusTT(jd) }

func tdbToTT(jd float64) float64 {
	tt := jd - tdbMinusTT(jd)
	return jd - tdbMinusTT(tt)
}

// toTT and fromTT route every conversion through TT
func toTT(jd float64, s Scale) float64 {
	switch s {
	case UTC:
		return taiToTT(utcToTAI(jd))
	case TAI:
		return taiToTT(jd)
	case TDB:
		return tdbToTT(jd)
	}
	return jd
}

func fromTT(jd float64, s Scale) float64 {
	switch s {
	case UTC:
		return taiToUTC(ttToTAI(jd))
	case TAI:
		return ttToTAI(jd)
	case TDB:
		return ttToTDB(jd)
	}
	return jd
}

// ConvertJD converts a Julian date between timescales
func ConvertJD(jd float64, from, to Scale) float64 {
	if from == to {
		return jd
	}
	return fromTT(toTT(jd, from), to)
}
