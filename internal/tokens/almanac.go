package tokens

import (
	"math"
	"time"
)

// Calendar math is date-only and anchored to fixed reference instants so the
// expanded text is reproducible for a given wall-clock date.
const (
	// Mean synodic month in days.
	synodicMonthDays = 29.530588853

	// Half a draconic year in days; eclipse seasons recur on this cadence.
	eclipseHalfCycleDays = 173.31

	// An eclipse season spans roughly 34.6 days centered on a node crossing.
	eclipseSeasonHalfWidthDays = 17.3
)

// newMoonAnchor is the new moon of 2000-01-06 18:14 UTC.
var newMoonAnchor = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

// eclipseAnchor is the total solar eclipse of 2024-04-08, a node crossing.
var eclipseAnchor = time.Date(2024, time.April, 8, 18, 17, 0, 0, time.UTC)

// ZodiacSign returns the tropical sun sign for the given date.
func ZodiacSign(t time.Time) string {
	m, d := int(t.Month()), t.Day()
	switch {
	case (m == 3 && d >= 21) || (m == 4 && d <= 19):
		return "Aries"
	case (m == 4 && d >= 20) || (m == 5 && d <= 20):
		return "Taurus"
	case (m == 5 && d >= 21) || (m == 6 && d <= 20):
		return "Gemini"
	case (m == 6 && d >= 21) || (m == 7 && d <= 22):
		return "Cancer"
	case (m == 7 && d >= 23) || (m == 8 && d <= 22):
		return "Leo"
	case (m == 8 && d >= 23) || (m == 9 && d <= 22):
		return "Virgo"
	case (m == 9 && d >= 23) || (m == 10 && d <= 22):
		return "Libra"
	case (m == 10 && d >= 23) || (m == 11 && d <= 21):
		return "Scorpio"
	case (m == 11 && d >= 22) || (m == 12 && d <= 21):
		return "Sagittarius"
	case (m == 12 && d >= 22) || (m == 1 && d <= 19):
		return "Capricorn"
	case (m == 1 && d >= 20) || (m == 2 && d <= 18):
		return "Aquarius"
	default:
		return "Pisces"
	}
}

// moonAgeDays returns days elapsed in the current lunation, in [0, synodic).
func moonAgeDays(t time.Time) float64 {
	days := t.Sub(newMoonAnchor).Hours() / 24
	age := math.Mod(days, synodicMonthDays)
	if age < 0 {
		age += synodicMonthDays
	}
	return age
}

// MoonPhase names the lunar phase for the given instant.
func MoonPhase(t time.Time) string {
	frac := moonAgeDays(t) / synodicMonthDays
	switch {
	case frac < 0.0625 || frac >= 0.9375:
		return "new moon"
	case frac < 0.1875:
		return "waxing crescent"
	case frac < 0.3125:
		return "first quarter"
	case frac < 0.4375:
		return "waxing gibbous"
	case frac < 0.5625:
		return "full moon"
	case frac < 0.6875:
		return "waning gibbous"
	case frac < 0.8125:
		return "last quarter"
	default:
		return "waning crescent"
	}
}

// LunarIllumination returns the illuminated fraction of the moon as a
// percentage, using the cosine approximation over the synodic cycle.
func LunarIllumination(t time.Time) int {
	frac := moonAgeDays(t) / synodicMonthDays
	illum := 50 * (1 - math.Cos(2*math.Pi*frac))
	return int(math.Round(illum))
}

// RulingPlanet maps the weekday to its classical planetary ruler.
func RulingPlanet(t time.Time) string {
	switch t.Weekday() {
	case time.Sunday:
		return "the Sun"
	case time.Monday:
		return "the Moon"
	case time.Tuesday:
		return "Mars"
	case time.Wednesday:
		return "Mercury"
	case time.Thursday:
		return "Jupiter"
	case time.Friday:
		return "Venus"
	default:
		return "Saturn"
	}
}

// Season returns the northern-hemisphere season by calendar date.
func Season(t time.Time) string {
	m, d := int(t.Month()), t.Day()
	switch {
	case m == 3 && d >= 20, m == 4, m == 5, m == 6 && d < 21:
		return "spring"
	case m == 6, m == 7, m == 8, m == 9 && d < 22:
		return "summer"
	case m == 9, m == 10, m == 11, m == 12 && d < 21:
		return "autumn"
	default:
		return "winter"
	}
}

// InEclipseSeason reports whether the date falls inside an eclipse season.
// This is a heuristic built on the mean node-crossing cadence, good enough
// for a horoscope line, not for astronomy.
func InEclipseSeason(t time.Time) bool {
	days := t.Sub(eclipseAnchor).Hours() / 24
	offset := math.Mod(days, eclipseHalfCycleDays)
	if offset < 0 {
		offset += eclipseHalfCycleDays
	}
	return offset <= eclipseSeasonHalfWidthDays || offset >= eclipseHalfCycleDays-eclipseSeasonHalfWidthDays
}
