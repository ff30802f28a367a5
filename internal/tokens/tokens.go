// Package tokens expands symbolic placeholders inside service text templates.
//
// The placeholder vocabulary is closed: a template referencing a name that is
// neither a built-in token nor a fetched capability field is a configuration
// bug and yields an error instead of leaking braces to the caller.
package tokens

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Context carries the per-render values the built-in tokens derive from.
type Context struct {
	Now       time.Time
	City      string
	Extension string
	CallID    string
	RenderID  string
}

var placeholderRE = regexp.MustCompile(`\{([a-z][a-z0-9_]*)\}`)

// vocabulary maps each built-in placeholder to its renderer.
var vocabulary = map[string]func(Context) string{
	"time":               func(c Context) string { return clockTime(c.Now) },
	"seconds":            func(c Context) string { return strconv.Itoa(c.Now.Second()) },
	"date":               func(c Context) string { return c.Now.Format("January 2, 2006") },
	"day_of_week":        func(c Context) string { return c.Now.Weekday().String() },
	"season":             func(c Context) string { return Season(c.Now) },
	"zodiac_sign":        func(c Context) string { return ZodiacSign(c.Now) },
	"moon_phase":         func(c Context) string { return MoonPhase(c.Now) },
	"lunar_illumination": func(c Context) string { return strconv.Itoa(LunarIllumination(c.Now)) },
	"ruling_planet":      func(c Context) string { return RulingPlanet(c.Now) },
	"eclipse_season":     func(c Context) string { return eclipseWord(c.Now) },
	"render_id":          func(c Context) string { return c.RenderID },
	"city":               func(c Context) string { return c.City },
	"extension":          func(c Context) string { return c.Extension },
	"call_id":            func(c Context) string { return c.CallID },
}

// Known reports whether name is a built-in placeholder.
func Known(name string) bool {
	_, ok := vocabulary[name]
	return ok
}

// Placeholders lists every placeholder name referenced by the template.
func Placeholders(template string) []string {
	matches := placeholderRE.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		out = append(out, m[1])
	}
	return out
}

// Expand substitutes every placeholder in template in a single pass. Fetched
// capability fields take precedence over built-in tokens of the same name.
// Any placeholder with no substitution makes the whole expansion fail.
func Expand(template string, ctx Context, fetched map[string]string) (string, error) {
	var missing []string
	out := placeholderRE.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := fetched[name]; ok {
			return v
		}
		if fn, ok := vocabulary[name]; ok {
			return fn(ctx)
		}
		missing = append(missing, name)
		return m
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("template references unknown placeholder(s): %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func clockTime(t time.Time) string {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	suffix := "AM"
	if t.Hour() >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, t.Minute(), suffix)
}

func eclipseWord(t time.Time) string {
	if InEclipseSeason(t) {
		return "an eclipse season"
	}
	return "a quiet sky"
}

// SecondsToWords renders a seconds count the way the time line speaks it.
func SecondsToWords(sec int) string {
	if sec == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", sec)
}
