package dispatch

import (
	"math/rand"
	"sync"
	"time"
)

// InterceptGroup is a family of recorded network announcements. Terminal
// groups end the call after the recording plays, the way a real exchange
// drops you after "all circuits are busy".
type InterceptGroup struct {
	Name       string
	Recordings []string
	Terminal   bool
}

// Intercept is one drawn announcement.
type Intercept struct {
	Group     string
	Recording string
	Terminal  bool
}

// InterceptController occasionally hijacks a caller turn with a recorded
// announcement. At most one intercept plays per cooldown window, and the
// same group never fires twice in a row.
type InterceptController struct {
	mu        sync.Mutex
	groups    []InterceptGroup
	chance    float64
	cooldown  time.Duration
	lastFired time.Time
	lastGroup string

	rand *rand.Rand
	now  func() time.Time
}

func NewInterceptController(chance float64, cooldown time.Duration, groups []InterceptGroup) *InterceptController {
	if chance < 0 {
		chance = 0
	}
	if chance > 1 {
		chance = 1
	}
	return &InterceptController{
		groups:   groups,
		chance:   chance,
		cooldown: cooldown,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

// DefaultInterceptGroups lists the stock announcements, as file names under
// the sounds directory.
func DefaultInterceptGroups() []InterceptGroup {
	return []InterceptGroup{
		{Name: "crossed_lines", Recordings: []string{"intercept/crossed_lines_1.wav", "intercept/crossed_lines_2.wav"}},
		{Name: "party_line", Recordings: []string{"intercept/party_line_1.wav"}},
		{Name: "all_circuits_busy", Recordings: []string{"intercept/all_circuits_busy.wav"}, Terminal: true},
		{Name: "call_failed", Recordings: []string{"intercept/call_failed.wav"}, Terminal: true},
	}
}

// Maybe rolls for an intercept. It returns false when the dice, the cooldown,
// or an empty group table say no.
func (c *InterceptController) Maybe() (Intercept, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.groups) == 0 || c.chance <= 0 {
		return Intercept{}, false
	}
	now := c.now()
	if !c.lastFired.IsZero() && now.Sub(c.lastFired) < c.cooldown {
		return Intercept{}, false
	}
	if c.rand.Float64() >= c.chance {
		return Intercept{}, false
	}

	candidates := make([]InterceptGroup, 0, len(c.groups))
	for _, g := range c.groups {
		if g.Name == c.lastGroup || len(g.Recordings) == 0 {
			continue
		}
		candidates = append(candidates, g)
	}
	if len(candidates) == 0 {
		return Intercept{}, false
	}

	g := candidates[c.rand.Intn(len(candidates))]
	rec := g.Recordings[c.rand.Intn(len(g.Recordings))]
	c.lastFired = now
	c.lastGroup = g.Name
	return Intercept{Group: g.Name, Recording: rec, Terminal: g.Terminal}, true
}
