package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
)

var (
	bracketNoteRE = regexp.MustCompile(`\[[^\]]*\]`)
	whitespaceRE  = regexp.MustCompile(`\s+`)
)

// OnThisDayFetcher picks two historical events for today's date from the
// Wikipedia on-this-day feed, preferring the twentieth century onward.
type OnThisDayFetcher struct {
	client  *http.Client
	baseURL string
	pick    func(n int) int
}

func NewOnThisDayFetcher(client *http.Client) *OnThisDayFetcher {
	return &OnThisDayFetcher{
		client:  client,
		baseURL: "https://en.wikipedia.org/api/rest_v1/feed/onthisday/events",
		pick:    rand.Intn,
	}
}

func (f *OnThisDayFetcher) Name() string { return "onthisday" }

func (f *OnThisDayFetcher) Provides() []string { return []string{"history_items"} }

func (f *OnThisDayFetcher) Fetch(ctx context.Context, call CallContext) map[string]string {
	url := fmt.Sprintf("%s/%02d/%02d", f.baseURL, int(call.Now.Month()), call.Now.Day())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return map[string]string{}
	}
	req.Header.Set("User-Agent", "PotsBox/1.0 (on-this-day)")

	resp, err := f.client.Do(req)
	if err != nil {
		return map[string]string{}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return map[string]string{}
	}

	var feed struct {
		Events []struct {
			Year int    `json:"year"`
			Text string `json:"text"`
		} `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return map[string]string{}
	}

	type event struct {
		year int
		text string
	}
	var all, modern []event
	for _, e := range feed.Events {
		if e.Year == 0 || strings.TrimSpace(e.Text) == "" {
			continue
		}
		ev := event{year: e.Year, text: e.Text}
		all = append(all, ev)
		if e.Year >= 1900 {
			modern = append(modern, ev)
		}
	}
	if len(all) == 0 {
		return map[string]string{}
	}
	pool := modern
	if len(pool) == 0 {
		pool = all
	}

	a := pool[f.pick(len(pool))]
	b := a
	for i := 0; i < 10 && b == a && len(pool) > 1; i++ {
		b = pool[f.pick(len(pool))]
	}

	lines := []string{formatHistoryLine(a.year, a.text)}
	if b != a {
		lines = append(lines, formatHistoryLine(b.year, b.text))
	}
	return map[string]string{
		"history_items": strings.Join(lines, " "),
	}
}

func formatHistoryLine(year int, text string) string {
	clean := bracketNoteRE.ReplaceAllString(text, "")
	clean = strings.TrimSpace(whitespaceRE.ReplaceAllString(clean, " "))
	return fmt.Sprintf("On this day in %d, %s", year, clean)
}
