package capability

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

var (
	rssItemRE = regexp.MustCompile(`(?is)<title><!\[CDATA\[(.*?)\]\]></title>.*?<description><!\[CDATA\[(.*?)\]\]>`)
	htmlTagRE = regexp.MustCompile(`<[^>]+>`)
)

// SpaceFetcher reads the top story from the JPL news RSS feed.
type SpaceFetcher struct {
	client *http.Client
	rssURL string
}

func NewSpaceFetcher(client *http.Client) *SpaceFetcher {
	return &SpaceFetcher{
		client: client,
		rssURL: "https://www.jpl.nasa.gov/rss/news",
	}
}

func (f *SpaceFetcher) Name() string { return "space" }

func (f *SpaceFetcher) Provides() []string { return []string{"space_event"} }

func (f *SpaceFetcher) Fetch(ctx context.Context, _ CallContext) map[string]string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.rssURL, nil)
	if err != nil {
		return map[string]string{}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return map[string]string{}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return map[string]string{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return map[string]string{}
	}

	m := rssItemRE.FindSubmatch(body)
	if m == nil {
		return map[string]string{}
	}
	title := strings.TrimSpace(string(m[1]))
	desc := strings.TrimSpace(htmlTagRE.ReplaceAllString(string(m[2]), ""))
	if title == "" {
		return map[string]string{}
	}

	return map[string]string{
		"space_event": fmt.Sprintf("%s. %s", title, desc),
	}
}
