package capability

import (
	"context"
	"fmt"
	"net/http"
)

// NASAFetcher pulls the latest natural-event headline from the EONET feed.
type NASAFetcher struct {
	client   *http.Client
	eventURL string
}

func NewNASAFetcher(client *http.Client) *NASAFetcher {
	return &NASAFetcher{
		client:   client,
		eventURL: "https://eonet.gsfc.nasa.gov/api/v3/events?limit=1",
	}
}

func (f *NASAFetcher) Name() string { return "nasa" }

func (f *NASAFetcher) Provides() []string { return []string{"nasa_event"} }

func (f *NASAFetcher) Fetch(ctx context.Context, _ CallContext) map[string]string {
	var feed struct {
		Events []struct {
			Title      string `json:"title"`
			Categories []struct {
				Title string `json:"title"`
			} `json:"categories"`
		} `json:"events"`
	}
	if err := getJSON(ctx, f.client, f.eventURL, &feed); err != nil || len(feed.Events) == 0 {
		return map[string]string{}
	}

	evt := feed.Events[0]
	category := "space event"
	if len(evt.Categories) > 0 && evt.Categories[0].Title != "" {
		category = evt.Categories[0].Title
	}
	return map[string]string{
		"nasa_event": fmt.Sprintf("%s. Category: %s.", evt.Title, category),
	}
}
