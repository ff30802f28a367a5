package capability

import (
	"context"
	"fmt"
	"net/http"
)

// EarthquakeFetcher reports the strongest quake from the USGS all-day feed.
type EarthquakeFetcher struct {
	client  *http.Client
	feedURL string
}

func NewEarthquakeFetcher(client *http.Client) *EarthquakeFetcher {
	return &EarthquakeFetcher{
		client:  client,
		feedURL: "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_day.geojson",
	}
}

func (f *EarthquakeFetcher) Name() string { return "earthquake" }

func (f *EarthquakeFetcher) Provides() []string { return []string{"quake_report"} }

func (f *EarthquakeFetcher) Fetch(ctx context.Context, _ CallContext) map[string]string {
	var feed struct {
		Features []struct {
			Properties struct {
				Mag   *float64 `json:"mag"`
				Place string   `json:"place"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := getJSON(ctx, f.client, f.feedURL, &feed); err != nil {
		return map[string]string{}
	}

	var bestMag float64
	var bestPlace string
	for _, feat := range feed.Features {
		p := feat.Properties
		if p.Mag == nil || p.Place == "" {
			continue
		}
		if bestPlace == "" || *p.Mag > bestMag {
			bestMag = *p.Mag
			bestPlace = p.Place
		}
	}
	if bestPlace == "" {
		return map[string]string{}
	}

	return map[string]string{
		"quake_report": fmt.Sprintf("Magnitude %.1f earthquake near %s.", bestMag, bestPlace),
	}
}
