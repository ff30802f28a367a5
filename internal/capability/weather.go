package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// WeatherFetcher reads current conditions from open-meteo: a geocoding call
// to resolve the caller's city, then a current-weather call.
type WeatherFetcher struct {
	client      *http.Client
	geocodeURL  string
	forecastURL string
}

func NewWeatherFetcher(client *http.Client) *WeatherFetcher {
	return &WeatherFetcher{
		client:      client,
		geocodeURL:  "https://geocoding-api.open-meteo.com/v1/search",
		forecastURL: "https://api.open-meteo.com/v1/forecast",
	}
}

func (f *WeatherFetcher) Name() string { return "weather" }

func (f *WeatherFetcher) Provides() []string {
	return []string{"place", "temp_f", "wind_mph", "precipitation_in"}
}

func (f *WeatherFetcher) Fetch(ctx context.Context, call CallContext) map[string]string {
	city := strings.TrimSpace(call.City)
	if city == "" {
		return map[string]string{}
	}

	var geo struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Name      string  `json:"name"`
			Admin1    string  `json:"admin1"`
			Country   string  `json:"country"`
		} `json:"results"`
	}
	geoQuery := url.Values{
		"name":     {city},
		"count":    {"1"},
		"language": {"en"},
		"format":   {"json"},
	}
	if err := getJSON(ctx, f.client, f.geocodeURL+"?"+geoQuery.Encode(), &geo); err != nil || len(geo.Results) == 0 {
		return map[string]string{}
	}
	hit := geo.Results[0]

	var wx struct {
		Current struct {
			Temperature   *float64 `json:"temperature_2m"`
			WindSpeed     float64  `json:"wind_speed_10m"`
			Precipitation float64  `json:"precipitation"`
		} `json:"current"`
	}
	wxQuery := url.Values{
		"latitude":         {fmt.Sprintf("%f", hit.Latitude)},
		"longitude":        {fmt.Sprintf("%f", hit.Longitude)},
		"current":          {"temperature_2m,wind_speed_10m,precipitation"},
		"temperature_unit": {"fahrenheit"},
		"wind_speed_unit":  {"mph"},
	}
	if err := getJSON(ctx, f.client, f.forecastURL+"?"+wxQuery.Encode(), &wx); err != nil || wx.Current.Temperature == nil {
		return map[string]string{}
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{hit.Name, hit.Admin1, hit.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return map[string]string{
		"place":            strings.Join(parts, ", "),
		"temp_f":           fmt.Sprintf("%.0f", *wx.Current.Temperature),
		"wind_mph":         fmt.Sprintf("%.0f", wx.Current.WindSpeed),
		"precipitation_in": fmt.Sprintf("%g", wx.Current.Precipitation),
	}
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
