package capability

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ComplaintFetcher pulls the most recent 311 complaint from NYC open data,
// fuel for the complaints-department persona.
type ComplaintFetcher struct {
	client  *http.Client
	dataURL string
}

func NewComplaintFetcher(client *http.Client) *ComplaintFetcher {
	return &ComplaintFetcher{
		client:  client,
		dataURL: "https://data.cityofnewyork.us/resource/erm2-nwe9.json",
	}
}

func (f *ComplaintFetcher) Name() string { return "complaint" }

func (f *ComplaintFetcher) Provides() []string { return []string{"complaint"} }

func (f *ComplaintFetcher) Fetch(ctx context.Context, _ CallContext) map[string]string {
	query := url.Values{
		"$limit": {"1"},
		"$order": {"created_date DESC"},
	}

	var rows []struct {
		ComplaintType string `json:"complaint_type"`
		Borough       string `json:"borough"`
	}
	if err := getJSON(ctx, f.client, f.dataURL+"?"+query.Encode(), &rows); err != nil || len(rows) == 0 {
		return map[string]string{}
	}
	row := rows[0]
	if row.ComplaintType == "" {
		return map[string]string{}
	}

	text := row.ComplaintType
	if row.Borough != "" {
		text = fmt.Sprintf("%s in %s", row.ComplaintType, row.Borough)
	}
	return map[string]string{"complaint": text}
}
