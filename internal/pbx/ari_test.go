package pbx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHangupExtensionMatchesCallerNumber(t *testing.T) {
	var hungUp string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "1001" || pass != "1234" {
			t.Fatalf("missing or wrong basic auth: %q %q", user, pass)
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/ari/channels":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
				{"id":"ch-1","caller":{"number":"100"},"connected":{"number":"0"}},
				{"id":"ch-2","caller":{"number":"8463"},"connected":{"number":""}}
			]`))
		case r.Method == http.MethodPost && r.URL.Path == "/ari/channels/ch-2/hangup":
			hungUp = "ch-2"
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/ari", "1001", "1234", "exchange", srv.Client())
	if err := c.HangupExtension(context.Background(), "8463"); err != nil {
		t.Fatalf("HangupExtension() error = %v", err)
	}
	if hungUp != "ch-2" {
		t.Fatalf("hung up channel %q, want ch-2", hungUp)
	}
}

func TestHangupExtensionNoMatchIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			t.Fatalf("hangup issued with no matching channel")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/ari", "1001", "1234", "exchange", srv.Client())
	if err := c.HangupExtension(context.Background(), "411"); err != nil {
		t.Fatalf("HangupExtension() error = %v", err)
	}
}

func TestEventsURLCarriesAppAndKey(t *testing.T) {
	c := NewClient("http://pbx:8088/ari", "1001", "1234", "exchange", nil)
	u, err := c.eventsURL()
	if err != nil {
		t.Fatalf("eventsURL() error = %v", err)
	}
	want := "ws://pbx:8088/ari/events?api_key=1001%3A1234&app=exchange"
	if u != want {
		t.Fatalf("eventsURL() = %q, want %q", u, want)
	}
}
