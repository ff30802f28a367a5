package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/potsbox/exchange/internal/brain"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantOK   bool
		wantAct  Action
		wantConf float64
	}{
		{"valid", `{"action":"SERVICE_JOKE","confidence":0.9}`, true, ActionServiceJoke, 0.9},
		{"lowercase action", `{"action":"service_weather","confidence":0.7}`, true, ActionServiceWeather, 0.7},
		{"clamped high", `{"action":"SERVICE_TIME","confidence":3.5}`, true, ActionServiceTime, 1},
		{"clamped negative", `{"action":"SERVICE_TIME","confidence":-2}`, true, ActionServiceTime, 0},
		{"string confidence", `{"action":"SERVICE_TIME","confidence":"high"}`, true, ActionServiceTime, 0},
		{"missing confidence", `{"action":"SERVICE_STORY"}`, true, ActionServiceStory, 0},
		{"unknown action", `{"action":"SERVICE_PIZZA","confidence":0.9}`, false, ActionOperatorChat, 0},
		{"not json", `tell them a joke`, false, ActionOperatorChat, 0},
		{"empty", ``, false, ActionOperatorChat, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseResult(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ParseResult(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if got.Action != tt.wantAct {
				t.Fatalf("action = %q, want %q", got.Action, tt.wantAct)
			}
			if got.Confidence != tt.wantConf {
				t.Fatalf("confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestClassifyDegradesOnAdapterError(t *testing.T) {
	scripted := brain.NewScriptedAdapter()
	scripted.Fail(errors.New("model unavailable"))
	c := NewClassifier(scripted)

	got := c.Classify(context.Background(), "tell me a joke")
	if got.Action != ActionOperatorChat || got.Confidence != 0 {
		t.Fatalf("Classify() = %+v, want operator fallback", got)
	}
}

func TestClassifyRequestsJSONMode(t *testing.T) {
	scripted := brain.NewScriptedAdapter(`{"action":"SERVICE_HOROSCOPE","confidence":0.8}`)
	c := NewClassifier(scripted)

	got := c.Classify(context.Background(), "read my stars")
	if got.Action != ActionServiceHoroscope {
		t.Fatalf("Classify() action = %q", got.Action)
	}
	if len(scripted.Requests) != 1 || !scripted.Requests[0].ForceJSON {
		t.Fatalf("classifier request should force JSON output")
	}
	if scripted.Requests[0].Temperature != 0 {
		t.Fatalf("classifier request should use temperature 0")
	}
}

func TestServiceKey(t *testing.T) {
	if got := (Result{Action: ActionServiceJoke}).ServiceKey(); got != "JOKE" {
		t.Fatalf("ServiceKey() = %q, want JOKE", got)
	}
	if got := (Result{Action: ActionOperatorChat}).ServiceKey(); got != "" {
		t.Fatalf("ServiceKey() for chat fallback = %q, want empty", got)
	}
}
