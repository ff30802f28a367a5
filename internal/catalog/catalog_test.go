package catalog

import (
	"context"
	"testing"

	"github.com/potsbox/exchange/internal/capability"
)

type stubFetcher struct {
	name   string
	fields []string
}

func (s stubFetcher) Name() string       { return s.name }
func (s stubFetcher) Provides() []string { return s.fields }
func (s stubFetcher) Fetch(context.Context, capability.CallContext) map[string]string {
	return map[string]string{}
}

func fullRegistry(t *testing.T) *capability.Registry {
	t.Helper()
	reg, err := capability.NewRegistry(
		stubFetcher{name: "weather", fields: []string{"place", "temp_f", "wind_mph", "precipitation_in"}},
		stubFetcher{name: "earthquake", fields: []string{"quake_report"}},
		stubFetcher{name: "nasa", fields: []string{"nasa_event"}},
		stubFetcher{name: "space", fields: []string{"space_event"}},
		stubFetcher{name: "onthisday", fields: []string{"history_items"}},
		stubFetcher{name: "complaint", fields: []string{"complaint"}},
	)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return reg
}

func TestDefaultCatalogValidates(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if err := c.Validate(fullRegistry(t)); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestForExtensionFallsBackToOperator(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if svc := c.ForExtension("8463"); svc.Key != "TIME" {
		t.Fatalf("ForExtension(8463) = %q, want TIME", svc.Key)
	}
	for _, ext := range []string{"", "0", "99999"} {
		if svc := c.ForExtension(ext); svc.Key != "OPERATOR" {
			t.Fatalf("ForExtension(%q) = %q, want OPERATOR fallback", ext, svc.Key)
		}
	}
}

func TestValidateRejectsMissingCapability(t *testing.T) {
	c, err := New("A",
		&Service{Key: "A", Extension: "1", Loop: true},
		&Service{
			Key:        "B",
			Extension:  "2",
			TurnPrompt: "report: {quake_report}",
			Requires:   []string{"seismograph"},
			Handler:    HandlerPersona,
		},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := c.Validate(fullRegistry(t)); err == nil {
		t.Fatalf("Validate() should reject a requirement with no fetcher")
	}
}

func TestValidateRejectsUnknownPlaceholder(t *testing.T) {
	c, err := New("A",
		&Service{Key: "A", Extension: "1", Loop: true},
		&Service{
			Key:        "B",
			Extension:  "2",
			TurnPrompt: "today's {secret_ingredient}",
			Handler:    HandlerPersona,
		},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := c.Validate(fullRegistry(t)); err == nil {
		t.Fatalf("Validate() should reject an uncovered placeholder")
	}
}

func TestValidateRejectsUnknownHandlerKind(t *testing.T) {
	c, err := New("A",
		&Service{Key: "A", Extension: "1", Loop: true},
		&Service{Key: "B", Extension: "2", TurnPrompt: "hi", Handler: HandlerKind("teleport")},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := c.Validate(fullRegistry(t)); err == nil {
		t.Fatalf("Validate() should reject an unknown handler kind")
	}
}

func TestNewRejectsDuplicateExtensions(t *testing.T) {
	_, err := New("A",
		&Service{Key: "A", Extension: "1"},
		&Service{Key: "B", Extension: "1"},
	)
	if err == nil {
		t.Fatalf("New() should reject duplicate extensions")
	}
}

func TestHasTurnHandler(t *testing.T) {
	if (&Service{Handler: HandlerClock}).HasTurnHandler() != true {
		t.Fatalf("clock service should have a turn handler")
	}
	if (&Service{Loop: true}).HasTurnHandler() {
		t.Fatalf("handler-less loop service should route through intent")
	}
}
