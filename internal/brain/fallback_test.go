package brain

import (
	"context"
	"errors"
	"testing"
)

type failingAdapter struct{ err error }

func (f failingAdapter) Generate(context.Context, Request) (string, error) { return "", f.err }

func TestFallbackUsesSecondaryOnPrimaryError(t *testing.T) {
	secondary := NewScriptedAdapter("fallback reply")
	a := NewFallbackAdapter(failingAdapter{err: errors.New("boom")}, secondary)

	got, err := a.Generate(context.Background(), Request{Messages: []Message{
		{Role: "system", Content: "persona"},
		{Role: "assistant", Content: "earlier"},
		{Role: "user", Content: "hello"},
	}})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "fallback reply" {
		t.Fatalf("Generate() = %q, want fallback reply", got)
	}

	if len(secondary.Requests) != 1 {
		t.Fatalf("fallback calls = %d, want 1", len(secondary.Requests))
	}
	msgs := secondary.Requests[0].Messages
	if len(msgs) != 2 || msgs[0].Role != "system" || msgs[1].Role != "user" {
		t.Fatalf("fallback should see reduced context, got %+v", msgs)
	}
}

func TestFallbackPassesThroughCancellation(t *testing.T) {
	secondary := NewScriptedAdapter("should not run")
	a := NewFallbackAdapter(failingAdapter{err: context.Canceled}, secondary)

	_, err := a.Generate(context.Background(), Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Generate() error = %v, want context.Canceled", err)
	}
	if len(secondary.Requests) != 0 {
		t.Fatalf("fallback should not run after cancellation")
	}
}

func TestFallbackReportsBothErrors(t *testing.T) {
	a := NewFallbackAdapter(failingAdapter{err: errors.New("primary down")}, failingAdapter{err: errors.New("secondary down")})

	_, err := a.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatalf("Generate() should fail when both adapters fail")
	}
}

func TestMockAdapterJSONMode(t *testing.T) {
	a := NewMockAdapter()
	got, err := a.Generate(context.Background(), Request{ForceJSON: true})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != `{"action":"OPERATOR_CHAT","confidence":0}` {
		t.Fatalf("Generate() = %q", got)
	}
}
