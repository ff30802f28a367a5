package call

import (
	"context"
	"testing"
	"time"
)

func TestManagerBeginGetEnd(t *testing.T) {
	m := NewManager(time.Minute)
	s, stale := m.Begin("8463", "New York City")
	if s.ID == "" {
		t.Fatalf("call ID should not be empty")
	}
	if stale != nil {
		t.Fatalf("stale session on first call = %+v, want nil", stale)
	}

	got, err := m.Get("8463")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Extension != "8463" || got.City != "New York City" || got.Status != StatusActive {
		t.Fatalf("unexpected call state: %+v", got)
	}

	ended, err := m.End("8463")
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if !ended.Ended() {
		t.Fatalf("ended status = %q, want %q", ended.Status, StatusEnded)
	}
}

func TestManagerBeginReplacesPrevious(t *testing.T) {
	m := NewManager(time.Minute)
	first, _ := m.Begin("0", "")
	second, stale := m.Begin("0", "")

	if stale == nil || stale.ID != first.ID {
		t.Fatalf("stale = %+v, want previous session %q", stale, first.ID)
	}
	got, err := m.Get("0")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != second.ID {
		t.Fatalf("active call = %q, want %q", got.ID, second.ID)
	}
}

func TestManagerSetServiceClearsGreeted(t *testing.T) {
	m := NewManager(time.Minute)
	m.Begin("0", "")
	if err := m.SetService("0", "OPERATOR"); err != nil {
		t.Fatalf("SetService() error = %v", err)
	}
	if err := m.MarkGreeted("0"); err != nil {
		t.Fatalf("MarkGreeted() error = %v", err)
	}

	if err := m.SetService("0", "JOKE"); err != nil {
		t.Fatalf("SetService() error = %v", err)
	}
	got, err := m.Get("0")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ServiceKey != "JOKE" {
		t.Fatalf("ServiceKey = %q, want JOKE", got.ServiceKey)
	}
	if got.Greeted {
		t.Fatalf("Greeted should reset when the service changes")
	}
}

func TestManagerAdvanceTurn(t *testing.T) {
	m := NewManager(time.Minute)
	m.Begin("7243", "")
	for i := 0; i < 3; i++ {
		if err := m.AdvanceTurn("7243"); err != nil {
			t.Fatalf("AdvanceTurn() error = %v", err)
		}
	}
	got, err := m.Get("7243")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TurnIndex != 3 {
		t.Fatalf("TurnIndex = %d, want 3", got.TurnIndex)
	}
}

func TestManagerGetUnknownExtension(t *testing.T) {
	m := NewManager(time.Minute)
	if _, err := m.Get("9999"); err != ErrNotFound {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestManagerJanitorExpiresInactive(t *testing.T) {
	m := NewManager(30 * time.Millisecond)
	m.Begin("0", "")

	var expired []string
	done := make(chan struct{})
	m.SetExpireHook(func(s *Session) {
		expired = append(expired, s.Extension)
		close(done)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("janitor did not expire the call")
	}
	got, err := m.Get("0")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusEnded {
		t.Fatalf("Status = %q, want %q", got.Status, StatusEnded)
	}
	if len(expired) != 1 || expired[0] != "0" {
		t.Fatalf("expire hook saw %v", expired)
	}
}
