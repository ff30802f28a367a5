package convlog

import (
	"context"
	"time"
)

// Role identifies who spoke a turn.
type Role string

const (
	RoleCaller    Role = "caller"
	RoleAssistant Role = "assistant"
)

// Turn is one spoken line in a call, caller or assistant.
type Turn struct {
	ID        string    `json:"id"`
	CallID    string    `json:"call_id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists the per-call append-only turn log.
type Store interface {
	Append(ctx context.Context, turn Turn) error
	Turns(ctx context.Context, callID string) ([]Turn, error)
	Purge(ctx context.Context, callID string) error
	Close() error
}

// Window returns the most recent max turns, preserving order. The full log
// stays persisted; only this tail is replayed into model calls.
func Window(turns []Turn, max int) []Turn {
	if max <= 0 || len(turns) <= max {
		return turns
	}
	return turns[len(turns)-max:]
}
