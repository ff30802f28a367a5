package brain

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockAdapter provides deterministic local replies when no model is reachable.
type MockAdapter struct{}

func NewMockAdapter() *MockAdapter { return &MockAdapter{} }

func (a *MockAdapter) Generate(ctx context.Context, req Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if req.ForceJSON {
		return `{"action":"OPERATOR_CHAT","confidence":0}`, nil
	}

	last := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			last = strings.TrimSpace(req.Messages[i].Content)
			break
		}
	}
	if last == "" {
		return "Operator. I am listening.", nil
	}
	return fmt.Sprintf("I heard you: %s", last), nil
}

// ScriptedAdapter replays queued replies in order; tests drive the dispatcher
// with it. When the queue drains it keeps returning the final entry.
type ScriptedAdapter struct {
	mu       sync.Mutex
	replies  []string
	last     string
	err      error
	Requests []Request
}

func NewScriptedAdapter(replies ...string) *ScriptedAdapter {
	return &ScriptedAdapter{replies: replies}
}

// Push queues further replies.
func (a *ScriptedAdapter) Push(replies ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replies = append(a.replies, replies...)
}

func (a *ScriptedAdapter) Fail(err error) { a.err = err }

func (a *ScriptedAdapter) Generate(_ context.Context, req Request) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Requests = append(a.Requests, req)
	if a.err != nil {
		return "", a.err
	}
	if len(a.replies) == 0 {
		return a.last, nil
	}
	a.last = a.replies[0]
	a.replies = a.replies[1:]
	return a.last, nil
}
