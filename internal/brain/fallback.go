package brain

import (
	"context"
	"errors"
	"fmt"
)

// FallbackAdapter attempts a primary adapter first and, on a non-cancellation
// error, retries the request against a secondary adapter with the context
// trimmed down to the system message and the final user line.
type FallbackAdapter struct {
	primary  Adapter
	fallback Adapter
}

func NewFallbackAdapter(primary, fallback Adapter) *FallbackAdapter {
	return &FallbackAdapter{primary: primary, fallback: fallback}
}

func (a *FallbackAdapter) Generate(ctx context.Context, req Request) (string, error) {
	if a == nil || a.primary == nil {
		if a != nil && a.fallback != nil {
			return a.fallback.Generate(ctx, req)
		}
		return "", fmt.Errorf("fallback adapter misconfigured")
	}

	text, err := a.primary.Generate(ctx, req)
	if err == nil {
		return text, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}
	if a.fallback == nil {
		return "", err
	}

	text, fallbackErr := a.fallback.Generate(ctx, reduceContext(req))
	if fallbackErr != nil {
		return "", fmt.Errorf("primary adapter error: %w; fallback adapter error: %v", err, fallbackErr)
	}
	return text, nil
}

// reduceContext drops the conversational middle, keeping the leading system
// message and the trailing user message.
func reduceContext(req Request) Request {
	if len(req.Messages) <= 2 {
		return req
	}
	kept := make([]Message, 0, 2)
	if req.Messages[0].Role == "system" {
		kept = append(kept, req.Messages[0])
	}
	kept = append(kept, req.Messages[len(req.Messages)-1])
	out := req
	out.Messages = kept
	return out
}
