package catalog

import (
	"fmt"

	"github.com/potsbox/exchange/internal/capability"
	"github.com/potsbox/exchange/internal/tokens"
)

// Validate checks the catalog against the capability registry and the token
// vocabulary before the table is published. Any failure here is a
// configuration fault that must stop startup, never a call-time condition.
func (c *Catalog) Validate(reg *capability.Registry) error {
	for _, svc := range c.byKey {
		if err := validateService(svc, reg); err != nil {
			return fmt.Errorf("service %s: %w", svc.Key, err)
		}
	}
	return nil
}

func validateService(svc *Service, reg *capability.Registry) error {
	switch svc.Handler {
	case HandlerClock, HandlerPersona:
	case "":
		if svc.TurnPrompt != "" {
			return fmt.Errorf("turn prompt set but no handler kind declared")
		}
	default:
		return fmt.Errorf("unknown handler kind %q", svc.Handler)
	}

	if svc.Handler == HandlerPersona && svc.TurnPrompt == "" {
		return fmt.Errorf("persona handler requires a turn prompt")
	}

	provided := map[string]bool{}
	for _, name := range svc.Requires {
		f, ok := reg.Lookup(name)
		if !ok {
			return fmt.Errorf("requires capability %q which has no registered fetcher", name)
		}
		for _, field := range f.Provides() {
			provided[field] = true
		}
	}

	for _, tmpl := range []string{svc.Opener, svc.Closer, svc.TurnPrompt} {
		for _, name := range tokens.Placeholders(tmpl) {
			if tokens.Known(name) || provided[name] {
				continue
			}
			return fmt.Errorf("template references placeholder %q with no defined substitution", name)
		}
	}
	return nil
}
