// Package catalog holds the static table of dial-code services: persona
// templates, voices, loop behavior, and required capabilities.
package catalog

import "fmt"

// HandlerKind selects the turn handler implementation for a service. The set
// is closed; validation rejects anything else at load time.
type HandlerKind string

const (
	// HandlerClock speaks the local time without a model call.
	HandlerClock HandlerKind = "clock"
	// HandlerPersona runs a model turn against the service's prompt template.
	HandlerPersona HandlerKind = "persona"
)

// Sampling carries per-service model sampling parameters.
type Sampling struct {
	Temperature float64
	MaxTokens   int
}

// Service describes one dial-code destination.
type Service struct {
	Key       string
	Extension string
	Loop      bool
	Voice     string
	Opener    string
	Closer    string

	// TurnPrompt is the persona template for model turns. A looping service
	// with no TurnPrompt has no bound handler: its turns route through intent
	// classification and the operator chat fallback instead.
	TurnPrompt string

	Requires []string
	Sampling Sampling
	Handler  HandlerKind

	// Directory marks the number-lookup line: confident intent matches are
	// answered with the target's dial code instead of a transfer.
	Directory bool
}

// HasTurnHandler reports whether the service resolves its own turns.
func (s *Service) HasTurnHandler() bool {
	return s.Handler == HandlerClock || s.TurnPrompt != ""
}

// Catalog is the published, validated service table.
type Catalog struct {
	byKey      map[string]*Service
	byExt      map[string]*Service
	defaultKey string
}

// New builds a catalog from descriptors. The default key names the service
// unknown extensions fall back to.
func New(defaultKey string, services ...*Service) (*Catalog, error) {
	c := &Catalog{
		byKey:      make(map[string]*Service, len(services)),
		byExt:      make(map[string]*Service, len(services)),
		defaultKey: defaultKey,
	}
	for _, svc := range services {
		if svc.Key == "" {
			return nil, fmt.Errorf("service with extension %q has no key", svc.Extension)
		}
		if _, dup := c.byKey[svc.Key]; dup {
			return nil, fmt.Errorf("duplicate service key %q", svc.Key)
		}
		if svc.Extension != "" {
			if _, dup := c.byExt[svc.Extension]; dup {
				return nil, fmt.Errorf("duplicate extension %q", svc.Extension)
			}
			c.byExt[svc.Extension] = svc
		}
		c.byKey[svc.Key] = svc
	}
	if _, ok := c.byKey[defaultKey]; !ok {
		return nil, fmt.Errorf("default service %q is not in the catalog", defaultKey)
	}
	return c, nil
}

// ForExtension resolves a dial code, falling back to the default service for
// unrecognized or zero-valued extensions. A call is never rejected outright.
func (c *Catalog) ForExtension(ext string) *Service {
	if svc, ok := c.byExt[ext]; ok {
		return svc
	}
	return c.byKey[c.defaultKey]
}

// ByKey looks a service up by catalog key.
func (c *Catalog) ByKey(key string) (*Service, bool) {
	svc, ok := c.byKey[key]
	return svc, ok
}

// Default returns the fallback service.
func (c *Catalog) Default() *Service {
	return c.byKey[c.defaultKey]
}

// Services lists every service, keyed order unspecified.
func (c *Catalog) Services() []*Service {
	out := make([]*Service, 0, len(c.byKey))
	for _, svc := range c.byKey {
		out = append(out, svc)
	}
	return out
}
