// Package capability hosts the named external data providers a service can
// declare as requirements. Fetchers are best-effort: a failed or empty fetch
// yields an empty field map, and template expansion downstream decides whether
// the missing data is fatal for the service.
package capability

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// CallContext is the slice of call state a fetcher may condition on.
type CallContext struct {
	City      string
	Now       time.Time
	CallID    string
	Extension string
}

// Fetcher resolves one named capability into template fields.
type Fetcher interface {
	Name() string
	Provides() []string
	Fetch(ctx context.Context, call CallContext) map[string]string
}

// Registry indexes fetchers by capability name.
type Registry struct {
	byName map[string]Fetcher
	order  []string
}

func NewRegistry(fetchers ...Fetcher) (*Registry, error) {
	r := &Registry{byName: make(map[string]Fetcher, len(fetchers))}
	for _, f := range fetchers {
		if _, dup := r.byName[f.Name()]; dup {
			return nil, fmt.Errorf("duplicate capability fetcher %q", f.Name())
		}
		r.byName[f.Name()] = f
		r.order = append(r.order, f.Name())
	}
	return r, nil
}

// DefaultRegistry wires every production fetcher against the public data
// sources the exchange reads from.
func DefaultRegistry(client *http.Client) (*Registry, error) {
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}
	return NewRegistry(
		NewWeatherFetcher(client),
		NewEarthquakeFetcher(client),
		NewNASAFetcher(client),
		NewSpaceFetcher(client),
		NewOnThisDayFetcher(client),
		NewComplaintFetcher(client),
	)
}

// Lookup returns the fetcher registered under name.
func (r *Registry) Lookup(name string) (Fetcher, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// Names lists registered capability names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// FetchAll invokes the named capabilities in declaration order and merges
// their field maps. Later fetchers overwrite earlier identical keys. Unknown
// names are skipped; catalog validation rejects them before startup.
func (r *Registry) FetchAll(ctx context.Context, names []string, call CallContext) map[string]string {
	merged := make(map[string]string)
	for _, name := range names {
		f, ok := r.byName[name]
		if !ok {
			continue
		}
		for k, v := range f.Fetch(ctx, call) {
			merged[k] = v
		}
	}
	return merged
}
