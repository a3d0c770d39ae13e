// file: internal/providers/registry.go
// version: 1.0.0
// guid: b0618cad-5e7f-4031-c2d3-aebfcddeef26

package providers

import (
	"fmt"
	"sync"
)

// Deps carries the collaborators a provider factory may need.
type Deps struct {
	Fetcher      *Fetcher
	FilesDir     string
	PublicURL    string
	MinDimension int
}

// Factory builds a provider instance from its dependencies.
type Factory func(deps Deps) Provider

// Registry maps provider names to factories. It is seeded with the
// built-in providers; external packages register additional ones through
// Register before the chain is built.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry seeded with the built-in providers.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	builtins := map[string]Factory{
		"files": func(d Deps) Provider {
			return NewFilesProvider(d.FilesDir, d.PublicURL)
		},
		"open library": func(d Deps) Provider {
			return NewOpenLibraryProvider(d.Fetcher)
		},
		"bnf": func(d Deps) Provider {
			return NewBnfProvider(d.Fetcher, d.MinDimension)
		},
		"dnb": func(d Deps) Provider {
			return NewDnbProvider(d.Fetcher, d.MinDimension)
		},
		"google books": func(d Deps) Provider {
			return NewGoogleBooksProvider(d.Fetcher)
		},
		"google api": func(d Deps) Provider {
			return NewGoogleApiProvider(d.Fetcher)
		},
		"amazon": func(d Deps) Provider {
			return NewAmazonProvider(d.Fetcher)
		},
	}
	for name, f := range builtins {
		r.factories[name] = f
	}
	return r
}

// Register adds an external provider factory. Registering a name twice
// is a configuration error.
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("provider %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Names returns all registered provider names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// Build instantiates the chain in the configured order. Unknown and
// duplicate names are configuration errors raised here, once, never
// per-request.
func (r *Registry) Build(names []string, deps Deps) ([]Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(names))
	chain := make([]Provider, 0, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("duplicate provider in chain: %q", name)
		}
		seen[name] = true
		factory, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("unknown provider in chain: %q", name)
		}
		chain = append(chain, factory(deps))
	}
	return chain, nil
}
