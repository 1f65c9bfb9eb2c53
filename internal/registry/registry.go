// Package registry keeps the set of known content providers in arrival order
// and notifies observers when providers come and go.
//
// The registry owns provider backends; the navigation core only ever holds
// [models.Provider] values and looks backends up by name.
package registry

import (
	"fmt"
	"sync"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/services"
	"github.com/desertthunder/mbx/internal/shared"
)

// Observer is notified with the provider that was added or removed.
type Observer func(models.Provider)

// Registry is an insertion-ordered provider set. It is safe for concurrent use.
//
// Observers run on the goroutine that called [Registry.Add] or [Registry.Remove],
// after the registry lock has been released.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	backends map[string]services.Backend
	added    []Observer
	removed  []Observer
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{backends: make(map[string]services.Backend)}
}

// Add registers backend under its provider name.
func (r *Registry) Add(backend services.Backend) error {
	p := backend.Provider()
	if p.Name == "" {
		return fmt.Errorf("%w: provider has no name", shared.ErrInvalidArgument)
	}

	r.mu.Lock()
	if _, ok := r.backends[p.Name]; ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: provider %q already registered", shared.ErrInvalidArgument, p.Name)
	}
	r.backends[p.Name] = backend
	r.order = append(r.order, p.Name)
	observers := append([]Observer(nil), r.added...)
	r.mu.Unlock()

	for _, fn := range observers {
		fn(p)
	}
	return nil
}

// Remove drops the provider called name.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	backend, ok := r.backends[name]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", shared.ErrProviderNotFound, name)
	}
	delete(r.backends, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	observers := append([]Observer(nil), r.removed...)
	r.mu.Unlock()

	p := backend.Provider()
	for _, fn := range observers {
		fn(p)
	}
	return nil
}

// List returns a snapshot of the known providers in arrival order.
func (r *Registry) List() []models.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]models.Provider, 0, len(r.order))
	for _, name := range r.order {
		providers = append(providers, r.backends[name].Provider())
	}
	return providers
}

// Backend looks up the backend for a provider name.
func (r *Registry) Backend(name string) (services.Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.backends[name]
	return b, ok
}

// OnProviderAdded registers fn for provider additions.
func (r *Registry) OnProviderAdded(fn Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.added = append(r.added, fn)
}

// OnProviderRemoved registers fn for provider removals.
func (r *Registry) OnProviderRemoved(fn Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, fn)
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
