package registry

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/services"
	"github.com/desertthunder/mbx/internal/shared"
)

// Build creates a registry with a backend for every configured provider, in config order.
//
// db backs library providers and may be nil when none are configured. logger is handed to
// backends that report recoverable problems; nil discards.
func Build(providers []shared.ProviderConfig, db *sql.DB, logger *log.Logger) (*Registry, error) {
	r := New()
	for _, pc := range providers {
		backend, err := NewBackend(pc, db, logger)
		if err != nil {
			return nil, err
		}
		if err := r.Add(backend); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewBackend creates the backend described by pc.
func NewBackend(pc shared.ProviderConfig, db *sql.DB, logger *log.Logger) (services.Backend, error) {
	provider := models.Provider{Name: pc.Name, Description: pc.Description, Capabilities: models.CanPlay}
	if pc.CanBrowse() {
		provider.Capabilities |= models.CanBrowse
	}

	switch pc.Type {
	case shared.ProviderFS:
		return services.NewFSBackend(provider, pc.Root), nil
	case shared.ProviderLibrary:
		if db == nil {
			return nil, fmt.Errorf("%w: provider %q needs the library database", shared.ErrMissingConfig, pc.Name)
		}
		return services.NewLibraryBackend(provider, db), nil
	case shared.ProviderRemote:
		return services.NewRemoteBackend(provider, services.RemoteOpts{
			BaseURL:      pc.URL,
			RemoteName:   pc.RemoteName,
			RateLimit:    pc.RateLimit,
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			TokenURL:     pc.TokenURL,
			Logger:       logger,
		})
	default:
		return nil, fmt.Errorf("%w: provider %q has unknown type %q", shared.ErrInvalidConfig, pc.Name, pc.Type)
	}
}

// NeedsDatabase reports whether any provider is backed by the library catalog.
func NeedsDatabase(providers []shared.ProviderConfig) bool {
	for _, pc := range providers {
		if pc.Type == shared.ProviderLibrary {
			return true
		}
	}
	return false
}
