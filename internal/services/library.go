// Catalog-backed [Backend] implementation
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/repositories"
)

// LibraryBackend browses the imported library catalog.
//
// A page spans child containers first, then items, both in catalog order.
type LibraryBackend struct {
	provider   models.Provider
	containers *repositories.ContainerRepository
	items      *repositories.ItemRepository
}

// NewLibraryBackend creates a catalog provider over db.
func NewLibraryBackend(provider models.Provider, db *sql.DB) *LibraryBackend {
	return &LibraryBackend{
		provider:   provider,
		containers: repositories.NewContainerRepository(db),
		items:      repositories.NewItemRepository(db),
	}
}

// Provider returns the provider identity.
func (l *LibraryBackend) Provider() models.Provider { return l.provider }

// Browse lists a page of the catalog container, or the catalog root when container is nil.
func (l *LibraryBackend) Browse(ctx context.Context, container *models.Container, page models.Page, emit Emitter) {
	if err := validatePage(page); err != nil {
		emit(Result{Err: err})
		return
	}

	parentID := ""
	if container != nil {
		if _, err := l.containers.Get(container.ID); err != nil {
			emit(Result{Err: err})
			return
		}
		parentID = container.ID
	}

	nodes, more, err := l.page(parentID, page)
	if err != nil {
		emit(Result{Err: err})
		return
	}
	EmitPage(ctx, nodes, more, emit)
}

func (l *LibraryBackend) page(parentID string, page models.Page) ([]models.Node, bool, error) {
	nContainers, err := l.containers.CountChildren(parentID)
	if err != nil {
		return nil, false, err
	}
	nItems, err := l.items.CountIn(parentID)
	if err != nil {
		return nil, false, err
	}

	start, end, more := Window(page, nContainers+nItems)
	nodes := make([]models.Node, 0, end-start)

	if start < nContainers {
		cEnd := min(end, nContainers)
		rows, err := l.containers.Children(parentID, start, cEnd-start)
		if err != nil {
			return nil, false, err
		}
		for _, row := range rows {
			nodes = append(nodes, row.Node(l.provider.Name))
		}
	}

	if end > nContainers {
		iStart := max(start-nContainers, 0)
		rows, err := l.items.In(parentID, iStart, end-nContainers-iStart)
		if err != nil {
			return nil, false, err
		}
		for _, row := range rows {
			nodes = append(nodes, row.Node(l.provider.Name))
		}
	}

	return nodes, more, nil
}

// Stats summarizes the catalog for the library stats command.
type Stats struct {
	Containers int
	Items      map[models.MediaKind]int
}

// Stats counts catalog rows.
func (l *LibraryBackend) Stats() (*Stats, error) {
	containers, err := l.containers.List(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count containers: %w", err)
	}
	kinds, err := l.items.CountByKind()
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	return &Stats{Containers: len(containers), Items: kinds}, nil
}

