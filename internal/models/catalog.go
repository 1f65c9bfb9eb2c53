package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	_ Model = (*CatalogContainer)(nil)
	_ Model = (*CatalogItem)(nil)
)

// CatalogContainer is a persisted grouping in the library catalog.
// An empty parent ID places the container at the library root.
type CatalogContainer struct {
	id        string
	sequence  int
	parentID  string
	title     string
	path      string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCatalogContainer creates a container row. The ID is assigned by the repository.
func NewCatalogContainer(sequence int, parentID, title, path string) *CatalogContainer {
	now := time.Now()
	return &CatalogContainer{
		sequence:  sequence,
		parentID:  parentID,
		title:     title,
		path:      path,
		createdAt: now,
		updatedAt: now,
	}
}

func (c *CatalogContainer) ID() string                { return c.id }
func (c *CatalogContainer) Sequence() int             { return c.sequence }
func (c *CatalogContainer) ParentID() string          { return c.parentID }
func (c *CatalogContainer) Title() string             { return c.title }
func (c *CatalogContainer) Path() string              { return c.path }
func (c *CatalogContainer) CreatedAt() time.Time      { return c.createdAt }
func (c *CatalogContainer) UpdatedAt() time.Time      { return c.updatedAt }
func (c *CatalogContainer) DeletedAt() *time.Time     { return c.deletedAt }
func (c *CatalogContainer) SetID(id string)           { c.id = id }
func (c *CatalogContainer) SetSequence(seq int)       { c.sequence = seq }
func (c *CatalogContainer) SetTitle(title string)     { c.title = title }
func (c *CatalogContainer) SetUpdatedAt(t time.Time)  { c.updatedAt = t }
func (c *CatalogContainer) SetCreatedAt(t time.Time)  { c.createdAt = t }
func (c *CatalogContainer) SetDeletedAt(t *time.Time) { c.deletedAt = t }

// Validate checks required fields.
func (c *CatalogContainer) Validate() error {
	if c.title == "" {
		return errors.New("container title is required")
	}
	if c.parentID != "" && c.parentID == c.id {
		return fmt.Errorf("container %s cannot be its own parent", c.id)
	}
	return nil
}

// Node converts the row into a navigation node owned by provider.
func (c *CatalogContainer) Node(provider string) Container {
	return NewContainer(provider, c.id, c.title)
}

// CatalogItem is a persisted playable entry in the library catalog.
type CatalogItem struct {
	id          string
	sequence    int
	containerID string
	title       string
	kind        MediaKind
	url         string
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewCatalogItem creates an item row. The ID is assigned by the repository.
func NewCatalogItem(sequence int, containerID, title string, kind MediaKind, url string) *CatalogItem {
	now := time.Now()
	return &CatalogItem{
		sequence:    sequence,
		containerID: containerID,
		title:       title,
		kind:        kind,
		url:         url,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (i *CatalogItem) ID() string                { return i.id }
func (i *CatalogItem) Sequence() int             { return i.sequence }
func (i *CatalogItem) ContainerID() string       { return i.containerID }
func (i *CatalogItem) Title() string             { return i.title }
func (i *CatalogItem) Kind() MediaKind           { return i.kind }
func (i *CatalogItem) URL() string               { return i.url }
func (i *CatalogItem) CreatedAt() time.Time      { return i.createdAt }
func (i *CatalogItem) UpdatedAt() time.Time      { return i.updatedAt }
func (i *CatalogItem) DeletedAt() *time.Time     { return i.deletedAt }
func (i *CatalogItem) SetID(id string)           { i.id = id }
func (i *CatalogItem) SetSequence(seq int)       { i.sequence = seq }
func (i *CatalogItem) SetTitle(title string)     { i.title = title }
func (i *CatalogItem) SetURL(url string)         { i.url = url }
func (i *CatalogItem) SetUpdatedAt(t time.Time)  { i.updatedAt = t }
func (i *CatalogItem) SetCreatedAt(t time.Time)  { i.createdAt = t }
func (i *CatalogItem) SetDeletedAt(t *time.Time) { i.deletedAt = t }

// Validate checks required fields.
func (i *CatalogItem) Validate() error {
	if i.title == "" {
		return errors.New("item title is required")
	}
	if i.url == "" {
		return errors.New("item url is required")
	}
	return nil
}

// Node converts the row into a navigation node owned by provider.
func (i *CatalogItem) Node(provider string) Leaf {
	return NewLeaf(provider, i.id, i.title, i.kind, i.url)
}
