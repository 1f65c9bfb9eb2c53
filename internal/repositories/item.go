package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/shared"
)

var _ models.Repository[*models.CatalogItem] = (*ItemRepository)(nil)

const itemColumns = `id, sequence, container_id, title, kind, url, created_at, updated_at, deleted_at`

// ItemRepository implements models.Repository[*models.CatalogItem].
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new ItemRepository with the given database connection
func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create inserts a new item with generated ID and sequence
func (r *ItemRepository) Create(item *models.CatalogItem) error {
	sequence, err := NextSequence(r.db, "catalog_items")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	item.SetID(shared.GenerateID())
	item.SetSequence(sequence)

	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO catalog_items (id, sequence, container_id, title, kind, url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		item.ID(),
		item.Sequence(),
		nullable(item.ContainerID()),
		item.Title(),
		item.Kind().String(),
		item.URL(),
		item.CreatedAt(),
		item.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	return nil
}

// Get retrieves an item by ID, excluding soft-deleted items
func (r *ItemRepository) Get(id string) (*models.CatalogItem, error) {
	query := `SELECT ` + itemColumns + ` FROM catalog_items WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// GetByURL retrieves the item with url inside containerID
func (r *ItemRepository) GetByURL(containerID, url string) (*models.CatalogItem, error) {
	query := `SELECT ` + itemColumns + ` FROM catalog_items WHERE container_id IS ? AND url = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, nullable(containerID), url))
}

// Update modifies an existing item's title and url
func (r *ItemRepository) Update(item *models.CatalogItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	item.SetUpdatedAt(now)

	result, err := r.db.Exec(
		`UPDATE catalog_items SET title = ?, url = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		item.Title(), item.URL(), now, item.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	return expectOne(result, "item", item.ID())
}

// Delete soft-deletes an item by ID
func (r *ItemRepository) Delete(id string) error {
	result, err := r.db.Exec(
		`UPDATE catalog_items SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return expectOne(result, "item", id)
}

// List retrieves items matching the given criteria ("container_id": string, "kind": string)
func (r *ItemRepository) List(criteria map[string]any) ([]*models.CatalogItem, error) {
	query := `SELECT ` + itemColumns + ` FROM catalog_items WHERE deleted_at IS NULL`
	args := []any{}

	if containerID, ok := criteria["container_id"].(string); ok {
		query += " AND container_id IS ?"
		args = append(args, nullable(containerID))
	}
	if kind, ok := criteria["kind"].(string); ok && kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	query += " ORDER BY sequence ASC"
	return r.query(query, args...)
}

// CountIn returns the number of live items directly in containerID ("" for the root).
func (r *ItemRepository) CountIn(containerID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM catalog_items WHERE container_id IS ? AND deleted_at IS NULL`,
		nullable(containerID),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// In returns up to limit items in containerID starting at offset.
func (r *ItemRepository) In(containerID string, offset, limit int) ([]*models.CatalogItem, error) {
	query := `SELECT ` + itemColumns + ` FROM catalog_items
		WHERE container_id IS ? AND deleted_at IS NULL
		ORDER BY title COLLATE NOCASE ASC, sequence ASC
		LIMIT ? OFFSET ?`
	return r.query(query, nullable(containerID), limit, offset)
}

// CountByKind returns live item counts keyed by media kind.
func (r *ItemRepository) CountByKind() (map[models.MediaKind]int, error) {
	rows, err := r.db.Query(`SELECT kind, COUNT(*) FROM catalog_items WHERE deleted_at IS NULL GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.MediaKind]int)
	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[models.ParseMediaKind(kind)] += count
	}

	return counts, rows.Err()
}

func (r *ItemRepository) query(query string, args ...any) ([]*models.CatalogItem, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.CatalogItem
	for rows.Next() {
		item, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// scan reads a single row into a [models.CatalogItem]
func (r *ItemRepository) scan(row scanner) (*models.CatalogItem, error) {
	var (
		id          string
		sequence    int
		containerID sql.NullString
		title       string
		kind        string
		url         string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := row.Scan(&id, &sequence, &containerID, &title, &kind, &url, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: item", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}

	item := models.NewCatalogItem(sequence, containerID.String, title, models.ParseMediaKind(kind), url)
	item.SetID(id)
	item.SetCreatedAt(createdAt)
	item.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		item.SetDeletedAt(&deletedAt.Time)
	}

	return item, nil
}
