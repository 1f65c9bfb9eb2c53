package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/shared"
)

var _ models.Repository[*models.CatalogContainer] = (*ContainerRepository)(nil)

const containerColumns = `id, sequence, parent_id, title, path, created_at, updated_at, deleted_at`

// ContainerRepository implements models.Repository[*models.CatalogContainer].
type ContainerRepository struct {
	db *sql.DB
}

// NewContainerRepository creates a new ContainerRepository with the given database connection
func NewContainerRepository(db *sql.DB) *ContainerRepository {
	return &ContainerRepository{db: db}
}

// Create inserts a new container with generated ID and sequence
func (r *ContainerRepository) Create(container *models.CatalogContainer) error {
	sequence, err := NextSequence(r.db, "catalog_containers")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	container.SetID(shared.GenerateID())
	container.SetSequence(sequence)

	if err := container.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO catalog_containers (id, sequence, parent_id, title, path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		container.ID(),
		container.Sequence(),
		nullable(container.ParentID()),
		container.Title(),
		container.Path(),
		container.CreatedAt(),
		container.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert container: %w", err)
	}

	return nil
}

// Get retrieves a container by ID, excluding soft-deleted containers
func (r *ContainerRepository) Get(id string) (*models.CatalogContainer, error) {
	query := `SELECT ` + containerColumns + ` FROM catalog_containers WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// GetByPath retrieves a container by the source path it was imported from
func (r *ContainerRepository) GetByPath(path string) (*models.CatalogContainer, error) {
	query := `SELECT ` + containerColumns + ` FROM catalog_containers WHERE path = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, path))
}

// Update modifies an existing container's title
func (r *ContainerRepository) Update(container *models.CatalogContainer) error {
	if err := container.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	container.SetUpdatedAt(now)

	result, err := r.db.Exec(
		`UPDATE catalog_containers SET title = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		container.Title(), now, container.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update container: %w", err)
	}

	return expectOne(result, "container", container.ID())
}

// Delete soft-deletes a container by ID
func (r *ContainerRepository) Delete(id string) error {
	result, err := r.db.Exec(
		`UPDATE catalog_containers SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete container: %w", err)
	}

	return expectOne(result, "container", id)
}

// List retrieves containers matching the given criteria ("parent_id": string), ordered by sequence
func (r *ContainerRepository) List(criteria map[string]any) ([]*models.CatalogContainer, error) {
	query := `SELECT ` + containerColumns + ` FROM catalog_containers WHERE deleted_at IS NULL`
	args := []any{}

	if parentID, ok := criteria["parent_id"].(string); ok {
		if parentID == "" {
			query += " AND parent_id IS NULL"
		} else {
			query += " AND parent_id = ?"
			args = append(args, parentID)
		}
	}

	query += " ORDER BY sequence ASC"
	return r.query(query, args...)
}

// CountChildren returns the number of live containers directly under parentID ("" for the root).
func (r *ContainerRepository) CountChildren(parentID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM catalog_containers WHERE parent_id IS ? AND deleted_at IS NULL`,
		nullable(parentID),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count containers: %w", err)
	}
	return count, nil
}

// Children returns up to limit containers under parentID starting at offset.
func (r *ContainerRepository) Children(parentID string, offset, limit int) ([]*models.CatalogContainer, error) {
	query := `SELECT ` + containerColumns + ` FROM catalog_containers
		WHERE parent_id IS ? AND deleted_at IS NULL
		ORDER BY title COLLATE NOCASE ASC, sequence ASC
		LIMIT ? OFFSET ?`
	return r.query(query, nullable(parentID), limit, offset)
}

func (r *ContainerRepository) query(query string, args ...any) ([]*models.CatalogContainer, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query containers: %w", err)
	}
	defer rows.Close()

	var containers []*models.CatalogContainer
	for rows.Next() {
		container, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		containers = append(containers, container)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return containers, nil
}

// scan reads a single row into a [models.CatalogContainer]
func (r *ContainerRepository) scan(row scanner) (*models.CatalogContainer, error) {
	var (
		id        string
		sequence  int
		parentID  sql.NullString
		title     string
		path      string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &parentID, &title, &path, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: container", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan container: %w", err)
	}

	container := models.NewCatalogContainer(sequence, parentID.String, title, path)
	container.SetID(id)
	container.SetCreatedAt(createdAt)
	container.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		container.SetDeletedAt(&deletedAt.Time)
	}

	return container, nil
}

func expectOne(result sql.Result, kind, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s (or already deleted)", shared.ErrNotFound, kind, id)
	}
	return nil
}
