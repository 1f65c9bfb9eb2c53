package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/shared"
)

// ImportResult summarizes one import run.
type ImportResult struct {
	Containers int // Containers created
	Items      int // Items created
	Skipped    int // Files already present or not playable
}

// Importer mirrors a directory tree into the catalog.
//
// Re-importing the same directory is idempotent: containers are matched by source path and items by URL.
type Importer struct {
	containers *ContainerRepository
	items      *ItemRepository
	logger     *log.Logger
}

// NewImporter creates an Importer over db.
func NewImporter(db *sql.DB, logger *log.Logger) *Importer {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	return &Importer{
		containers: NewContainerRepository(db),
		items:      NewItemRepository(db),
		logger:     logger,
	}
}

// Import walks dir and adds it to the catalog as a root-level container.
func (im *Importer) Import(ctx context.Context, dir string) (*ImportResult, error) {
	root, err := filepath.Abs(shared.ExpandPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidArgument, root)
	}

	result := &ImportResult{}
	ids := map[string]string{}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			im.logger.Warn("skipping unreadable path", "path", path, "error", walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if path != root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		parentID := ""
		if path != root {
			parentID = ids[filepath.Dir(path)]
		}

		if d.IsDir() {
			id, created, err := im.ensureContainer(parentID, name, path)
			if err != nil {
				return err
			}
			ids[path] = id
			if created {
				result.Containers++
			}
			return nil
		}

		created, err := im.ensureItem(parentID, path)
		if err != nil {
			return err
		}
		if created {
			result.Items++
		} else {
			result.Skipped++
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("import of %s stopped: %w", root, err)
	}

	im.logger.Info("import finished", "root", root, "containers", result.Containers, "items", result.Items, "skipped", result.Skipped)
	return result, nil
}

func (im *Importer) ensureContainer(parentID, title, path string) (string, bool, error) {
	existing, err := im.containers.GetByPath(path)
	if err == nil {
		return existing.ID(), false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return "", false, err
	}

	container := models.NewCatalogContainer(0, parentID, title, path)
	if err := im.containers.Create(container); err != nil {
		return "", false, err
	}
	return container.ID(), true, nil
}

func (im *Importer) ensureItem(containerID, path string) (bool, error) {
	target, kind, ok := shared.FileTarget(path)
	if !ok {
		return false, nil
	}

	if _, err := im.items.GetByURL(containerID, target); err == nil {
		return false, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}

	name := filepath.Base(path)
	title := strings.TrimSuffix(name, filepath.Ext(name))
	if err := im.items.Create(models.NewCatalogItem(0, containerID, title, kind, target)); err != nil {
		return false, err
	}
	return true, nil
}
