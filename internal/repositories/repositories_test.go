package repositories

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "catalog_items")
		if err != nil {
			t.Fatalf("NextSequence() error = %v", err)
		}
		if got != want {
			t.Errorf("NextSequence() = %d, want %d", got, want)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for unknown table")
	}
}

func TestContainerRepository(t *testing.T) {
	t.Run("Create and Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewContainerRepository(db)
		container := models.NewCatalogContainer(0, "", "Movies", "/srv/movies")

		if err := repo.Create(container); err != nil {
			t.Fatalf("failed to create container: %v", err)
		}
		if container.ID() == "" {
			t.Fatal("container ID should be set after creation")
		}
		if container.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", container.Sequence())
		}

		got, err := repo.Get(container.ID())
		if err != nil {
			t.Fatalf("failed to get container: %v", err)
		}
		if got.Title() != "Movies" || got.ParentID() != "" || got.Path() != "/srv/movies" {
			t.Errorf("unexpected container: %s %q %s", got.Title(), got.ParentID(), got.Path())
		}

		byPath, err := repo.GetByPath("/srv/movies")
		if err != nil {
			t.Fatalf("failed to get by path: %v", err)
		}
		if byPath.ID() != container.ID() {
			t.Errorf("GetByPath returned %s, want %s", byPath.ID(), container.ID())
		}
	})

	t.Run("Create rejects empty title", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewContainerRepository(db).Create(models.NewCatalogContainer(0, "", "", "")); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewContainerRepository(db).Get("nope")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Children paging and counts", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewContainerRepository(db)
		root := models.NewCatalogContainer(0, "", "Root", "")
		if err := repo.Create(root); err != nil {
			t.Fatalf("failed to create root: %v", err)
		}
		for _, title := range []string{"charlie", "Alpha", "bravo"} {
			if err := repo.Create(models.NewCatalogContainer(0, root.ID(), title, "")); err != nil {
				t.Fatalf("failed to create child: %v", err)
			}
		}

		rootCount, err := repo.CountChildren("")
		if err != nil {
			t.Fatalf("CountChildren() error = %v", err)
		}
		if rootCount != 1 {
			t.Errorf("expected 1 root container, got %d", rootCount)
		}

		count, err := repo.CountChildren(root.ID())
		if err != nil {
			t.Fatalf("CountChildren() error = %v", err)
		}
		if count != 3 {
			t.Errorf("expected 3 children, got %d", count)
		}

		page, err := repo.Children(root.ID(), 1, 5)
		if err != nil {
			t.Fatalf("Children() error = %v", err)
		}
		if len(page) != 2 || page[0].Title() != "bravo" || page[1].Title() != "charlie" {
			t.Errorf("unexpected page: %v", titles(page))
		}

		listed, err := repo.List(map[string]any{"parent_id": root.ID()})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(listed) != 3 || listed[0].Title() != "charlie" {
			t.Errorf("List should keep sequence order, got %v", titles(listed))
		}
	})

	t.Run("Update and Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewContainerRepository(db)
		container := models.NewCatalogContainer(0, "", "Old", "")
		if err := repo.Create(container); err != nil {
			t.Fatalf("failed to create container: %v", err)
		}

		container.SetTitle("New")
		if err := repo.Update(container); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		got, _ := repo.Get(container.ID())
		if got.Title() != "New" {
			t.Errorf("expected updated title, got %s", got.Title())
		}

		if err := repo.Delete(container.ID()); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := repo.Get(container.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("deleted container should not be found, got %v", err)
		}
		if err := repo.Delete(container.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("second delete should report ErrNotFound, got %v", err)
		}
	})
}

func TestItemRepository(t *testing.T) {
	t.Run("Create, Get and GetByURL", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewItemRepository(db)
		item := models.NewCatalogItem(0, "", "clip", models.KindVideo, "file:///clip.mp4")
		if err := repo.Create(item); err != nil {
			t.Fatalf("failed to create item: %v", err)
		}

		got, err := repo.Get(item.ID())
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Kind() != models.KindVideo || got.URL() != "file:///clip.mp4" {
			t.Errorf("unexpected item: %v %s", got.Kind(), got.URL())
		}

		byURL, err := repo.GetByURL("", "file:///clip.mp4")
		if err != nil {
			t.Fatalf("GetByURL() error = %v", err)
		}
		if byURL.ID() != item.ID() {
			t.Errorf("GetByURL returned %s, want %s", byURL.ID(), item.ID())
		}
	})

	t.Run("Create requires url", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewItemRepository(db).Create(models.NewCatalogItem(0, "", "clip", models.KindVideo, "")); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("In, CountIn and CountByKind", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		containers := NewContainerRepository(db)
		box := models.NewCatalogContainer(0, "", "Box", "")
		if err := containers.Create(box); err != nil {
			t.Fatalf("failed to create container: %v", err)
		}

		repo := NewItemRepository(db)
		for _, it := range []*models.CatalogItem{
			models.NewCatalogItem(0, box.ID(), "b", models.KindAudio, "file:///b.mp3"),
			models.NewCatalogItem(0, box.ID(), "a", models.KindVideo, "file:///a.mp4"),
			models.NewCatalogItem(0, "", "root", models.KindImage, "file:///root.png"),
		} {
			if err := repo.Create(it); err != nil {
				t.Fatalf("failed to create item: %v", err)
			}
		}

		count, err := repo.CountIn(box.ID())
		if err != nil {
			t.Fatalf("CountIn() error = %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 items in box, got %d", count)
		}

		items, err := repo.In(box.ID(), 0, 10)
		if err != nil {
			t.Fatalf("In() error = %v", err)
		}
		if len(items) != 2 || items[0].Title() != "a" {
			t.Errorf("expected items sorted by title, got %d items", len(items))
		}

		kinds, err := repo.CountByKind()
		if err != nil {
			t.Fatalf("CountByKind() error = %v", err)
		}
		if kinds[models.KindVideo] != 1 || kinds[models.KindAudio] != 1 || kinds[models.KindImage] != 1 {
			t.Errorf("unexpected kind counts: %v", kinds)
		}

		videos, err := repo.List(map[string]any{"kind": "video"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(videos) != 1 {
			t.Errorf("expected 1 video, got %d", len(videos))
		}
	})
}

func TestImporter(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "movie.mp4"), "")
	mustWrite(t, filepath.Join(dir, "notes.txt"), "not media")
	mustWrite(t, filepath.Join(dir, "Shows", "ep1.mkv"), "")
	mustWrite(t, filepath.Join(dir, "Shows", "live.strm"), "http://example.com/live.m3u8\n")
	mustWrite(t, filepath.Join(dir, ".hidden", "secret.mp4"), "")

	db := setupTestDB(t)
	defer db.Close()

	importer := NewImporter(db, nil)

	result, err := importer.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Containers != 2 {
		t.Errorf("expected 2 containers (root + Shows), got %d", result.Containers)
	}
	if result.Items != 3 {
		t.Errorf("expected 3 items, got %d", result.Items)
	}

	again, err := importer.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if again.Containers != 0 || again.Items != 0 {
		t.Errorf("re-import should not create rows, got %+v", again)
	}

	containers := NewContainerRepository(db)
	roots, err := containers.Children("", 0, 10)
	if err != nil {
		t.Fatalf("Children() error = %v", err)
	}
	if len(roots) != 1 || roots[0].Title() != filepath.Base(dir) {
		t.Fatalf("expected the imported directory as the only root, got %v", titles(roots))
	}

	t.Run("rejects files", func(t *testing.T) {
		if _, err := importer.Import(context.Background(), filepath.Join(dir, "movie.mp4")); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := NewImporter(setupTestDB(t), nil).Import(ctx, dir); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func titles(containers []*models.CatalogContainer) []string {
	out := make([]string, len(containers))
	for i, c := range containers {
		out[i] = c.Title()
	}
	return out
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
