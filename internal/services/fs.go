// Local directory [Backend] implementation
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/shared"
)

// FSBackend browses a directory tree rooted at root.
//
// Container IDs are slash-separated paths relative to root.
type FSBackend struct {
	provider models.Provider
	root     string
}

// NewFSBackend creates a filesystem provider. A leading ~ in root is expanded.
func NewFSBackend(provider models.Provider, root string) *FSBackend {
	return &FSBackend{provider: provider, root: shared.ExpandPath(root)}
}

// Provider returns the provider identity.
func (f *FSBackend) Provider() models.Provider { return f.provider }

// Root returns the expanded root directory.
func (f *FSBackend) Root() string { return f.root }

// Browse lists the directory named by container, directories first, then playable files.
func (f *FSBackend) Browse(ctx context.Context, container *models.Container, page models.Page, emit Emitter) {
	if err := validatePage(page); err != nil {
		emit(Result{Err: err})
		return
	}

	rel := ""
	if container != nil {
		rel = cleanRel(container.ID)
	}

	nodes, err := f.list(rel)
	if err != nil {
		emit(Result{Err: err})
		return
	}

	start, end, more := Window(page, len(nodes))
	EmitPage(ctx, nodes[start:end], more, emit)
}

func (f *FSBackend) list(rel string) ([]models.Node, error) {
	dir := filepath.Join(f.root, filepath.FromSlash(rel))
	if !IsSubpath(f.root, dir) {
		return nil, fmt.Errorf("%w: %s escapes provider root", shared.ErrInvalidArgument, rel)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, rel)
		}
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}

	var dirs, files []models.Node
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		id := joinRel(rel, name)

		if e.IsDir() {
			dirs = append(dirs, models.NewContainer(f.provider.Name, id, name))
			continue
		}

		if leaf, ok := f.leaf(filepath.Join(dir, name), id, name); ok {
			files = append(files, leaf)
		}
	}

	sortByLabel(dirs)
	sortByLabel(files)
	return append(dirs, files...), nil
}

// leaf maps a file to a playable node. Unsupported files are skipped.
func (f *FSBackend) leaf(path, id, name string) (models.Leaf, bool) {
	target, kind, ok := shared.FileTarget(path)
	if !ok {
		return models.Leaf{}, false
	}
	title := strings.TrimSuffix(name, filepath.Ext(name))
	return models.NewLeaf(f.provider.Name, id, title, kind, target), true
}

// IsSubpath ensures child is within root, preventing path traversal.
func IsSubpath(root, child string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absChild, err := filepath.Abs(child)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absChild)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func cleanRel(rel string) string {
	rel = filepath.ToSlash(filepath.Clean(filepath.FromSlash(rel)))
	rel = strings.TrimPrefix(rel, "/")
	if rel == "." {
		return ""
	}
	return rel
}

func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}
	return rel + "/" + name
}

func sortByLabel(nodes []models.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return strings.ToLower(nodes[i].Label()) < strings.ToLower(nodes[j].Label())
	})
}
