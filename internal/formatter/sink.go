package formatter

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/mbx/internal/models"
)

// TextSink is a render sink for headless use. It keeps the latest trail, results and status so
// they can be printed as a [Listing] once a location settles.
//
// When Echo is set, every render call is also written to it as it happens.
type TextSink struct {
	Echo io.Writer

	mu      sync.Mutex
	path    []models.Node
	results []models.Node
	status  string
}

// NewTextSink creates a sink that echoes to w. w may be nil.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{Echo: w}
}

func (s *TextSink) SetBreadcrumbs(path []models.Node) {
	s.mu.Lock()
	s.path = append([]models.Node(nil), path...)
	s.mu.Unlock()
	s.echo("» %s", Listing{Path: path}.Trail())
}

func (s *TextSink) ClearResults() {
	s.mu.Lock()
	s.results = nil
	s.mu.Unlock()
}

func (s *TextSink) AppendResult(n models.Node) {
	s.mu.Lock()
	s.results = append(s.results, n)
	s.mu.Unlock()
	s.echo("  %s", Line(n))
}

func (s *TextSink) SetStatus(message string) {
	s.mu.Lock()
	s.status = message
	s.mu.Unlock()
	s.echo("[%s]", message)
}

// Listing snapshots the current state.
func (s *TextSink) Listing() Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Listing{
		Path:   append([]models.Node(nil), s.path...),
		Nodes:  append([]models.Node(nil), s.results...),
		More:   strings.HasSuffix(s.status, "(more available)"),
		Status: s.status,
	}
}

// Find resolves name against the current results. An exact id wins, then a file name
// (the last id segment, or the last URL path segment of a leaf), then a label ignoring case.
func (s *TextSink) Find(name string) (models.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matchers := []func(models.Node) bool{
		func(n models.Node) bool { return id(n) == name },
		func(n models.Node) bool { return slices.Contains(fileNames(n), name) },
		func(n models.Node) bool { return strings.EqualFold(n.Label(), name) },
	}
	for _, match := range matchers {
		for _, n := range s.results {
			if match(n) {
				return n, true
			}
		}
	}
	return nil, false
}

// fileNames lists the base names a node is known by on disk or at its URL.
func fileNames(n models.Node) []string {
	var names []string
	if i := id(n); strings.Contains(i, "/") {
		names = append(names, path.Base(i))
	}
	if leaf, ok := n.(models.Leaf); ok && leaf.URL != "" {
		if u, err := url.Parse(leaf.URL); err == nil && u.Path != "" && u.Path != "/" {
			names = append(names, path.Base(u.Path))
		}
	}
	return names
}

func id(n models.Node) string {
	switch v := n.(type) {
	case models.Source:
		return v.Provider.Name
	case models.Container:
		return v.ID
	case models.Leaf:
		return v.ID
	default:
		return ""
	}
}

func (s *TextSink) echo(format string, args ...any) {
	if s.Echo == nil {
		return
	}
	fmt.Fprintf(s.Echo, format+"\n", args...)
}
