// package formatter renders navigation listings and provider tables as plain text, CSV, Markdown or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/services"
	"github.com/desertthunder/mbx/internal/shared"
)

// Output formats accepted by [Write].
const (
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Listing is one settled location: the breadcrumb trail and the nodes shown under it.
type Listing struct {
	Path   []models.Node
	Nodes  []models.Node
	More   bool
	Status string
}

// Trail joins the labels of the listing's path, e.g. "Movies / Action".
// The top level is rendered as "/".
func (l Listing) Trail() string {
	if len(l.Path) == 0 {
		return "/"
	}
	labels := make([]string, len(l.Path))
	for i, n := range l.Path {
		labels[i] = n.Label()
	}
	return strings.Join(labels, " / ")
}

// ExportToCSV converts a listing to CSV with columns: Kind, Provider, ID, Title, Media, URL
func ExportToCSV(l Listing) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Kind", "Provider", "ID", "Title", "Media", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, n := range l.Nodes {
		if err := writer.Write(record(n)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func record(n models.Node) []string {
	switch v := n.(type) {
	case models.Source:
		return []string{"source", v.Provider.Name, v.Provider.Name, v.Label(), "", ""}
	case models.Container:
		return []string{services.WireContainer, v.Provider, v.ID, v.Title, "", ""}
	case models.Leaf:
		return []string{services.WireLeaf, v.Provider, v.ID, v.Title, v.Kind.String(), v.URL}
	default:
		return []string{"", n.ProviderName(), "", n.Label(), "", ""}
	}
}

// ExportToMarkdown converts a listing to a Markdown document headed by its trail.
func ExportToMarkdown(l Listing) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", l.Trail()))
	if l.Status != "" {
		buf.WriteString(fmt.Sprintf("**Status**: %s\n\n", l.Status))
	}

	for i, n := range l.Nodes {
		switch v := n.(type) {
		case models.Leaf:
			buf.WriteString(fmt.Sprintf("%d. [%s](%s) (%s)\n", i+1, v.Title, v.URL, v.Kind))
		default:
			buf.WriteString(fmt.Sprintf("%d. **%s**/\n", i+1, n.Label()))
		}
	}

	if l.More {
		buf.WriteString("\n_More items available._\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a listing to plain text, one node per line.
// Containers and sources end in "/" so they read like directories.
func ExportToText(l Listing) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", l.Trail()))
	for _, n := range l.Nodes {
		buf.WriteString(fmt.Sprintf("  %s\n", Line(n)))
	}
	if l.Status != "" {
		buf.WriteString(fmt.Sprintf("%s\n", l.Status))
	}

	return buf.Bytes(), nil
}

// Line renders one node for plain output.
func Line(n models.Node) string {
	switch v := n.(type) {
	case models.Leaf:
		return fmt.Sprintf("%-40s %-7s %s", v.Title, v.Kind, v.URL)
	default:
		return n.Label() + "/"
	}
}

type jsonListing struct {
	Path   []string            `json:"path"`
	Nodes  []services.WireNode `json:"nodes"`
	More   bool                `json:"more"`
	Status string              `json:"status,omitempty"`
}

// ToJSON encodes a listing with nodes in their wire form. Sources are written as containers named
// after their provider.
func ToJSON(l Listing) ([]byte, error) {
	out := jsonListing{Path: []string{}, Nodes: []services.WireNode{}, More: l.More, Status: l.Status}
	for _, n := range l.Path {
		out.Path = append(out.Path, n.Label())
	}
	for _, n := range l.Nodes {
		w, err := wire(n)
		if err != nil {
			return nil, err
		}
		out.Nodes = append(out.Nodes, w)
	}
	return json.MarshalIndent(out, "", "  ")
}

func wire(n models.Node) (services.WireNode, error) {
	if s, ok := n.(models.Source); ok {
		return services.WireNode{Kind: services.WireContainer, ID: s.Provider.Name, Title: s.Label()}, nil
	}
	return services.ToWire(n)
}

// Write renders l to w in format.
func Write(w io.Writer, format string, l Listing) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(format) {
	case "", FormatText:
		data, err = ExportToText(l)
	case FormatCSV:
		data, err = ExportToCSV(l)
	case FormatMarkdown, "md":
		data, err = ExportToMarkdown(l)
	case FormatJSON:
		data, err = ToJSON(l)
		data = append(data, '\n')
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile renders l in format to path.
func WriteFile(path, format string, l Listing) error {
	var buf bytes.Buffer
	if err := Write(&buf, format, l); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteProviders prints the registered providers as a table or JSON.
func WriteProviders(w io.Writer, format string, providers []models.Provider) error {
	if strings.ToLower(format) == FormatJSON {
		infos := make([]services.ProviderInfo, len(providers))
		for i, p := range providers {
			infos[i] = services.NewProviderInfo(p)
		}
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	if len(providers) == 0 {
		_, err := fmt.Fprintln(w, "No providers configured")
		return err
	}
	for _, p := range providers {
		if _, err := fmt.Fprintf(w, "%-20s %-12s %s\n", p.Name, p.Capabilities, p.Description); err != nil {
			return err
		}
	}
	return nil
}
