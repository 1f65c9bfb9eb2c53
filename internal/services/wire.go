package services

import (
	"fmt"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/shared"
)

// Wire node kinds.
const (
	WireContainer = "container"
	WireLeaf      = "leaf"
)

// WireNode is the JSON form of a container or leaf exchanged with remote providers.
type WireNode struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Title string `json:"title"`
	Media string `json:"media,omitempty"`
	URL   string `json:"url,omitempty"`
}

// BrowseResponse is the body of GET /providers/{name}/browse.
//
// Count is the number of nodes in this page and is sent before them so a client can stream.
type BrowseResponse struct {
	Count int        `json:"count"`
	More  bool       `json:"more"`
	Nodes []WireNode `json:"nodes"`
}

// ProviderInfo is one entry of GET /providers.
type ProviderInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Browsable   bool   `json:"browsable"`
}

// NewProviderInfo describes p for the wire.
func NewProviderInfo(p models.Provider) ProviderInfo {
	return ProviderInfo{
		Name:        p.Name,
		Description: p.Description,
		Browsable:   p.Capabilities.Has(models.CanBrowse),
	}
}

// ToWire converts a container or leaf. Sources never cross the wire.
func ToWire(n models.Node) (WireNode, error) {
	switch v := n.(type) {
	case models.Container:
		return WireNode{Kind: WireContainer, ID: v.ID, Title: v.Title}, nil
	case models.Leaf:
		return WireNode{Kind: WireLeaf, ID: v.ID, Title: v.Title, Media: v.Kind.String(), URL: v.URL}, nil
	default:
		return WireNode{}, fmt.Errorf("%w: cannot encode %s", shared.ErrInvalidArgument, models.Describe(n))
	}
}

// FromWire converts w into a node owned by provider.
func FromWire(provider string, w WireNode) (models.Node, error) {
	switch w.Kind {
	case WireContainer:
		return models.NewContainer(provider, w.ID, w.Title), nil
	case WireLeaf:
		return models.NewLeaf(provider, w.ID, w.Title, models.ParseMediaKind(w.Media), w.URL), nil
	default:
		return nil, fmt.Errorf("%w: unknown node kind %q", shared.ErrInvalidInput, w.Kind)
	}
}
