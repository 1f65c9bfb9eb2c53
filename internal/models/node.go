package models

import (
	"fmt"
	"strings"
)

// Capability is a bitmask of the operations a [Provider] supports.
type Capability uint8

const (
	CanBrowse Capability = 1 << iota
	CanPlay
)

// Has reports whether every bit in o is set.
func (c Capability) Has(o Capability) bool {
	return c&o == o
}

func (c Capability) String() string {
	var parts []string
	if c.Has(CanBrowse) {
		parts = append(parts, "browse")
	}
	if c.Has(CanPlay) {
		parts = append(parts, "play")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// Provider identifies a content provider. Name is its stable identity.
type Provider struct {
	Name         string
	Description  string
	Capabilities Capability
}

// MediaKind classifies a playable leaf.
type MediaKind int

const (
	KindUnknown MediaKind = iota
	KindImage
	KindAudio
	KindVideo
)

func (k MediaKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// ParseMediaKind maps "image", "audio" and "video" to a [MediaKind].
// Anything else is [KindUnknown].
func ParseMediaKind(s string) MediaKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image":
		return KindImage
	case "audio":
		return KindAudio
	case "video":
		return KindVideo
	default:
		return KindUnknown
	}
}

// Node is the sum type of everything a provider tree can contain:
// [Source], [Container] or [Leaf]. The set is closed.
type Node interface {
	// Label returns the display title.
	Label() string
	// ProviderName returns the name of the provider that owns the node.
	ProviderName() string
	isNode()
}

var (
	_ Node = Source{}
	_ Node = Container{}
	_ Node = Leaf{}
)

// Source is a provider's root-level browsable entry.
type Source struct {
	Provider Provider
}

// Container is a browsable grouping inside a provider's tree.
// ID is opaque and only meaningful to the owning provider.
type Container struct {
	Provider string
	ID       string
	Title    string
}

// Leaf is a terminal playable item.
type Leaf struct {
	Provider string
	ID       string
	Title    string
	Kind     MediaKind
	URL      string
}

// Playable is a leaf resolved for playback handoff.
type Playable struct {
	URL  string
	Kind MediaKind
}

// NewSource wraps p as a root-level node.
func NewSource(p Provider) Source {
	return Source{Provider: p}
}

// NewContainer builds a container node. A missing title is left empty.
func NewContainer(provider, id, title string) Container {
	return Container{Provider: provider, ID: id, Title: title}
}

// NewLeaf builds a playable node. A missing title is left empty.
func NewLeaf(provider, id, title string, kind MediaKind, url string) Leaf {
	return Leaf{Provider: provider, ID: id, Title: title, Kind: kind, URL: url}
}

func (s Source) Label() string {
	return s.Provider.Name
}

func (s Source) ProviderName() string { return s.Provider.Name }
func (Source) isNode()                {}

func (c Container) Label() string        { return c.Title }
func (c Container) ProviderName() string { return c.Provider }
func (Container) isNode()                {}

func (l Leaf) Label() string        { return l.Title }
func (l Leaf) ProviderName() string { return l.Provider }
func (Leaf) isNode()                {}

// Playable resolves the leaf for the player.
func (l Leaf) Playable() (Playable, error) {
	if l.URL == "" {
		return Playable{}, fmt.Errorf("leaf %q has no url", l.Title)
	}
	return Playable{URL: l.URL, Kind: l.Kind}, nil
}

// Browsable reports whether n can start a browse.
// Only sources and containers qualify; a source also needs [CanBrowse].
func Browsable(n Node) bool {
	switch v := n.(type) {
	case Source:
		return v.Provider.Capabilities.Has(CanBrowse)
	case Container:
		return true
	default:
		return false
	}
}

// Same reports whether a and b denote the same breadcrumb entry.
//
// Sources are identified by provider name, containers by (provider name, id).
// Leaves never enter the breadcrumb trail and never compare equal.
func Same(a, b Node) bool {
	switch x := a.(type) {
	case Source:
		y, ok := b.(Source)
		return ok && x.Provider.Name == y.Provider.Name
	case Container:
		y, ok := b.(Container)
		return ok && x.Provider == y.Provider && x.ID == y.ID
	default:
		return false
	}
}

// Describe returns a short one-line description used in logs and plain output.
func Describe(n Node) string {
	switch v := n.(type) {
	case Source:
		return fmt.Sprintf("source %s", v.Provider.Name)
	case Container:
		return fmt.Sprintf("container %s:%s", v.Provider, v.ID)
	case Leaf:
		return fmt.Sprintf("%s %s:%s", v.Kind, v.Provider, v.ID)
	case nil:
		return "top"
	default:
		return fmt.Sprintf("%T", n)
	}
}
