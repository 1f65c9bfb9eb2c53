package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mbx/internal/models"
)

var _ list.Item = nodeItem{}

// nodeItem wraps [models.Node] to implement [list.Item].
type nodeItem struct {
	node models.Node
}

func (i nodeItem) FilterValue() string { return i.node.Label() }
func (i nodeItem) Title() string {
	switch i.node.(type) {
	case models.Leaf:
		return i.node.Label()
	default:
		return i.node.Label() + "/"
	}
}

func (i nodeItem) Description() string {
	switch v := i.node.(type) {
	case models.Source:
		desc := v.Provider.Capabilities.String()
		if v.Provider.Description != "" {
			desc = fmt.Sprintf("%s • %s", desc, v.Provider.Description)
		}
		return desc
	case models.Container:
		return v.Provider
	case models.Leaf:
		return fmt.Sprintf("%s • %s", v.Kind, v.URL)
	default:
		return ""
	}
}
