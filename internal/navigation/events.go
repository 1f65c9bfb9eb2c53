package navigation

import (
	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/tasks"
)

// Event is anything the controller reacts to. The set is closed.
type Event interface {
	isEvent()
}

// ProviderClicked selects a provider from the top-level list.
type ProviderClicked struct {
	Provider models.Provider
}

// NodeClicked selects a node from the result list.
type NodeClicked struct {
	Node models.Node
}

// BreadcrumbClicked selects an entry of the trail. A nil Node is the synthetic top entry.
type BreadcrumbClicked struct {
	Node models.Node
}

// ProviderAdded and ProviderRemoved relay registry notifications.
type ProviderAdded struct {
	Provider models.Provider
}

type ProviderRemoved struct {
	Provider models.Provider
}

// Delivered carries a backend result back from a browse goroutine.
type Delivered struct {
	Delivery tasks.Delivery
}

// Back moves to the parent breadcrumb, or the top level from a provider root.
type Back struct{}

// Reload restarts the browse of the current location.
type Reload struct{}

func (ProviderClicked) isEvent()   {}
func (NodeClicked) isEvent()       {}
func (BreadcrumbClicked) isEvent() {}
func (ProviderAdded) isEvent()     {}
func (ProviderRemoved) isEvent()   {}
func (Delivered) isEvent()         {}
func (Back) isEvent()              {}
func (Reload) isEvent()            {}

// Top is the synthetic top-level breadcrumb click.
func Top() BreadcrumbClicked { return BreadcrumbClicked{} }
