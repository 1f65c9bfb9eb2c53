package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mbx/internal/navigation"
)

var (
	_ tea.Msg = startMsg{}
	_ tea.Msg = eventMsg{}
)

// startMsg renders the top level once the program is running.
type startMsg struct{}

// eventMsg carries a navigation event posted from outside the update loop,
// e.g. a backend delivery or a registry notification.
type eventMsg struct {
	event navigation.Event
}
