package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	enter  key.Binding
	back   key.Binding
	top    key.Binding
	crumb  key.Binding
	reload key.Binding
	yank   key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:  key.NewBinding(key.WithKeys("enter", "l", "right"), key.WithHelp("enter", "open/play")),
		back:   key.NewBinding(key.WithKeys("esc", "backspace", "h", "left"), key.WithHelp("esc", "back")),
		top:    key.NewBinding(key.WithKeys("t", "0", "home"), key.WithHelp("t", "providers")),
		crumb:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "jump")),
		reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		yank:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy url")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.back, k.top, k.crumb, k.reload, k.yank, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.top, k.crumb},
		{k.reload, k.yank, k.quit},
	}
}
