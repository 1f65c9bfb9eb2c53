// Package ui implements an interactive terminal browser using bubbletea's Elm architecture.
//
// [Model] is both the bubbletea model and the render sink of a [navigation.Controller]. The
// controller runs inside Update, so the bubbletea loop is the single goroutine that owns the
// breadcrumb stack and browse sessions. Backend deliveries and registry notifications are
// posted from their own goroutines through [tea.Program.Send] and arrive as messages.
//
// Layout, top to bottom:
//  1. Breadcrumb trail, numbered so 1-9 jump to a crumb
//  2. Result list (providers, containers and leaves)
//  3. Status line with a spinner while a browse is streaming
//  4. Key help via charmbracelet/bubbles/help
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, t, r, y, q).
package ui
