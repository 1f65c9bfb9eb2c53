package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/navigation"
	"github.com/desertthunder/mbx/internal/services"
	"github.com/desertthunder/mbx/internal/tasks"
)

var (
	_ tea.Model             = (*Model)(nil)
	_ navigation.RenderSink = (*Model)(nil)
	_ Painter               = (*Palette)(nil)
)

// Opts configures a [Model].
type Opts struct {
	Providers navigation.Providers
	Player    services.Player
	PageSize  int
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	ctrl    *navigation.Controller
	send    func(tea.Msg)
	copy    func(string) error
	width   int
	height  int
	path    []models.Node
	items   []list.Item
	results list.Model
	status  string
	note    string
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	cmds    []tea.Cmd
}

// NewModel creates a new TUI model. Call [Model.Attach] with the program before running it.
func NewModel(ctx context.Context, opts Opts) *Model {
	results := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	results.Title = "mbx"
	results.SetShowHelp(false)
	results.SetShowStatusBar(false)
	results.KeyMap.Quit.SetEnabled(false)

	m := &Model{
		ctx:     ctx,
		copy:    clipboard.WriteAll,
		results: results,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.warn)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.ctrl = navigation.NewController(navigation.ControllerOpts{
		Providers: opts.Providers,
		Sink:      m,
		Player:    opts.Player,
		PageSize:  opts.PageSize,
		Post:      m.post,
		Logger:    opts.Logger,
	})
	return m
}

// Attach routes events posted from backend and registry goroutines into p.
func (m *Model) Attach(p *tea.Program) {
	m.send = p.Send
}

// Controller exposes the navigation controller driven by this model.
func (m *Model) Controller() *navigation.Controller { return m.ctrl }

func (m *Model) post(ev navigation.Event) {
	if m.send != nil {
		m.send(eventMsg{event: ev})
	}
}

// Init starts the spinner and renders the provider list.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return startMsg{} })
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.SetSize(msg.Width-2, max(msg.Height-6, 1))
		return m, nil

	case startMsg:
		m.ctrl.Start(m.ctx)
		return m, m.flush()

	case eventMsg:
		m.ctrl.Handle(msg.event)
		return m, m.flush()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.results.FilterState() == list.Filtering {
			break
		}
		if cmd, ok := m.handleKeys(msg); ok {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, tea.Batch(cmd, m.flush())
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	m.note = ""
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit, true
	case key.Matches(msg, m.keys.enter):
		if n := m.Selected(); n != nil {
			m.ctrl.Handle(navigation.NodeClicked{Node: n})
		}
	case key.Matches(msg, m.keys.back):
		m.ctrl.Handle(navigation.Back{})
	case key.Matches(msg, m.keys.top):
		m.ctrl.Handle(navigation.Top())
	case key.Matches(msg, m.keys.crumb):
		i, _ := strconv.Atoi(msg.String())
		if i < 1 || i > len(m.path) {
			return nil, true
		}
		m.ctrl.Handle(navigation.BreadcrumbClicked{Node: m.path[i-1]})
	case key.Matches(msg, m.keys.reload):
		m.ctrl.Handle(navigation.Reload{})
	case key.Matches(msg, m.keys.yank):
		m.yank()
	default:
		return nil, false
	}
	return m.flush(), true
}

// Selected returns the highlighted node, or nil for an empty list.
func (m *Model) Selected() models.Node {
	if it, ok := m.results.SelectedItem().(nodeItem); ok {
		return it.node
	}
	return nil
}

func (m *Model) yank() {
	leaf, ok := m.Selected().(models.Leaf)
	if !ok || leaf.URL == "" {
		m.note = "Nothing to copy"
		return
	}
	if err := m.copy(leaf.URL); err != nil {
		m.note = fmt.Sprintf("Clipboard unavailable: %v", err)
		return
	}
	m.note = fmt.Sprintf("Copied %s", leaf.URL)
}

func (m *Model) flush() tea.Cmd {
	if len(m.cmds) == 0 {
		return nil
	}
	cmds := m.cmds
	m.cmds = nil
	return tea.Batch(cmds...)
}

func (m *Model) SetBreadcrumbs(path []models.Node) {
	m.path = append([]models.Node(nil), path...)
}

func (m *Model) ClearResults() {
	m.items = nil
	m.cmds = append(m.cmds, m.results.SetItems(nil))
	m.results.ResetSelected()
}

func (m *Model) AppendResult(n models.Node) {
	m.items = append(m.items, nodeItem{node: n})
	m.cmds = append(m.cmds, m.results.InsertItem(len(m.items)-1, nodeItem{node: n}))
}

func (m *Model) SetStatus(message string) {
	m.status = message
}

// Path returns the breadcrumb trail as last rendered.
func (m *Model) Path() []models.Node { return m.path }

// Status returns the status line as last rendered.
func (m *Model) Status() string { return m.status }

// Items returns the rendered result nodes.
func (m *Model) Items() []models.Node {
	nodes := make([]models.Node, len(m.items))
	for i, it := range m.items {
		nodes[i] = it.(nodeItem).node
	}
	return nodes
}

func (m *Model) streaming() bool {
	s := m.ctrl.Session()
	return s != nil && s.State() == tasks.Streaming
}

func (m *Model) failed() bool {
	s := m.ctrl.Session()
	return s != nil && s.State() == tasks.Failed
}

// View renders the breadcrumb trail, results, status and help.
func (m *Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTrail(),
		m.results.View(),
		m.renderStatus(),
		m.help.ShortHelpView(m.keys.ShortHelp()),
	)
}

func (m *Model) renderTrail() string {
	parts := []string{styles.crumb.Render("0:providers")}
	for i, n := range m.path {
		text := fmt.Sprintf("%s:%s", styles.As(strconv.Itoa(i+1), lipgloss.Color("#626262")), n.Label())
		if i == len(m.path)-1 {
			text = styles.here.Render(text)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, styles.crumb.Render(" › "))
}

func (m *Model) renderStatus() string {
	switch {
	case m.note != "":
		return styles.help.Render(m.note)
	case m.streaming():
		return fmt.Sprintf("%s %s", m.spinner.View(), styles.warn.Render(m.status))
	case m.failed() || strings.HasPrefix(m.status, "Cannot play"):
		return styles.err.Render(m.status)
	default:
		return styles.ok.Render(m.status)
	}
}
