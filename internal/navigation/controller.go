package navigation

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/registry"
	"github.com/desertthunder/mbx/internal/services"
	"github.com/desertthunder/mbx/internal/shared"
	"github.com/desertthunder/mbx/internal/tasks"
)

// RenderSink is the surface the controller paints. Implementations must not call back into
// the controller synchronously; clicks are posted as events.
type RenderSink interface {
	SetBreadcrumbs(path []models.Node)
	ClearResults()
	AppendResult(node models.Node)
	SetStatus(message string)
}

// Providers is the registry as seen by the controller.
type Providers interface {
	List() []models.Provider
	Backend(name string) (services.Backend, bool)
	OnProviderAdded(fn registry.Observer)
	OnProviderRemoved(fn registry.Observer)
}

// Settlement describes a location that finished loading.
type Settlement struct {
	Target  models.Node    // nil for the top level
	Session *tasks.Session // nil for the top level or a refused browse
	Err     error
}

// ControllerOpts configures a [Controller].
type ControllerOpts struct {
	Providers Providers
	Sink      RenderSink
	Player    services.Player
	PageSize  int
	Post      func(Event) // Queues an event for Handle; called from registry and backend goroutines
	Settled   func(Settlement)
	Played    func(leaf models.Leaf, err error)
	Logger    *log.Logger
}

// Controller is the only owner of the breadcrumb stack and the browse session manager.
//
// Start and Handle must be called from a single goroutine, normally the one running [Loop.Run]
// or the bubbletea update loop.
type Controller struct {
	ctx       context.Context
	providers Providers
	sink      RenderSink
	player    services.Player
	pageSize  int
	post      func(Event)
	settled   func(Settlement)
	played    func(models.Leaf, error)
	logger    *log.Logger

	stack    Stack
	sessions *tasks.Manager
	pending  int
	started  bool
}

// NewController wires a controller. Nothing is rendered until Start.
func NewController(opts ControllerOpts) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	post := opts.Post
	if post == nil {
		post = func(Event) {}
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = tasks.DefaultPageSize
	}

	c := &Controller{
		ctx:       context.Background(),
		providers: opts.Providers,
		sink:      opts.Sink,
		player:    opts.Player,
		pageSize:  pageSize,
		post:      post,
		settled:   opts.Settled,
		played:    opts.Played,
		logger:    logger,
	}
	c.sessions = tasks.NewManager(tasks.ManagerOpts{
		Backends: opts.Providers,
		Post:     func(d tasks.Delivery) { c.post(Delivered{Delivery: d}) },
		Logger:   logger,
	})
	return c
}

// Start subscribes to provider notifications and renders the top level.
// ctx bounds every browse session. Calling Start again only re-renders.
func (c *Controller) Start(ctx context.Context) {
	if ctx != nil {
		c.ctx = ctx
	}
	if !c.started {
		c.started = true
		c.providers.OnProviderAdded(func(p models.Provider) { c.post(ProviderAdded{Provider: p}) })
		c.providers.OnProviderRemoved(func(p models.Provider) { c.post(ProviderRemoved{Provider: p}) })
	}
	c.showTop()
}

// Handle applies one event.
func (c *Controller) Handle(ev Event) {
	switch e := ev.(type) {
	case ProviderClicked:
		c.openProvider(e.Provider)
	case NodeClicked:
		c.click(e.Node)
	case BreadcrumbClicked:
		c.jump(e.Node)
	case ProviderAdded:
		c.providersChanged("added", e.Provider)
	case ProviderRemoved:
		c.providersChanged("removed", e.Provider)
	case Delivered:
		c.deliver(e.Delivery)
	case Back:
		c.back()
	case Reload:
		c.reload()
	default:
		c.logger.Warn("ignoring unknown event", "event", ev)
	}
}

// Path returns a snapshot of the breadcrumb trail.
func (c *Controller) Path() []models.Node { return c.stack.Path() }

// Current returns the open location, or nil at the top level.
func (c *Controller) Current() models.Node { return c.stack.Current() }

// Session returns the most recent browse session, or nil.
func (c *Controller) Session() *tasks.Session { return c.sessions.Live() }

// Pending returns the number of provider changes seen away from the top level.
func (c *Controller) Pending() int { return c.pending }

func (c *Controller) openProvider(p models.Provider) {
	c.stack.Reset()
	source := models.NewSource(p)
	c.stack.PushOrJump(source)
	c.renderTrail()
	c.browse(source)
}

func (c *Controller) click(n models.Node) {
	switch v := n.(type) {
	case models.Source:
		c.openProvider(v.Provider)
	case models.Container:
		c.stack.PushOrJump(v)
		c.renderTrail()
		c.browse(v)
	case models.Leaf:
		c.play(v)
	default:
		c.logger.Warn("ignoring click on unknown node", "node", models.Describe(n))
	}
}

func (c *Controller) jump(n models.Node) {
	if n == nil {
		c.showTop()
		return
	}
	if err := c.stack.PushOrJump(n); err != nil {
		c.logger.Warn("ignoring breadcrumb click", "error", err)
		return
	}
	c.renderTrail()
	c.browse(c.stack.Current())
}

func (c *Controller) back() {
	parent := c.stack.Parent()
	if parent == nil {
		c.showTop()
		return
	}
	c.jump(parent)
}

func (c *Controller) reload() {
	current := c.stack.Current()
	if current == nil {
		c.showTop()
		return
	}
	c.renderTrail()
	c.browse(current)
}

func (c *Controller) showTop() {
	c.sessions.Stop()
	c.stack.Reset()
	c.renderTrail()

	providers := c.providers.List()
	for _, p := range providers {
		c.sink.AppendResult(models.NewSource(p))
	}
	c.sink.SetStatus(topStatus(len(providers)))
	c.pending = 0
	c.notify(Settlement{})
}

func (c *Controller) providersChanged(change string, p models.Provider) {
	c.logger.Debug("provider "+change, "provider", p.Name, "top", c.stack.AtTop())
	if c.stack.AtTop() {
		c.showTop()
		return
	}
	c.pending++
}

func (c *Controller) renderTrail() {
	c.sink.SetBreadcrumbs(c.stack.Path())
	c.sink.ClearResults()
}

func (c *Controller) browse(target models.Node) {
	c.sink.SetStatus(loadingStatus(target))

	if _, err := c.sessions.Start(c.ctx, target, c.pageSize); err != nil {
		c.sessions.Stop()
		c.sink.SetStatus(refusedStatus(target, err))
		c.notify(Settlement{Target: target, Err: err})
	}
}

func (c *Controller) deliver(d tasks.Delivery) {
	report := c.sessions.Apply(d)
	if report.Dropped() {
		return
	}
	if report.Node != nil {
		c.sink.AppendResult(report.Node)
	}
	if report.Done {
		c.sink.SetStatus(doneStatus(report.Session))
		c.notify(Settlement{Target: report.Session.Target(), Session: report.Session, Err: report.Err})
	}
}

func (c *Controller) play(leaf models.Leaf) {
	item, err := leaf.Playable()
	if err == nil && c.player == nil {
		err = fmt.Errorf("%w: no player configured", shared.ErrNotPlayable)
	}
	if err == nil {
		err = c.player.Play(item)
	}
	if err != nil {
		c.logger.Warn("playback failed", "leaf", models.Describe(leaf), "error", err)
		c.sink.SetStatus(playFailedStatus(leaf, err))
	} else {
		c.logger.Info("playback handed off", "leaf", models.Describe(leaf), "url", item.URL)
		c.sink.SetStatus(playingStatus(leaf))
	}
	if c.played != nil {
		c.played(leaf, err)
	}
}

func (c *Controller) notify(s Settlement) {
	if c.settled != nil {
		c.settled(s)
	}
}
