package tasks

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mbx/internal/metrics"
	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/services"
	"github.com/desertthunder/mbx/internal/shared"
)

// DefaultPageSize is used when Start is given a non-positive page size.
const DefaultPageSize = 100

// Delivery is one backend result tagged with the token of the session that requested it.
type Delivery struct {
	Token  uint64
	Result services.Result
}

// Poster hands a delivery back to the navigation goroutine. It is called from backend goroutines.
type Poster func(Delivery)

// Resolver looks up provider backends by name; [registry.Registry] satisfies it.
type Resolver interface {
	Backend(name string) (services.Backend, bool)
}

// Report is the outcome of applying one delivery.
type Report struct {
	Session *Session    // Live session the delivery belonged to; nil when dropped
	Node    models.Node // Node to forward to the render sink, if any
	Done    bool        // The session reached Completed or Failed
	Err     error       // Set with Done when the session failed
}

// Dropped reports whether the delivery was discarded.
func (r Report) Dropped() bool { return r.Session == nil }

// ManagerOpts configures a [Manager].
type ManagerOpts struct {
	Backends Resolver
	Post     Poster
	Logger   *log.Logger
}

// Manager owns the single live browse session.
//
// Start, Apply, Stop and Live must all be called from the same goroutine.
type Manager struct {
	backends Resolver
	post     Poster
	logger   *log.Logger
	live     *Session
	last     uint64
}

// NewManager creates a session manager.
func NewManager(opts ManagerOpts) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	return &Manager{backends: opts.Backends, post: opts.Post, logger: logger}
}

// Live returns the current session, or nil if none was started since the last Stop.
func (m *Manager) Live() *Session { return m.live }

// Start supersedes the live session and begins browsing target.
//
// When target cannot be browsed Start returns an error matching [shared.ErrNotBrowsable]
// and leaves the live session untouched.
func (m *Manager) Start(ctx context.Context, target models.Node, pageSize int) (*Session, error) {
	backend, container, err := m.resolve(target)
	if err != nil {
		m.logger.Debug("browse refused", "target", models.Describe(target), "error", err)
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	m.supersede()

	m.last++
	session := newSession(m.last, target, pageSize)
	sctx, cancel := context.WithCancel(ctx)
	session.cancel = cancel
	m.live = session

	metrics.BrowseSessionsStarted.WithLabelValues(session.provider).Inc()
	m.logger.Info("browse started",
		"session", session.id, "token", session.token,
		"target", models.Describe(target), "count", pageSize)

	session.state = Streaming
	go m.run(sctx, backend, container, session.token, session.page)

	return session, nil
}

// Stop supersedes the live session without starting another.
func (m *Manager) Stop() {
	m.supersede()
	m.live = nil
}

// Apply processes a delivery on the navigation goroutine.
//
// A delivery whose token is not the live token, or that arrives after the live session ended,
// is dropped and never yields a node.
func (m *Manager) Apply(d Delivery) Report {
	s := m.live
	if s == nil || d.Token != s.token || s.state != Streaming {
		metrics.BrowseDeliveriesTotal.WithLabelValues(metrics.DeliveryDropped).Inc()
		m.logger.Debug("dropped stale delivery", "token", d.Token, "live", m.liveToken())
		return Report{}
	}

	r := d.Result
	if r.Err != nil {
		s.err = &BrowseFailedError{Target: s.target, Reason: r.Err}
		s.finish(Failed)
		m.observe(s, metrics.OutcomeFailed)
		m.logger.Warn("browse failed", "session", s.id, "target", models.Describe(s.target), "received", s.received, "error", r.Err)
		return Report{Session: s, Done: true, Err: s.err}
	}

	report := Report{Session: s}
	if r.Node != nil {
		s.received++
		report.Node = r.Node
		metrics.BrowseDeliveriesTotal.WithLabelValues(metrics.DeliveryForwarded).Inc()
	}

	if r.Remaining <= 0 {
		s.more = r.More
		s.finish(Completed)
		m.observe(s, metrics.OutcomeCompleted)
		m.logger.Info("browse completed", "session", s.id, "received", s.received, "more", s.more, "took", s.Duration())
		report.Done = true
	}
	return report
}

func (m *Manager) resolve(target models.Node) (services.Backend, *models.Container, error) {
	if !models.Browsable(target) {
		return nil, nil, fmt.Errorf("%w: %s", shared.ErrNotBrowsable, models.Describe(target))
	}
	if m.backends == nil {
		return nil, nil, fmt.Errorf("%w: no backends", shared.ErrServiceUnavailable)
	}

	backend, ok := m.backends.Backend(target.ProviderName())
	if !ok {
		return nil, nil, fmt.Errorf("%w: %w: %s", shared.ErrNotBrowsable, shared.ErrProviderNotFound, target.ProviderName())
	}
	if !backend.Provider().Capabilities.Has(models.CanBrowse) {
		return nil, nil, fmt.Errorf("%w: provider %s", shared.ErrNotBrowsable, target.ProviderName())
	}

	var container *models.Container
	if c, ok := target.(models.Container); ok {
		container = &c
	}
	return backend, container, nil
}

// run executes the backend call. A backend that returns without a terminal result
// completes the session with whatever it delivered.
func (m *Manager) run(ctx context.Context, backend services.Backend, container *models.Container, token uint64, page models.Page) {
	var terminated atomic.Bool
	backend.Browse(ctx, container, page, func(r services.Result) {
		if r.Terminal() {
			terminated.Store(true)
		}
		m.deliver(Delivery{Token: token, Result: r})
	})
	if !terminated.Load() {
		m.deliver(Delivery{Token: token, Result: services.Result{Remaining: 0}})
	}
}

func (m *Manager) deliver(d Delivery) {
	if m.post != nil {
		m.post(d)
	}
}

func (m *Manager) supersede() {
	s := m.live
	if s == nil || s.Terminal() {
		return
	}
	s.finish(Superseded)
	m.observe(s, metrics.OutcomeSuperseded)
	m.logger.Info("browse superseded", "session", s.id, "token", s.token, "received", s.received)
}

func (m *Manager) observe(s *Session, outcome string) {
	metrics.BrowseSessionsTotal.WithLabelValues(s.provider, outcome).Inc()
	metrics.BrowseSessionDuration.WithLabelValues(s.provider).Observe(s.Duration().Seconds())
}

func (m *Manager) liveToken() uint64 {
	if m.live == nil {
		return 0
	}
	return m.live.token
}
