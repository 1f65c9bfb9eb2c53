package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/shared"
)

// State is the lifecycle position of a [Session].
type State int

const (
	Created State = iota
	Streaming
	Completed
	Failed
	Superseded
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Streaming:
		return "streaming"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Superseded:
		return "superseded"
	default:
		return ""
	}
}

// Terminal reports whether s is an end state.
func (s State) Terminal() bool {
	return s == Completed || s == Failed || s == Superseded
}

// Session is one paginated browse of a target. Only the [Manager] mutates it.
type Session struct {
	id       string
	token    uint64
	target   models.Node
	provider string
	page     models.Page
	state    State
	received int
	more     bool
	err      error
	started  time.Time
	ended    time.Time
	cancel   context.CancelFunc
}

func newSession(token uint64, target models.Node, pageSize int) *Session {
	return &Session{
		id:       shared.GenerateID(),
		token:    token,
		target:   target,
		provider: target.ProviderName(),
		page:     models.Page{Offset: 0, Count: pageSize},
		state:    Created,
		started:  time.Now(),
	}
}

func (s *Session) ID() string          { return s.id }
func (s *Session) Token() uint64       { return s.token }
func (s *Session) Target() models.Node { return s.target }
func (s *Session) Page() models.Page   { return s.page }
func (s *Session) State() State        { return s.state }
func (s *Session) Received() int       { return s.received }
func (s *Session) More() bool          { return s.more }
func (s *Session) Err() error          { return s.err }

// Terminal reports whether the session has stopped accepting results.
func (s *Session) Terminal() bool { return s.state.Terminal() }

// Duration is the time from start to the terminal state, or until now while streaming.
func (s *Session) Duration() time.Duration {
	if s.ended.IsZero() {
		return time.Since(s.started)
	}
	return s.ended.Sub(s.started)
}

func (s *Session) finish(state State) {
	s.state = state
	s.ended = time.Now()
	if s.cancel != nil {
		s.cancel()
	}
}

// BrowseFailedError reports a backend failure for Target.
type BrowseFailedError struct {
	Target models.Node
	Reason error
}

func (e *BrowseFailedError) Error() string {
	return fmt.Sprintf("%s: %s: %v", shared.ErrBrowseFailed, models.Describe(e.Target), e.Reason)
}

func (e *BrowseFailedError) Unwrap() error { return e.Reason }

// Is matches [shared.ErrBrowseFailed].
func (e *BrowseFailedError) Is(target error) bool {
	return target == shared.ErrBrowseFailed
}

// AsBrowseFailed extracts a [BrowseFailedError] from err.
func AsBrowseFailed(err error) (*BrowseFailedError, bool) {
	var bf *BrowseFailedError
	ok := errors.As(err, &bf)
	return bf, ok
}
