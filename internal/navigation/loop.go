package navigation

import (
	"context"
	"sync"
)

// Loop is a cooperative event queue: any goroutine may Post, one goroutine runs the handler.
type Loop struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// NewLoop creates a queue holding up to size pending events.
func NewLoop(size int) *Loop {
	if size < 0 {
		size = 0
	}
	return &Loop{events: make(chan Event, size), done: make(chan struct{})}
}

// Post queues ev, blocking while the queue is full. Events posted after Run returns are discarded.
func (l *Loop) Post(ev Event) {
	select {
	case l.events <- ev:
	case <-l.done:
	}
}

// Run hands queued events to handle in order until ctx is done.
func (l *Loop) Run(ctx context.Context, handle func(Event)) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			handle(ev)
		}
	}
}
