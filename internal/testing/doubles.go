package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/services"
	"github.com/desertthunder/mbx/internal/shared"
)

// Script is the canned answer of a [ScriptedBackend] for one container.
type Script struct {
	Nodes  []models.Node
	More   bool
	Err    error // Emitted after Nodes
	Silent bool  // Return without a terminal result
}

// Call records one Browse invocation.
type Call struct {
	Container string // "" for the provider root
	Page      models.Page
}

// ScriptedBackend is a [services.Backend] double with per-container scripts.
//
// It ignores context cancellation, like a backend that cannot abort an in-flight call,
// so superseded sessions still deliver once released.
type ScriptedBackend struct {
	provider models.Provider

	mu      sync.Mutex
	scripts map[string]Script
	gates   map[string]chan struct{}
	calls   []Call
}

// NewScriptedBackend creates a backend for a provider called name.
func NewScriptedBackend(name string, caps models.Capability) *ScriptedBackend {
	return &ScriptedBackend{
		provider: models.Provider{Name: name, Capabilities: caps},
		scripts:  make(map[string]Script),
		gates:    make(map[string]chan struct{}),
	}
}

// Provider implements [services.Backend].
func (b *ScriptedBackend) Provider() models.Provider { return b.provider }

// Set scripts the answer for containerID ("" for the root).
func (b *ScriptedBackend) Set(containerID string, s Script) *ScriptedBackend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scripts[containerID] = s
	return b
}

// Hold makes browses of containerID block until the returned release func is called.
func (b *ScriptedBackend) Hold(containerID string) (release func()) {
	gate := make(chan struct{})
	b.mu.Lock()
	b.gates[containerID] = gate
	b.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Calls returns the Browse invocations so far.
func (b *ScriptedBackend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Browse implements [services.Backend].
func (b *ScriptedBackend) Browse(_ context.Context, container *models.Container, page models.Page, emit services.Emitter) {
	id := ""
	if container != nil {
		id = container.ID
	}

	b.mu.Lock()
	b.calls = append(b.calls, Call{Container: id, Page: page})
	script, ok := b.scripts[id]
	gate := b.gates[id]
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}

	if !ok {
		emit(services.Result{Err: fmt.Errorf("%w: container %q", shared.ErrNotFound, id)})
		return
	}
	if script.Silent {
		return
	}

	for i, n := range script.Nodes {
		remaining := len(script.Nodes) - i - 1
		if script.Err != nil {
			remaining++
		}
		r := services.Result{Node: n, Remaining: remaining}
		if remaining == 0 {
			r.More = script.More
		}
		emit(r)
	}

	switch {
	case script.Err != nil:
		emit(services.Result{Err: script.Err})
	case len(script.Nodes) == 0:
		emit(services.Result{Remaining: 0, More: script.More})
	}
}

// RecordingSink records every render call in order. It is safe for concurrent use.
type RecordingSink struct {
	mu          sync.Mutex
	ops         []string
	breadcrumbs []models.Node
	results     []models.Node
	status      string
}

func (s *RecordingSink) SetBreadcrumbs(path []models.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breadcrumbs = append([]models.Node(nil), path...)
	s.ops = append(s.ops, "breadcrumbs:"+Trail(path))
}

func (s *RecordingSink) ClearResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
	s.ops = append(s.ops, "clear")
}

func (s *RecordingSink) AppendResult(n models.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, n)
	s.ops = append(s.ops, "append:"+n.Label())
}

func (s *RecordingSink) SetStatus(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = msg
	s.ops = append(s.ops, "status:"+msg)
}

// Ops returns the recorded calls, e.g. "append:Movies".
func (s *RecordingSink) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ops...)
}

// Results returns the nodes appended since the last clear.
func (s *RecordingSink) Results() []models.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Node(nil), s.results...)
}

// Breadcrumbs returns the last trail set.
func (s *RecordingSink) Breadcrumbs() []models.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Node(nil), s.breadcrumbs...)
}

// Status returns the last status message.
func (s *RecordingSink) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Reset forgets recorded calls but keeps the current state.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
}

// RecordingPlayer records playback handoffs.
type RecordingPlayer struct {
	mu     sync.Mutex
	played []models.Playable
	Err    error
}

func (p *RecordingPlayer) Play(item models.Playable) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.played = append(p.played, item)
	return nil
}

// Played returns the handed-off items.
func (p *RecordingPlayer) Played() []models.Playable {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Playable(nil), p.played...)
}

// Trail joins node labels with ">".
func Trail(nodes []models.Node) string {
	labels := make([]string, len(nodes))
	for i, n := range nodes {
		labels[i] = n.Label()
	}
	return strings.Join(labels, ">")
}

// Receive waits for a value on ch or fails the test after timeout.
func Receive[T any](t *testing.T, ch <-chan T, timeout time.Duration) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		var zero T
		t.Fatalf("timed out after %s waiting for %T", timeout, zero)
		return zero
	}
}

// Silent fails the test if ch yields a value within wait.
func Silent[T any](t *testing.T, ch <-chan T, wait time.Duration) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected value %v", v)
	case <-time.After(wait):
	}
}
