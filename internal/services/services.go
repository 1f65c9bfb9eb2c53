// package services defines interface Backend for content providers
package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/shared"
)

// Result is one delivery of a browse page.
//
// Node may be nil, e.g. for an empty page. Remaining counts the nodes still to come in this page.
type Result struct {
	Node      models.Node
	Remaining int
	More      bool  // Set on the final result when the provider has items past this page
	Err       error // Terminates the page
}

// Terminal reports whether r ends its page.
func (r Result) Terminal() bool {
	return r.Err != nil || r.Remaining <= 0
}

// Emitter receives browse results in order.
type Emitter func(Result)

// Backend defines the interface for content providers.
type Backend interface {
	// Provider returns the provider's identity and capabilities.
	Provider() models.Provider

	// Browse lists one page of container's children; a nil container means the provider root.
	// It emits at least one result and the last one is terminal.
	Browse(ctx context.Context, container *models.Container, page models.Page, emit Emitter)
}

// EmitPage streams nodes through emit, counting down Remaining. An empty page emits a single
// terminal result. Emission stops with ctx's error if ctx is cancelled mid-page.
func EmitPage(ctx context.Context, nodes []models.Node, more bool, emit Emitter) {
	if len(nodes) == 0 {
		emit(Result{Remaining: 0, More: more})
		return
	}

	for i, n := range nodes {
		if err := ctx.Err(); err != nil {
			emit(Result{Err: err})
			return
		}
		remaining := len(nodes) - i - 1
		r := Result{Node: n, Remaining: remaining}
		if remaining == 0 {
			r.More = more
		}
		emit(r)
	}
}

// Window returns the [offset, offset+count) bounds of page clamped to total, and whether
// items exist past the window.
func Window(page models.Page, total int) (start, end int, more bool) {
	start = min(max(page.Offset, 0), total)
	end = total
	if page.Count > 0 {
		end = min(start+page.Count, total)
	}
	return start, end, end < total
}

// Collect runs one browse synchronously and gathers the page.
func Collect(ctx context.Context, b Backend, container *models.Container, page models.Page) ([]models.Node, bool, error) {
	var (
		nodes []models.Node
		more  bool
		err   error
		done  bool
	)

	b.Browse(ctx, container, page, func(r Result) {
		if done {
			return
		}
		if r.Node != nil {
			nodes = append(nodes, r.Node)
		}
		if r.Err != nil {
			err = r.Err
		}
		if r.Terminal() {
			more = r.More
			done = true
		}
	})

	if err != nil {
		return nodes, false, err
	}
	if !done {
		return nodes, false, fmt.Errorf("%w: %s ended without a final result", shared.ErrBrowseFailed, b.Provider().Name)
	}
	return nodes, more, nil
}

func validatePage(page models.Page) error {
	if page.Offset < 0 || page.Count < 0 {
		return fmt.Errorf("%w: page offset=%d count=%d", shared.ErrInvalidArgument, page.Offset, page.Count)
	}
	return nil
}
