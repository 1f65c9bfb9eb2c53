package navigation

import (
	"fmt"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/shared"
)

// Stack is the breadcrumb trail from the top level to the open location.
//
// An empty stack is the top level. Elements are sources or containers, never leaves,
// and no node identity appears twice.
type Stack struct {
	nodes []models.Node
}

// PushOrJump truncates the trail to node if it is already present, otherwise appends it.
// Leaves are refused.
func (s *Stack) PushOrJump(node models.Node) error {
	switch node.(type) {
	case models.Source, models.Container:
	default:
		return fmt.Errorf("%w: %s cannot enter the breadcrumb trail", shared.ErrInvalidArgument, models.Describe(node))
	}

	if i := s.index(node); i >= 0 {
		clear(s.nodes[i+1:])
		s.nodes = s.nodes[:i+1]
		return nil
	}
	s.nodes = append(s.nodes, node)
	return nil
}

// Reset returns to the top level.
func (s *Stack) Reset() {
	clear(s.nodes)
	s.nodes = s.nodes[:0]
}

// Current returns the open location, or nil at the top level.
func (s *Stack) Current() models.Node {
	if len(s.nodes) == 0 {
		return nil
	}
	return s.nodes[len(s.nodes)-1]
}

// Parent returns the element before the current one, or nil.
func (s *Stack) Parent() models.Node {
	if len(s.nodes) < 2 {
		return nil
	}
	return s.nodes[len(s.nodes)-2]
}

// Path returns a copy of the trail, root first.
func (s *Stack) Path() []models.Node {
	return append([]models.Node(nil), s.nodes...)
}

// Len returns the trail depth.
func (s *Stack) Len() int { return len(s.nodes) }

// AtTop reports whether the stack is empty.
func (s *Stack) AtTop() bool { return len(s.nodes) == 0 }

func (s *Stack) index(node models.Node) int {
	for i, n := range s.nodes {
		if models.Same(n, node) {
			return i
		}
	}
	return -1
}
