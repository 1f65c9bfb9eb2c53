package navigation

import (
	"errors"
	"fmt"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/shared"
	"github.com/desertthunder/mbx/internal/tasks"
)

func label(n models.Node) string {
	if l := n.Label(); l != "" {
		return l
	}
	return "untitled"
}

func topStatus(n int) string {
	switch n {
	case 0:
		return "No providers"
	case 1:
		return "1 provider"
	default:
		return fmt.Sprintf("%d providers", n)
	}
}

func loadingStatus(target models.Node) string {
	return fmt.Sprintf("Loading %s...", label(target))
}

func refusedStatus(target models.Node, err error) string {
	if errors.Is(err, shared.ErrProviderNotFound) {
		return fmt.Sprintf("%s is no longer available", target.ProviderName())
	}
	return fmt.Sprintf("%s is not browsable", label(target))
}

func doneStatus(s *tasks.Session) string {
	if err := s.Err(); err != nil {
		var bf *tasks.BrowseFailedError
		if errors.As(err, &bf) {
			return fmt.Sprintf("Browse failed: %v", bf.Reason)
		}
		return fmt.Sprintf("Browse failed: %v", err)
	}

	var msg string
	switch n := s.Received(); n {
	case 0:
		msg = "Empty"
	case 1:
		msg = "1 item"
	default:
		msg = fmt.Sprintf("%d items", n)
	}
	if s.More() {
		msg += " (more available)"
	}
	return msg
}

func playingStatus(leaf models.Leaf) string {
	return fmt.Sprintf("Playing %s (%s)", label(leaf), leaf.Kind)
}

func playFailedStatus(leaf models.Leaf, err error) string {
	return fmt.Sprintf("Cannot play %s: %v", label(leaf), err)
}
