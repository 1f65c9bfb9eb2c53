package services

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/shared"
)

// Player accepts a resolved leaf for playback. Play must not block on the playback itself.
type Player interface {
	Play(item models.Playable) error
}

// CommandPlayer hands playables to an external program.
//
// Args may contain {url} and {kind} placeholders; when neither is present the URL is appended.
type CommandPlayer struct {
	command string
	args    []string
	logger  *log.Logger
	start   func(name string, args ...string) (*exec.Cmd, error)
}

// NewCommandPlayer creates a player for command. An empty command uses the platform opener.
func NewCommandPlayer(command string, args []string, logger *log.Logger) (*CommandPlayer, error) {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	if command == "" {
		name, openerArgs, err := shared.OpenerCommand()
		if err != nil {
			return nil, fmt.Errorf("%w: no player configured: %v", shared.ErrInvalidConfig, err)
		}
		command, args = name, openerArgs
	}
	return &CommandPlayer{command: command, args: args, logger: logger, start: shared.StartCommand}, nil
}

// Command returns the program and arguments used for item.
func (p *CommandPlayer) Command(item models.Playable) (string, []string) {
	args := make([]string, 0, len(p.args)+1)
	substituted := false
	for _, a := range p.args {
		if strings.Contains(a, "{url}") || strings.Contains(a, "{kind}") {
			substituted = true
			a = strings.ReplaceAll(a, "{url}", item.URL)
			a = strings.ReplaceAll(a, "{kind}", item.Kind.String())
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, item.URL)
	}
	return p.command, args
}

// Play starts the player and reaps it in the background.
func (p *CommandPlayer) Play(item models.Playable) error {
	if item.URL == "" {
		return fmt.Errorf("%w: empty url", shared.ErrNotPlayable)
	}

	name, args := p.Command(item)
	cmd, err := p.start(name, args...)
	if err != nil {
		return err
	}

	p.logger.Info("playback started", "command", name, "url", item.URL, "kind", item.Kind)
	go func() {
		if err := cmd.Wait(); err != nil {
			p.logger.Warn("player exited", "command", name, "error", err)
		}
	}()
	return nil
}
