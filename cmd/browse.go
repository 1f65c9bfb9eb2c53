package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/desertthunder/mbx/internal/formatter"
	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/navigation"
	"github.com/desertthunder/mbx/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultTimeout = 30 * time.Second

type played struct {
	leaf models.Leaf
	err  error
}

// Providers prints the configured providers.
func (r *Runner) Providers(ctx context.Context, cmd *cli.Command) error {
	reg, err := r.providers()
	if err != nil {
		return err
	}
	return formatter.WriteProviders(r.output, cmd.String("format"), reg.List())
}

// List drives a navigation controller without a terminal UI: each argument names a node in the
// current listing (by id or title), which is clicked and awaited before the next one.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	reg, err := r.providers()
	if err != nil {
		return err
	}

	pageSize := cmd.Int("page-size")
	if pageSize <= 0 {
		pageSize = r.config.Browse.PageSize
	}
	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var echo io.Writer
	if cmd.Bool("trace") {
		echo = os.Stderr
	}
	sink := formatter.NewTextSink(echo)

	var player *lazyPlayer
	if cmd.Bool("play") {
		player = &lazyPlayer{runner: r}
	}

	loop := navigation.NewLoop(r.config.Browse.QueueSize)
	settled := make(chan navigation.Settlement, 4)
	handoffs := make(chan played, 1)
	opts := navigation.ControllerOpts{
		Providers: reg,
		Sink:      sink,
		PageSize:  pageSize,
		Post:      loop.Post,
		Settled:   func(s navigation.Settlement) { settled <- s },
		Played:    func(l models.Leaf, err error) { handoffs <- played{l, err} },
		Logger:    r.logger,
	}
	if player != nil {
		opts.Player = player
	}
	ctrl := navigation.NewController(opts)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl.Start(ctx)
	go loop.Run(ctx, ctrl.Handle)
	if _, err := await(ctx, settled, timeout); err != nil {
		return err
	}

	listing := sink.Listing()
	for i, name := range cmd.Args().Slice() {
		node, ok := sink.Find(name)
		if !ok {
			return fmt.Errorf("%w: %q under %s", shared.ErrNotFound, name, sink.Listing().Trail())
		}

		if leaf, isLeaf := node.(models.Leaf); isLeaf {
			if i != cmd.Args().Len()-1 {
				return fmt.Errorf("%w: %q is not a container", shared.ErrInvalidArgument, name)
			}
			listing = formatter.Listing{Path: sink.Listing().Path, Nodes: []models.Node{leaf}}
			if player != nil {
				loop.Post(navigation.NodeClicked{Node: leaf})
				select {
				case h := <-handoffs:
					if h.err != nil {
						return fmt.Errorf("failed to play %s: %w", h.leaf.Title, h.err)
					}
					listing.Status = sink.Listing().Status
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			break
		}

		loop.Post(navigation.NodeClicked{Node: node})
		s, err := await(ctx, settled, timeout)
		if err != nil {
			return err
		}
		if s.Err != nil {
			return fmt.Errorf("failed to open %s: %w", name, s.Err)
		}
		listing = sink.Listing()
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteFile(path, cmd.String("format"), listing); err != nil {
			return err
		}
		r.logger.Info("listing written", "path", path, "nodes", len(listing.Nodes))
		return nil
	}
	return formatter.Write(r.output, cmd.String("format"), listing)
}

func await(ctx context.Context, settled <-chan navigation.Settlement, timeout time.Duration) (navigation.Settlement, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s := <-settled:
		return s, nil
	case <-timer.C:
		return navigation.Settlement{}, fmt.Errorf("%w: no result after %s", shared.ErrServiceUnavailable, timeout)
	case <-ctx.Done():
		return navigation.Settlement{}, ctx.Err()
	}
}

// lazyPlayer defers building the command player until a leaf is actually played, so ls works
// on machines without an opener.
type lazyPlayer struct {
	runner *Runner
}

func (p *lazyPlayer) Play(item models.Playable) error {
	player, err := p.runner.newPlayer()
	if err != nil {
		return err
	}
	return player.Play(item)
}
