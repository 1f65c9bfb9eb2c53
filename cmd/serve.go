package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/mbx/internal/server"
	"github.com/desertthunder/mbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve exports the configured providers until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	reg, err := r.providers()
	if err != nil {
		return err
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Opts{
		Addr:     cfg.Addr(),
		Catalog:  reg,
		PageSize: r.config.Browse.PageSize,
		Timeout:  cmd.Duration("timeout"),
		Logger:   shared.WithLogger(r.logger, "component", "server"),
	})
	return srv.ListenAndServe(ctx)
}
