package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mbx/internal/registry"
	"github.com/desertthunder/mbx/internal/services"
	"github.com/desertthunder/mbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The registry, catalog database and player are built lazily so commands that do not need them
// work without a valid provider setup.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	registry   *registry.Registry
	db         *sql.DB
	player     services.Player
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Registry   *registry.Registry
	Player     services.Player
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		registry:   opts.Registry,
		player:     opts.Player,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, providersCommand, lsCommand, tuiCommand, libraryCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config and applies --verbose.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := r.Load(cmd.String("config")); err != nil {
		return ctx, err
	}
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// Load reads the config file at path. A missing file keeps the current (default) config.
func (r *Runner) Load(path string) error {
	r.configPath = path
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return err
			}
			r.config = config
		} else if errors.Is(err, os.ErrNotExist) {
			r.logger.Debug("config file not found, using defaults", "path", path)
		}
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))
	return nil
}

// SetLogger swaps the logger, e.g. for a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the catalog database if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// catalog opens the library database on first use.
func (r *Runner) catalog() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenCatalog(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	r.db = db
	return db, nil
}

// providers builds the registry from the configured providers on first use.
func (r *Runner) providers() (*registry.Registry, error) {
	if r.registry != nil {
		return r.registry, nil
	}

	var db *sql.DB
	if registry.NeedsDatabase(r.config.Providers) {
		var err error
		if db, err = r.catalog(); err != nil {
			return nil, err
		}
	}

	reg, err := registry.Build(r.config.Providers, db, r.logger)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("providers registered", "count", reg.Len())
	r.registry = reg
	return reg, nil
}

// newPlayer builds the configured playback command on first use.
func (r *Runner) newPlayer() (services.Player, error) {
	if r.player != nil {
		return r.player, nil
	}
	player, err := services.NewCommandPlayer(r.config.Player.Command, r.config.Player.Args, r.logger)
	if err != nil {
		return nil, err
	}
	r.player = player
	return player, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
