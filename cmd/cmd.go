// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: text, csv, markdown or json",
		Value:   "text",
	}
}

// providersCommand lists the configured providers
func providersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "providers",
		Usage:  "List configured providers and their capabilities",
		Flags:  []cli.Flag{formatFlag()},
		Action: r.Providers,
	}
}

// lsCommand walks a breadcrumb path headlessly and prints the final location
func lsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "Browse to a path of provider and container names and print it",
		ArgsUsage: "[provider [container...]]",
		Flags: []cli.Flag{
			formatFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the listing to a file instead of stdout",
			},
			&cli.IntFlag{
				Name:  "page-size",
				Usage: "Nodes requested per browse (defaults to browse.page_size)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Give up if a location takes longer than this to load",
				Value: defaultTimeout,
			},
			&cli.BoolFlag{
				Name:  "play",
				Usage: "Hand the final node to the player when it is a leaf",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "Echo every render call to stderr",
			},
		},
		Action: r.List,
	}
}

// tuiCommand launches the interactive browser
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse providers interactively",
		Action: r.TUI,
	}
}

// libraryCommand manages the SQLite catalog behind library providers
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Library catalog operations",
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import a directory tree into the catalog",
				ArgsUsage: "<dir>",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "dir",
					},
				},
				Action: r.LibraryImport,
			},
			{
				Name:  "stats",
				Usage: "Show catalog counts by media kind",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LibraryStats,
			},
		},
	}
}

// serveCommand exports providers over HTTP
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Export providers over HTTP for remote backends",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (defaults to server.port)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-browse deadline",
				Value: defaultTimeout,
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml to the --config path",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the catalog database and run migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "rollback",
						Usage: "Undo this many of the newest catalog migrations instead of applying them",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
