package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the embedded example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Wrote %s\n", path)
	r.writePlain("Edit the [[providers]] entries, then run 'mbx providers' to check them\n")
	return nil
}

// SetupDatabase initializes the catalog database and runs migrations.
//
// With --rollback n it opens the database without migrating and undoes the newest n migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if cmd.IsSet("rollback") {
		return r.rollbackDatabase(cmd.Int("rollback"))
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.catalog()
	if err != nil {
		return err
	}

	version, err := shared.MigrationVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database %s at migration %d\n", r.config.Database.Path, version)
	return nil
}

func (r *Runner) rollbackDatabase(steps int) error {
	path := shared.ExpandPath(r.config.Database.Path)
	if path == "" {
		return fmt.Errorf("%w: database.path is empty", shared.ErrInvalidConfig)
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := shared.RollbackMigrations(db, steps)
	if err != nil {
		return err
	}
	r.logger.Info("rolled back catalog migrations", "path", path, "steps", steps, "version", version)
	r.writePlain("✓ Database %s rolled back to migration %d\n", r.config.Database.Path, version)
	return nil
}
