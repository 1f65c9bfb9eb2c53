package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/repositories"
	"github.com/desertthunder/mbx/internal/services"
	"github.com/desertthunder/mbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// LibraryImport mirrors a directory into the catalog.
func (r *Runner) LibraryImport(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.StringArg("dir")
	if dir == "" {
		return fmt.Errorf("%w: directory to import", shared.ErrMissingArgument)
	}

	db, err := r.catalog()
	if err != nil {
		return err
	}

	result, err := repositories.NewImporter(db, r.logger).Import(ctx, dir)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	r.logger.Info("import complete", "dir", dir, "containers", result.Containers, "items", result.Items)
	r.writePlain("✓ Imported %s: %d containers, %d items, %d skipped\n", dir, result.Containers, result.Items, result.Skipped)
	return nil
}

type libraryStats struct {
	Containers int            `json:"containers"`
	Items      map[string]int `json:"items"`
	Total      int            `json:"total"`
}

// LibraryStats prints catalog counts.
func (r *Runner) LibraryStats(ctx context.Context, cmd *cli.Command) error {
	db, err := r.catalog()
	if err != nil {
		return err
	}

	stats, err := services.NewLibraryBackend(models.Provider{Name: "library"}, db).Stats()
	if err != nil {
		return err
	}

	out := libraryStats{Containers: stats.Containers, Items: map[string]int{}}
	for _, kind := range []models.MediaKind{models.KindVideo, models.KindAudio, models.KindImage, models.KindUnknown} {
		out.Items[kind.String()] = stats.Items[kind]
		out.Total += stats.Items[kind]
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, true)
	}

	r.writePlainHeader("Library: " + r.config.Database.Path)
	r.writePlain("Containers: %d\n", out.Containers)
	for _, kind := range []string{"video", "audio", "image", "unknown"} {
		r.writePlain("%-11s %d\n", kind+":", out.Items[kind])
	}
	r.writePlain("Total:      %d\n", out.Total)
	return nil
}
