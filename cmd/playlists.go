package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/plx/internal/formatter"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/services"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Playlists prints the source catalog.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	if r.source == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if !r.source.Authenticated() {
		return fmt.Errorf("%w: run 'plx auth spotify' first", shared.ErrNotAuthenticated)
	}

	catalog, err := services.LoadCatalog(ctx, r.source)
	if err != nil {
		return err
	}

	playlists := catalog.Playlists()
	if limit := cmd.Int("limit"); limit > 0 && limit < len(playlists) {
		catalog = models.NewCatalog(playlists[:limit])
		playlists = catalog.Playlists()
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", formatter.CatalogTable(catalog))
}
