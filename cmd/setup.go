package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/plx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	r.logger.Info("config file created", "path", r.configPath)
	r.writePlain("✓ Config written to %s\n", r.configPath)
	r.writePlain("Fill in the Spotify and Amazon client credentials, then run: plx auth spotify\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
//
// A missing config file is created from the template first.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.database()
	if err != nil {
		return err
	}

	version, err := shared.CurrentVersion(db)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready at %s (schema version %d)\n", r.config.Database.Path, version)
	return nil
}
