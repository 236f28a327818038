package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/plx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	app := &cli.Command{
		Name:     "plx",
		Usage:    "Transfer playlists from Spotify to Amazon Music",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Before:   runner.Bootstrap,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			return
		}
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}
