// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// globalFlags are accepted before any subcommand.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
			Sources: cli.EnvVars("PLX_CONFIG"),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
}

// setupCommand handles first-run setup of the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles browser logins and their status.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   serviceSpotify,
				Usage:  "Log in to Spotify using OAuth2",
				Action: r.AuthLogin(serviceSpotify),
			},
			{
				Name:   serviceAmazon,
				Usage:  "Log in to Amazon Music using Login with Amazon",
				Action: r.AuthLogin(serviceAmazon),
			},
			{
				Name:   "status",
				Usage:  "Show which services hold a usable session",
				Action: r.AuthStatus,
			},
		},
	}
}

// logoutCommand drops stored tokens.
func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget stored tokens",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "service",
				Usage: "Service to log out of (spotify, amazon or all)",
				Value: "all",
			},
		},
		Action: r.Logout,
	}
}

// playlistsCommand lists the source catalog.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"ls"},
		Usage:   "List Spotify playlists available for transfer",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of playlists to show (0 for all)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.Playlists,
	}
}

// transferCommand handles playlist transfer operations
func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Transfer playlists from Spotify to Amazon Music",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Transfer the given playlists and print a report",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Source playlist ID (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Transfer every playlist in the catalog",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Report format (text, json, markdown, csv, table)",
						Value:   "text",
					},
				},
				Action: r.TransferRun,
			},
			{
				Name:   "ui",
				Usage:  "Interactive wizard for playlist transfer",
				Action: r.TUI,
			},
		},
	}
}

// historyCommand lists past transfer runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past transfer runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.IntFlag{
				Name:  "run",
				Usage: "Show the full report of one run",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// ledgerCommand inspects the destination ledger used by transfer.reuse_destination.
func ledgerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "ledger",
		Usage:  "Show destination playlists that a retry writes into",
		Action: r.Ledger,
		Commands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Forget ledger entries so the next transfer creates a new playlist",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Source playlist ID to forget (repeatable, default all)",
					},
				},
				Action: r.LedgerClear,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist transfer.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive"},
		Usage:   "Launch the interactive transfer wizard",
		Action:  r.TUI,
	}
}
