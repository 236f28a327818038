package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/repositories"
	"github.com/desertthunder/plx/internal/services"
	"github.com/desertthunder/plx/internal/session"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const (
	serviceSpotify = "spotify"
	serviceAmazon  = "amazon"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	source      services.CatalogClient
	dest        services.DestinationClient
	db          *sql.DB
	logger      *log.Logger
	output      io.Writer
	openBrowser func(url string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Source      services.CatalogClient
	Destination services.DestinationClient
	DB          *sql.DB
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		source:      opts.Source,
		dest:        opts.Destination,
		db:          opts.DB,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: shared.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, logoutCommand, playlistsCommand, transferCommand, historyCommand, ledgerCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Bootstrap loads the configuration named by --config and builds the service clients from it.
//
// Stored tokens are restored so commands run without a new browser login. Refreshed tokens are written back.
func (r *Runner) Bootstrap(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	creds := r.config.Credentials
	if r.source == nil && creds.Spotify.ClientID != "" {
		spotify, err := services.NewSpotifyService(creds.Spotify.Map())
		if err != nil {
			return ctx, fmt.Errorf("failed to create Spotify service: %w", err)
		}
		r.restore(ctx, serviceSpotify, spotify)
		r.source = spotify
	}

	if r.dest == nil && creds.Amazon.ClientID != "" {
		amazon, err := services.NewAmazonService(creds.Amazon.Map(), r.config.Transfer.RateLimit)
		if err != nil {
			return ctx, fmt.Errorf("failed to create Amazon Music service: %w", err)
		}
		r.restore(ctx, serviceAmazon, amazon)
		r.dest = amazon
	}

	return ctx, nil
}

// restore authenticates svc from the stored token, if any, and persists future refreshes.
func (r *Runner) restore(ctx context.Context, service string, svc services.OAuthService) {
	svc.SetTokenRefreshCallback(func(token *oauth2.Token) {
		if err := r.saveToken(service, token); err != nil {
			r.logger.Warn("failed to persist refreshed token", "service", service, "error", err)
		}
	})

	creds, err := r.credentials(service)
	if err != nil || !creds.HasToken() {
		return
	}
	if err := svc.Authenticate(ctx, creds.Map()); err != nil {
		r.logger.Warn("stored token rejected", "service", service, "error", err)
	}
}

// credentials returns the stored OAuth credentials of a service.
func (r *Runner) credentials(service string) (*shared.OAuthCredentials, error) {
	if r.config == nil {
		return nil, fmt.Errorf("%w: config not loaded", shared.ErrMissingConfig)
	}
	switch service {
	case serviceSpotify:
		return &r.config.Credentials.Spotify.OAuthCredentials, nil
	case serviceAmazon:
		return &r.config.Credentials.Amazon.OAuthCredentials, nil
	default:
		return nil, fmt.Errorf("%w: unknown service %q", shared.ErrInvalidArgument, service)
	}
}

// oauthService returns the client for service if it supports browser login.
func (r *Runner) oauthService(service string) (services.OAuthService, error) {
	var client any
	switch service {
	case serviceSpotify:
		client = r.source
	case serviceAmazon:
		client = r.dest
	default:
		return nil, fmt.Errorf("%w: unknown service %q", shared.ErrInvalidArgument, service)
	}

	if client == nil {
		return nil, fmt.Errorf("%w: %s client_id and client_secret must be set in %s", shared.ErrServiceUnavailable, service, r.configPath)
	}
	svc, ok := client.(services.OAuthService)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not support browser login", shared.ErrServiceUnavailable, service)
	}
	return svc, nil
}

// saveToken stores token for service and writes the config file.
func (r *Runner) saveToken(service string, token *oauth2.Token) error {
	creds, err := r.credentials(service)
	if err != nil {
		return err
	}
	if err := creds.Update(token); err != nil {
		return err
	}
	return shared.SaveConfig(r.configPath, r.config)
}

// database opens the configured database on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.db = db
	return db, nil
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// newEngine builds the transfer engine from the [transfer] settings.
func (r *Runner) newEngine() *tasks.TransferEngine {
	opts := []tasks.Option{
		tasks.WithNamePrefix(r.config.Transfer.NamePrefix),
		tasks.WithLogger(r.logger),
	}

	if r.config.Transfer.ReuseDestination {
		if db, err := r.database(); err != nil {
			r.logger.Warn("destination reuse disabled", "error", err)
		} else {
			opts = append(opts, tasks.WithLedger(repositories.NewLedgerRepository(db)))
		}
	}

	return tasks.NewTransferEngine(r.source, r.dest, opts...)
}

// history returns the run recorder, or nil when the database is unavailable.
func (r *Runner) history() session.History {
	db, err := r.database()
	if err != nil {
		r.logger.Warn("transfer history disabled", "error", err)
		return nil
	}
	return repositories.NewRunRecorder(repositories.NewTransferRunRepository(db), r.serviceName(r.source, "Spotify"), r.serviceName(r.dest, "Amazon Music"))
}

func (r *Runner) serviceName(client any, fallback string) string {
	if named, ok := client.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fallback
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
