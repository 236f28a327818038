package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/plx/internal/server"
	"github.com/desertthunder/plx/internal/services"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

type profiler interface {
	Profile(ctx context.Context) (services.Profile, error)
}

// AuthLogin returns the action that logs in to service through the browser and stores the token.
func (r *Runner) AuthLogin(service string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		svc, err := r.oauthService(service)
		if err != nil {
			return err
		}

		if err := r.login(ctx, service, svc); err != nil {
			return err
		}

		r.writePlainln("✓ Logged in to %s", svc.Name())
		r.writePlain("✓ Tokens saved to %s\n", r.configPath)
		if p, ok := svc.(profiler); ok {
			if profile, err := p.Profile(ctx); err == nil {
				r.writePlain("Account: %s\n", describeProfile(profile))
			} else {
				r.logger.Debug("profile lookup failed", "service", service, "error", err)
			}
		}
		return nil
	}
}

// login runs the OAuth flow for svc and persists the issued token.
func (r *Runner) login(ctx context.Context, service string, svc services.OAuthService) error {
	creds, err := r.credentials(service)
	if err != nil {
		return err
	}

	token, err := r.doOAuth(ctx, svc, creds.RedirectURI)
	if err != nil {
		return err
	}

	if err := creds.Update(token); err != nil {
		return fmt.Errorf("failed to update %s configuration: %w", service, err)
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	r.logger.Info("login complete", "service", service)
	return nil
}

// ensureLogin returns a login func that skips the browser when service already holds a usable session.
func (r *Runner) ensureLogin(service string) func(context.Context) error {
	return func(ctx context.Context) error {
		svc, err := r.oauthService(service)
		if err != nil {
			return err
		}
		if svc.Authenticated() {
			return nil
		}
		return r.login(ctx, service, svc)
	}
}

// doOAuth executes the authorization code flow with a local callback server.
func (r *Runner) doOAuth(ctx context.Context, svc services.OAuthService, redirectURI string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	handler := server.NewOAuthHandler(svc, state,
		server.WithCallbackPath(server.CallbackPath(redirectURI)),
		server.WithServiceName(svc.Name()),
	)
	callback := server.NewCallbackServer(handler, r.logger, server.DefaultCallbackTimeout)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	ln, err := server.Listen(addr)
	if err != nil {
		return nil, err
	}

	authURL := svc.GetAuthURL(state)
	r.writePlain("→ Opening browser for %s login...\n", svc.Name())
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err, "url", authURL)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", server.DefaultCallbackTimeout)
	return callback.Await(ctx, ln)
}

// AuthStatus reports, per service, whether credentials are configured and a session is usable.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	for _, service := range []string{serviceSpotify, serviceAmazon} {
		svc, err := r.oauthService(service)
		if err != nil {
			r.writePlain("%-8s ✗ not configured\n", service)
			continue
		}

		if !svc.Authenticated() {
			r.writePlain("%-8s ✗ not logged in (run: plx auth %s)\n", service, service)
			continue
		}

		line := "✓ logged in"
		if p, ok := svc.(profiler); ok {
			profile, err := p.Profile(ctx)
			if err != nil {
				line = fmt.Sprintf("⚠ session rejected: %v", err)
			} else {
				line += " as " + describeProfile(profile)
			}
		}
		r.writePlain("%-8s %s\n", service, line)
	}
	return nil
}

// Logout clears stored tokens for one or both services.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	var targets []string
	switch choice := strings.ToLower(cmd.String("service")); choice {
	case "", "all":
		targets = []string{serviceSpotify, serviceAmazon}
	case serviceSpotify, serviceAmazon:
		targets = []string{choice}
	default:
		return fmt.Errorf("%w: unknown service %q", shared.ErrInvalidArgument, choice)
	}

	for _, service := range targets {
		creds, err := r.credentials(service)
		if err != nil {
			return err
		}
		creds.Clear()
		if svc, err := r.oauthService(service); err == nil {
			svc.Logout()
		}
		r.writePlain("✓ Logged out of %s\n", service)
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func describeProfile(p services.Profile) string {
	name := p.DisplayName
	if name == "" {
		name = p.ID
	}
	if p.Email != "" {
		return fmt.Sprintf("%s <%s>", name, p.Email)
	}
	return name
}
