package main

import (
	"context"
	"time"

	"github.com/desertthunder/spotlite/internal/auth"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the interactive OAuth flow and waits for the browser
// round trip to complete.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	timeout := cmd.Duration("timeout")
	if timeout == 0 {
		timeout = auth.DefaultFlowTimeout
	}

	r.logger.Info("starting authorization flow", "addr", r.callbackAddr())

	err := auth.RunFlow(ctx, r.broker, auth.FlowOpts{
		Addr:        r.callbackAddr(),
		Timeout:     timeout,
		OpenBrowser: r.desktop.OpenBrowser,
		Logger:      r.logger,
	})
	if err != nil {
		return err
	}

	return r.writePlain("✓ Authorization successful\n")
}

// AuthStatus reports whether a usable credential record exists.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	if !r.broker.Authorized() {
		r.writePlain("✗ Not authorized\n")
		return r.writePlain("Run 'spotlite auth login' to authorize.\n")
	}

	creds := r.broker.Credentials()
	r.writePlain("✓ Authorized\n")
	if creds.TokenExpires != nil {
		if creds.Expired(time.Now()) {
			r.writePlain("Access token: expired (will refresh on next use)\n")
		} else {
			r.writePlain("Access token: valid until %s\n", creds.TokenExpires.Format(time.RFC3339))
		}
	}
	if creds.RefreshToken == "" {
		r.writePlain("Warning: no refresh token; re-authorization needed on expiry\n")
	}

	return nil
}
