package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlite/internal/server"
	"github.com/desertthunder/spotlite/internal/shared"
)

// DefaultFlowTimeout bounds how long the callback listener waits for the
// user to finish the browser flow before giving up.
const DefaultFlowTimeout = 2 * time.Minute

// FlowOpts configures an interactive authorization flow.
type FlowOpts struct {
	// Addr is the loopback address the listener binds; must match the
	// registered redirect URI.
	Addr string

	// Timeout bounds the wait for the browser round trip. Zero means
	// [DefaultFlowTimeout].
	Timeout time.Duration

	// OpenBrowser launches the user's browser at the authorize URL. When
	// nil the URL is only logged, for callers that print it themselves.
	OpenBrowser func(url string) error

	Logger *log.Logger
}

// RunFlow executes one interactive authorization attempt.
//
// It starts the callback listener, opens the browser at the authorize URL,
// and blocks until the first callback request, the timeout, or context
// cancellation. On success the broker has already exchanged the code and
// persisted the resulting credential record.
func RunFlow(ctx context.Context, broker *Broker, opts FlowOpts) error {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultFlowTimeout
	}

	handler := server.NewCallbackHandler(broker)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(logger))
	router.Handler(handler)

	httpServer := &http.Server{
		Addr:    opts.Addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting OAuth callback listener", "addr", opts.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error shutting down callback listener", "error", err)
		}
	}()

	authURL := broker.AuthURL()
	if opts.OpenBrowser != nil {
		if err := opts.OpenBrowser(authURL); err != nil {
			logger.Warn("failed to open browser automatically", "error", err)
			logger.Info("open this URL in your browser", "url", authURL)
		}
	} else {
		logger.Info("authorize at", "url", authURL)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return fmt.Errorf("authorization failed: %w", result.Error())
		}
		return nil
	case err := <-serverErrors:
		return fmt.Errorf("callback listener error: %w", err)
	case <-timer.C:
		return fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
