package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/udlcoach/pkg/adapters/http"
)

// NewHTTPServer builds the HTTP server for app.
func NewHTTPServer(app *App, addr, version string) *http.Server {
	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(app.Logger),
		httpAdapter.WithVersion(version),
		httpAdapter.WithMaxUploadSize(app.Config.MaxUploadSize),
	}
	if app.Metrics != nil {
		opts = append(opts, httpAdapter.WithMetricsHandler(app.Metrics.Handler()))
	}
	return &http.Server{
		Addr:              addr,
		Handler:           httpAdapter.NewHandler(app.Engine, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// RunServer serves until ctx is canceled, then drains in-flight requests
// for at most the configured shutdown timeout.
func RunServer(ctx context.Context, app *App, srv *http.Server) error {
	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("udlcoach server listening", "addr", srv.Addr, "store", app.Config.Store.Driver)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		timeout := app.Config.Server.ShutdownTimeout
		app.Logger.Info("shutting down", "timeout", timeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("graceful shutdown did not complete", "timeout", timeout, "err", err)
			if closeErr := srv.Close(); closeErr != nil {
				return fmt.Errorf("could not stop server: %w", closeErr)
			}
		}
		app.Logger.Info("server stopped gracefully")
		return nil
	}
}
