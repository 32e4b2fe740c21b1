package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/wolfman30/monday-lead-relay/internal/app/bootstrap"
	appconfig "github.com/wolfman30/monday-lead-relay/internal/config"
	"github.com/wolfman30/monday-lead-relay/pkg/logging"
	"golang.org/x/sync/errgroup"
)

func main() {
	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting monday-lead-relay API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"board_id", cfg.MondayBoardID,
		"diagnostics", cfg.EnableDiagnostics,
	)

	app, err := bootstrap.BuildApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to build relay", "error", err)
		os.Exit(1)
	}

	srv := newServer(cfg, app.Handler)

	// Stop on SIGINT/SIGTERM and shut down gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, srv, logger); err != nil {
		logger.Error("server error", "error", err)
		_ = app.Close()
		os.Exit(1)
	}
	if err := app.Close(); err != nil {
		logger.Warn("closing relay resources", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, logger *logging.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newServer sizes the write timeout so a full failover run against a slow
// monday.com still gets its response written.
func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	writeTimeout := 3*cfg.MondayHTTPTimeout + 3*cfg.FailoverDelay + 5*time.Second
	if writeTimeout < 15*time.Second {
		writeTimeout = 15 * time.Second
	}
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
}
