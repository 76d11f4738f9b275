// Package server initializes and runs the MedScan development API server.
// It opens the SQLite store, serves the REST API and shuts down gracefully
// on SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/medscan/internal/kv"
	"github.com/dmitrijs2005/medscan/internal/localapi"
	"github.com/dmitrijs2005/medscan/internal/logging"
	"github.com/dmitrijs2005/medscan/internal/server/config"
	"github.com/dmitrijs2005/medscan/internal/server/httpapi"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   *kv.SQLiteStore
	backend *localapi.Backend
	server  *http.Server
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, err
	}

	store, err := kv.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	opts := []localapi.Option{
		localapi.WithSecret([]byte(c.SecretKey)),
		localapi.WithTokenTTL(c.TokenTTL),
		localapi.WithLogger(logger),
	}
	if c.RandomResetCodes {
		opts = append(opts, localapi.WithCodeGenerator(localapi.RandomCode))
	}
	backend := localapi.New(store, opts...)

	srv := &http.Server{
		Addr:    c.Addr,
		Handler: httpapi.NewRouter(backend, logger, httpapi.DefaultMaxRequestBytes),
	}

	return &App{config: c, logger: logger, store: store, backend: backend, server: srv}, nil
}

// Handler returns the HTTP handler, e.g. for httptest.
func (app *App) Handler() http.Handler {
	return app.server.Handler
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// serve runs the HTTP server until ctx is done, then drains in-flight
// requests for at most ShutdownTimeout.
func (app *App) serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", app.server.Addr)
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Run serves until ctx is cancelled or a stop signal arrives and closes the
// store afterwards.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	err := app.serve(ctx)

	if cerr := app.store.Close(); cerr != nil {
		app.logger.Error(ctx, "failed to close store", "error", cerr)
	}
	return err
}
