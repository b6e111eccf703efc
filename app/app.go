// Package app wires configuration, storage and HTTP serving together and runs
// the server until it is told to stop.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bioauth/config"
	"bioauth/database"
	"bioauth/usecase"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger *slog.Logger
	store  *database.Store
	server *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	gin.SetMode(cfg.GinMode)

	store, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	router := NewRouter(cfg, NewServices(cfg, store, usecase.SystemClock), logger)

	return &App{
		config: cfg,
		logger: logger,
		store:  store,
		server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
		},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigs
		app.logger.Info("caught signal", "signal", sig.String())
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// drains in-flight requests and closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server",
			"addr", app.server.Addr,
			"db", app.config.Database.Path,
			"strict_mode", app.config.StrictMode)
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown", "error", err)
	}
	if err := app.store.Close(); err != nil {
		app.logger.Error("close store", "error", err)
	}
	app.logger.Info("server stopped")

	return runErr
}
