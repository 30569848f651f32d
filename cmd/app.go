package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/api"
	"storefront/config"
	"storefront/infrastructure/messaging"
	"storefront/pkg/logger"

	"go.uber.org/zap"
)

// App HTTP server plus the optional in-process outbox worker
type App struct {
	config  *config.Config
	router  *api.Router
	server  *http.Server
	worker  *messaging.Worker
	closers []func() error
}

// Handler root handler, for tests
func (a *App) Handler() http.Handler {
	return a.router.GetEngine()
}

// Run serves until ctx is cancelled, then drains in-flight requests
// within the configured shutdown timeout
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	workerDone := make(chan struct{})
	if a.worker != nil {
		go func() {
			defer close(workerDone)
			if err := a.worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Outbox worker stopped", zap.Error(err))
			}
		}()
	} else {
		close(workerDone)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down server")
	case err := <-serverErr:
		runErr = err
	}

	timeout := a.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	stopWorker()
	<-workerDone
	a.Close()

	logger.Info("Server stopped")
	return runErr
}

// Close releases connections in reverse order of acquisition
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Failed to release resource", zap.Error(err))
		}
	}
	a.closers = nil
}
