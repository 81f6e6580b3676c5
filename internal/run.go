package internal

import (
	"context"

	"github.com/dmitrymomot/plain/pkg/database"
)

// Run starts the HTTP server and blocks until shutdown.
// The database manager is disconnected after the registered shutdown hooks ran.
//
// Example:
//
//	app := plain.New(
//	    plain.WithPaths(map[string]string{"config": "./config"}),
//	)
//	err := app.Run(":8080", plain.Logger(log))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	if cfg.logger == nil {
		cfg.logger = a.logger
	}

	shutdownHooks := append([]func(context.Context) error{}, cfg.shutdownHooks...)
	shutdownHooks = append(shutdownHooks, database.Shutdown(a.db))

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// Close disconnects the database manager. Run does this on shutdown;
// Close is for callers that only use Handle or Serve.
func (a *App) Close() error {
	return a.db.Disconnect()
}
