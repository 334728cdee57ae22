// Package app runs the snow profile HTTP service until it is told to stop.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/snowprofile/internal/archive"
	"github.com/chrissnell/snowprofile/internal/log"
	"github.com/chrissnell/snowprofile/internal/server"
	"github.com/chrissnell/snowprofile/pkg/config"
)

// App represents the service application
type App struct {
	configProvider config.ConfigProvider
}

// New creates a new application instance
func New(configProvider config.ConfigProvider) *App {
	return &App{
		configProvider: configProvider,
	}
}

// Run opens the archive, starts the HTTP service and blocks until a signal
// arrives or ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return err
	}

	store, err := archive.Open(cfg.Archive.Driver, cfg.Archive.DSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorf("closing archive: %v", err)
		}
	}()

	ctrl, err := server.NewController(ctx, &wg, cfg.Server, cfg.CAAML, store)
	if err != nil {
		return fmt.Errorf("creating HTTP service: %w", err)
	}
	if err := ctrl.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	log.Info("waiting for the HTTP service to stop...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
