package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"BandTrader/internal/domain/repository"
	"BandTrader/internal/usecase"
	pkgcache "BandTrader/pkg/cache"
	"BandTrader/pkg/config"
	xhttp "BandTrader/pkg/http"
	applogger "BandTrader/pkg/logger"
)

// App encapsulates the entire application lifecycle: the cycle ticker, the
// quote watcher, and the dashboard HTTP server.
type App struct {
	cfg         *config.Config
	runner      *usecase.Runner
	watcher     *usecase.QuoteWatcher
	events      repository.Publisher
	cache       pkgcache.Service
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	log         *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	runner *usecase.Runner,
	watcher *usecase.QuoteWatcher,
	handler xhttp.Handler,
	cache pkgcache.Service,
	events repository.Publisher,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:         cfg,
		runner:      runner,
		watcher:     watcher,
		events:      events,
		cache:       cache,
		httpHandler: handler,
		log:         log,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start the cycle ticker. The runner drops overlapping triggers itself,
	// so the ticker never needs to wait for a slow cycle.
	go a.runCycles(ctx)
	a.log.Info("cycle loop started",
		applogger.String("symbol", a.cfg.Bot.Symbol),
		applogger.Duration("interval", a.cfg.Bot.Interval),
	)

	// Start quote watcher if streaming is enabled
	if a.watcher != nil && a.cfg.Alpaca.StreamEnabled {
		if err := a.watcher.Start(ctx); err != nil {
			// the dashboard quote is a nicety; trading continues without it
			a.log.Warn("quote watcher start failed", applogger.Error(err))
		} else {
			a.log.Info("quote watcher started", applogger.String("symbol", a.cfg.Bot.Symbol))
		}
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// runCycles drives the runner on the configured interval. One cycle fires
// immediately so a restart never waits a full interval to act.
func (a *App) runCycles(ctx context.Context) {
	run := func() {
		cycleCtx, cancel := context.WithTimeout(ctx, a.cfg.Bot.Interval)
		defer cancel()
		a.runner.RunCycle(cycleCtx)
	}

	run()

	ticker := time.NewTicker(a.cfg.Bot.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.watcher != nil {
		if err := a.watcher.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("quote watcher stop error", applogger.Error(err))
		}
	}

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
