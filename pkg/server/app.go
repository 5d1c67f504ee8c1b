package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"MarketDash/pkg/config"
	xhttp "MarketDash/pkg/http"
	applogger "MarketDash/pkg/logger"
)

type closer struct {
	name string
	c    io.Closer
}

// Option configures App.
type Option func(*App)

// WithCloser registers a resource closed on shutdown. Resources close in
// registration order, after the HTTP server has drained.
func WithCloser(name string, c io.Closer) Option {
	return func(a *App) {
		if c != nil {
			a.closers = append(a.closers, closer{name: name, c: c})
		}
	}
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	closers    []closer
	signals    []os.Signal
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, httpServer *xhttp.Server, opts ...Option) *App {
	a := &App{
		cfg:        cfg,
		logger:     l,
		httpServer: httpServer,
		signals:    []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the HTTP server and blocks until an interrupt or ctx ends.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, a.signals...)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("marketdash started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("candle_store", a.cfg.Storage.Candles),
		applogger.String("cache", a.cfg.Cache.Backend),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown drains HTTP first so in-flight requests can still use the
// stores, then releases infrastructure clients.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}
	for _, c := range a.closers {
		if err := c.c.Close(); err != nil {
			a.logger.Warn(c.name+" close error", applogger.Error(err))
		}
	}
	a.logger.Info("shutdown complete")
	return firstErr
}
