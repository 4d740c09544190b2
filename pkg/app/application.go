package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	healthhandler "villaops/internal/health/handler"
	"villaops/pkg/config"
	"villaops/pkg/contracts"
	"villaops/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Worker is a background loop that runs until ctx is cancelled.
type Worker func(ctx context.Context) error

type namedWorker struct {
	name string
	run  Worker
}

type closer struct {
	name  string
	close func() error
}

type Application struct {
	cfg     *config.Config
	server  *http.Server
	handler http.Handler
	workers []namedWorker
	closers []closer
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// SetApp mounts health, metrics and the given API handlers.
func (a *Application) SetApp(checks map[string]healthhandler.Check, appHandlers ...contracts.Handler) {
	healthRouter := httprouter.New()
	healthhandler.NewHealthHandler(checks, a.cfg.Log).RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.Recovery(a.cfg.Log)(healthHTTPHandler)

	appRouter := httprouter.New()
	for _, h := range appHandlers {
		h.RegisterRoutes(appRouter)
	}

	var appHTTPHandler http.Handler = appRouter
	appHTTPHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHTTPHandler)
	appHTTPHandler = middleware.ContentTypeValidation(a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.RequestLogging(a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.Recovery(a.cfg.Log)(appHTTPHandler)

	mux := http.NewServeMux()
	mux.Handle("/health", healthHTTPHandler)
	mux.Handle("/ready", healthHTTPHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", appHTTPHandler)
	a.handler = mux

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port, "handlers", len(appHandlers))
}

func (a *Application) Handler() http.Handler {
	return a.handler
}

func (a *Application) AddWorker(name string, w Worker) {
	a.workers = append(a.workers, namedWorker{name: name, run: w})
}

// OnShutdown registers a release step run after the server and workers stop,
// in registration order.
func (a *Application) OnShutdown(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, close: fn})
}

// Run serves until SIGINT/SIGTERM or until a worker fails, then drains.
func (a *Application) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx); err != nil {
		a.release()
		a.cfg.Log.Fatal("Application stopped with error", "error", err)
	}
	a.release()
	a.cfg.Log.Info("Application stopped gracefully")
}

func (a *Application) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	for _, w := range a.workers {
		g.Go(func() error {
			a.cfg.Log.Info("Starting worker", "worker", w.name)
			if err := w.run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("worker %s: %w", w.name, err)
			}
			a.cfg.Log.Info("Worker stopped", "worker", w.name)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.cfg.Log.Info("Starting graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cfg.Log.Error("Server shutdown failed", "error", err)
			return a.server.Close()
		}
		return nil
	})

	return g.Wait()
}

func (a *Application) release() {
	for _, c := range a.closers {
		if err := c.close(); err != nil {
			a.cfg.Log.Error("Failed to release resource", "resource", c.name, "error", err)
		}
	}
	a.cfg.GracefulShutdown()
}
