package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"investpath/internal/config"
	"investpath/internal/errors"
	"investpath/internal/infrastructure"
	customMiddleware "investpath/internal/middleware"
	"investpath/internal/providers"
	"investpath/internal/store"
	handlers "investpath/internal/transport/http"
	"investpath/internal/workflow"
)

// Version identifies this build in health responses and logs.
const Version = "1.0.0"

// Application is the assembled server.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Store         workflow.SessionStore
	Catalog       *providers.Catalog
	Orchestrator  *workflow.Orchestrator
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	closeStore func() error
}

// NewApplication builds the application from the config file at
// configPath ("" means config.yaml plus environment).
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port),
		slog.String("store", cfg.Store.Driver),
	)

	otelProviders, err := infrastructure.InitOTel(context.Background(),
		infrastructure.DefaultOTelConfig(os.Getenv("ENVIRONMENT")))
	if err != nil {
		return nil, fmt.Errorf("initializing otel: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("initializing services: %w", err)
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

func (a *Application) initializeServices() error {
	switch a.Config.Store.Driver {
	case "sqlite":
		sqliteStore, err := store.OpenSQLite(a.Config.Store.Path)
		if err != nil {
			return fmt.Errorf("opening sqlite store: %w", err)
		}
		a.Store = sqliteStore
		a.closeStore = sqliteStore.Close
	default:
		a.Store = store.NewMemory()
	}

	a.Catalog = BuildCatalog(a.Config.Providers, providers.NewCache(), a.Logger)

	registry, err := workflow.NewRegistryWithSteps()
	if err != nil {
		return fmt.Errorf("building step registry: %w", err)
	}

	a.Orchestrator = workflow.NewOrchestrator(a.Store, registry, a.Catalog, a.Logger)
	return nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Tracing(a.OTelProviders.Tracer))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Outside the middleware group so scrapes stay cheap.
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := errors.NewErrorHandler(a.Logger, false)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			healthHandler := handlers.NewHealthHandler(a.Catalog, Version, a.Logger)
			r.Mount("/health", healthHandler.Routes())

			profileHandler := handlers.NewProfileHandler(a.Store, errorHandler, a.Logger)
			r.Mount("/profiles", profileHandler.Routes())
		})

		// Steps reach upstream providers, so they get the longer
		// step timeout.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.StepTimeout, a.Logger))

			workflowHandler := handlers.NewWorkflowHandler(a.Orchestrator, errorHandler, a.Logger)
			r.Mount("/workflow", workflowHandler.Routes())
		})
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start runs the HTTP server until the context is cancelled.
func (a *Application) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		return nil
	}
}

// Stop shuts the server down gracefully and releases resources.
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.Info("shutting down")

	var firstErr error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		firstErr = fmt.Errorf("server shutdown: %w", err)
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("otel shutdown: %w", err)
		}
	}
	if a.closeStore != nil {
		if err := a.closeStore(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("store close: %w", err)
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("log close: %w", err)
	}
	return firstErr
}

// Run starts the application and blocks until an interrupt, then
// shuts down gracefully.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Start(ctx)
	}()

	select {
	case sig := <-sigCh:
		a.Logger.Info("received signal", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
