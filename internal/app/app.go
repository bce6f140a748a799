package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"sheetpivot/internal/config"
	apierrors "sheetpivot/internal/errors"
	"sheetpivot/internal/infrastructure"
	customMiddleware "sheetpivot/internal/middleware"
	"sheetpivot/internal/services"
	"sheetpivot/internal/store"
	handlers "sheetpivot/internal/transport/http"
	"sheetpivot/pkg/contracts"
)

// AppName is logged at startup and reported by /api/version.
const AppName = "sheetpivot"

// runtimeInterval is how often runtime and store gauges are sampled.
const runtimeInterval = 15 * time.Second

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Store         *store.Store
	ImportService *services.ImportService
	ExportService *services.ExportService
	HealthService *services.HealthService
	Runtime       *infrastructure.RuntimeCollector
	Metrics       *infrastructure.BusinessMetrics
	OTelProviders *infrastructure.OTelProviders
	Logger        *slog.Logger

	errorHandler *apierrors.ErrorHandler
}

// NewApplication loads the configuration, initializes the global logger and
// builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires every component for cfg. The record store is opened once here
// and closed by Stop.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("build_time", contracts.BuildTime),
		slog.String("commit", contracts.GitCommit))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.ServiceVersion = contracts.Version
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		OTelProviders: providers,
		Logger:        logger,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development, customMiddleware.TraceID),
	}

	if providers.Meter != nil {
		if a.Metrics, err = infrastructure.CreateBusinessMetrics(providers.Meter); err != nil {
			a.shutdownOTel(context.Background())
			return nil, fmt.Errorf("failed to create business metrics: %w", err)
		}
	}

	a.Store, err = store.Open(store.Options{
		Dir:      paths.StoreDir,
		InMemory: cfg.Store.InMemory,
		Logger:   logger,
	})
	if err != nil {
		a.shutdownOTel(context.Background())
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	if err := a.initializeServices(); err != nil {
		_ = a.Stop(context.Background())
		return nil, err
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

func (a *Application) initializeServices() error {
	var err error
	a.Runtime, err = infrastructure.NewRuntimeCollector(a.OTelProviders.Meter, a.Store.Size, runtimeInterval)
	if err != nil {
		return err
	}

	collection := a.Config.Store.DefaultCollection
	a.ImportService = services.NewImportService(a.Store, a.Paths, collection, a.Metrics, a.Logger)
	a.ExportService = services.NewExportService(a.Store, a.Paths, collection, a.Config.Pipeline, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthService(services.BuildInfo{
		Version:   contracts.Version,
		BuildTime: contracts.BuildTime,
		BuildID:   contracts.GitCommit,
	}, a.Paths.DataDir, a.Store, a.Runtime, a.Logger)

	a.Logger.Info("Services initialized",
		slog.String("default_collection", collection),
		slog.String("data_dir", a.Paths.DataDir),
		slog.Bool("store_in_memory", a.Config.Store.InMemory))
	return nil
}

// setupRouter applies RequestID → RealIP → OTel → Logger → Recoverer →
// SecurityHeaders → CORS → RateLimiter; Timeout is set per route group.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.errorHandler, a.Metrics))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
	}
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.Registry))

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/version", healthHandler.Version)
			r.Get("/stats", healthHandler.Stats)
		})

		// Workbook reads and writes get the longer operation timeout
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.OperationTimeout, a.Logger))

			workbookHandler := handlers.NewWorkbookHandler(
				a.ImportService,
				a.ExportService,
				customMiddleware.NewRequestValidator(a.Logger),
				a.Logger,
				a.errorHandler,
			)
			workbookHandler.RegisterRoutes(r)
		})
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves on the configured port until SIGINT or SIGTERM.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		_ = a.Stop(context.Background())
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln and samples runtime metrics until ctx is
// done or the server fails, then stops the application.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("address", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.Runtime.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.InfoContext(ctx, "Shutdown requested")
		return a.Stop(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Stop shuts down the server, the OpenTelemetry providers and the record
// store, in that order.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}
	if err := a.shutdownOTel(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

func (a *Application) shutdownOTel(ctx context.Context) error {
	if a.OTelProviders == nil {
		return nil
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		return err
	}
	return nil
}
