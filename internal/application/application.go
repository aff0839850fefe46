package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eugenenazirov/pizza-teams/internal/api"
	"github.com/eugenenazirov/pizza-teams/internal/config"
	"github.com/eugenenazirov/pizza-teams/internal/metrics"
	"github.com/eugenenazirov/pizza-teams/internal/runner"
	"github.com/eugenenazirov/pizza-teams/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage storage.Storage
	runner  *runner.Runner
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := NewStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run store: %w", err)
	}

	run, err := runner.New(cfg, logger)
	if err != nil {
		_ = closeStorage(store)
		return nil, fmt.Errorf("failed to initialize runner: %w", err)
	}

	metrics.RegisterDefault()

	handler := api.NewHandler(run, store, api.WithMaxRequestBytes(cfg.MaxRequestBytes))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		storage: store,
		runner:  run,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, BuildRootHandler(apiRouter)),
	}, nil
}

// NewStorage selects the run store named by cfg.Store.
func NewStorage(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	switch cfg.Store {
	case "", "memory":
		return storage.NewMemoryStorage(cfg.MaxRuns), nil
	case "redis":
		return storage.NewRedisStorage(ctx, cfg.RedisURL, cfg.RunTTL, cfg.MaxRuns)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// BuildRootHandler mounts the API router and the Prometheus scrape endpoint.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Close releases the run store.
func (a *App) Close() error {
	return closeStorage(a.storage)
}

func closeStorage(store storage.Storage) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
