package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/pizza-teams/internal/application"
	"github.com/eugenenazirov/pizza-teams/internal/config"
	"github.com/eugenenazirov/pizza-teams/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("pizza-teams", "Pizza Teams - assigns pizzas to teams to maximize distinct ingredients delivered")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()
	logLevel := kingpinApp.Flag("log-level", "Log level: debug, info, warn, error").String()
	strategy := kingpinApp.Flag("strategy", "Default assignment strategy: greedy or baseline").String()
	overlapPolicy := kingpinApp.Flag("overlap-policy", "Greedy overlap policy: size-dependent, penalize or reward").String()
	store := kingpinApp.Flag("store", "Run store backend: memory or redis").String()
	redisURL := kingpinApp.Flag("redis-url", "Redis connection URL for the redis store").String()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile:    *configFile,
		Port:          port,
		LogLevel:      logLevel,
		Strategy:      strategy,
		OverlapPolicy: overlapPolicy,
		Store:         store,
		RedisURL:      redisURL,
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger, app)
}

// shutdown waits for a termination signal, drains the server and then closes
// the resources the server depended on.
func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger, closers ...io.Closer) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}

	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Warn("failed to release resource", zap.Error(err))
		}
	}
}
