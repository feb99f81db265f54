// Package main provides the PgQ consumer that polls event batches and hands each event to a handler.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/rueidis"

	"github.com/jnst/pgq-consumer/internal/config"
	"github.com/jnst/pgq-consumer/internal/handler"
	"github.com/jnst/pgq-consumer/internal/logger"
	"github.com/jnst/pgq-consumer/internal/metrics"
	"github.com/jnst/pgq-consumer/internal/repository"
	"github.com/jnst/pgq-consumer/internal/scheduler"
	"github.com/jnst/pgq-consumer/internal/service"
)

const (
	signalBufferSize      = 1
	exitCode              = 1
	readHeaderTimeout     = 5 * time.Second
	metricsShutdownPeriod = 5 * time.Second
)

func setupDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	return dbPool, nil
}

func setupRedisClient(cfg *config.Config) (rueidis.Client, error) {
	redisClient, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.RedisAddr},
	})
	if err != nil {
		return nil, err
	}

	return redisClient, nil
}

func setupSignalHandling() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, signalBufferSize)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("shutdown signal received, stopping consumer")
		cancel()
	}()

	return ctx, cancel
}

// setupHandler builds the handler registry. Event types without a dedicated handler go to the
// handler selected by HANDLER.
func setupHandler(cfg *config.Config) (handler.Handler, func(), error) {
	switch cfg.Handler {
	case config.HandlerRedis:
		redisClient, err := setupRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}

		relay := handler.NewStreamRelayHandler(redisClient, cfg.RedisStream)

		return handler.NewRegistry(relay), redisClient.Close, nil
	default:
		return handler.NewRegistry(handler.LogHandler{}), func() {}, nil
	}
}

func startMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.String("addr", addr), slog.String("error", err.Error()))
		}
	}()

	return srv
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	slog.SetDefault(logger.Setup(cfg.LogLevel, cfg.LogFormat))

	ctx, cancel := setupSignalHandling()
	defer cancel()

	dbPool, err := setupDatabase(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}
	defer dbPool.Close()

	eventHandler, closeHandler, err := setupHandler(cfg)
	if err != nil {
		slog.Error("failed to set up event handler", slog.String("error", err.Error()))
		return
	}
	defer closeHandler()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	consumerMetrics := metrics.New(reg)

	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(cfg.MetricsAddr, reg)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), metricsShutdownPeriod)
			defer shutdownCancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("failed to stop metrics server", slog.String("error", err.Error()))
			}
		}()
	}

	queueStore := repository.NewQueueStoreImpl(dbPool)
	consumerService := service.NewConsumerServiceImpl(queueStore, eventHandler, cfg.Identity(), cfg.RetryDelaySeconds)

	slog.Info("starting pgq consumer",
		slog.String("service", "consumer"),
		slog.String("queue", cfg.QueueName),
		slog.String("consumer", cfg.ConsumerName),
		slog.String("handler", cfg.Handler),
		slog.Int("retry_delay_seconds", cfg.RetryDelaySeconds),
	)

	// Run returns without waiting for an in-flight attempt. If the process exits mid-batch,
	// PgQ hands the unfinished batch out again on the next next_batch call.
	scheduler.New(consumerService, cfg.PollInterval(), consumerMetrics).Run(ctx)
}
