// Package main provides the HTTP API that publishes events into the PgQ queue.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/jnst/pgq-consumer/internal/config"
	"github.com/jnst/pgq-consumer/internal/logger"
	"github.com/jnst/pgq-consumer/internal/model"
	"github.com/jnst/pgq-consumer/internal/repository"
	"github.com/jnst/pgq-consumer/internal/service"
)

const (
	contentTypeJSON        = "Content-Type"
	applicationJSON        = "application/json"
	failedToEncodeResponse = "failed to encode response"
	maxBodyBytes           = 1 << 20
	readHeaderTimeout      = 5 * time.Second
	exitCode               = 1
)

// APIServer handles HTTP requests for event publishing.
type APIServer struct {
	eventService service.EventService
}

// NewAPIServer creates a new API server instance.
func NewAPIServer(eventService service.EventService) *APIServer {
	return &APIServer{
		eventService: eventService,
	}
}

// Routes returns the router serving the API.
func (s *APIServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/events", s.PublishEvent)
	r.Get("/health", s.HealthCheck)

	return r
}

// PublishEvent handles POST /events endpoint for event publishing.
func (s *APIServer) PublishEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var params model.PublishEventParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	eventID, err := s.eventService.Publish(r.Context(), &params)
	if err != nil {
		if errors.Is(err, model.ErrEventTypeRequired) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		slog.Error("failed to publish event", slog.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set(contentTypeJSON, applicationJSON)
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(map[string]int64{"event_id": eventID}); err != nil {
		http.Error(w, failedToEncodeResponse, http.StatusInternalServerError)
		return
	}
}

// HealthCheck handles GET /health endpoint for service health check.
func (*APIServer) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(contentTypeJSON, applicationJSON)
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		http.Error(w, failedToEncodeResponse, http.StatusInternalServerError)
		return
	}
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	slog.SetDefault(logger.Setup(cfg.LogLevel, cfg.LogFormat))

	dbPool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}
	defer dbPool.Close()

	queueStore := repository.NewQueueStoreImpl(dbPool)
	transactionMgr := repository.NewTransactionManagerImpl(dbPool)
	eventService := service.NewEventServiceImpl(queueStore, transactionMgr, cfg.QueueName)

	server := NewAPIServer(eventService)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	slog.Info("starting API server",
		slog.String("service", "api"),
		slog.String("port", cfg.Port),
		slog.String("queue", cfg.QueueName),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("failed to start server", slog.String("error", err.Error()))
		return
	}
}
