// Package metrics собирает метрики Prometheus и отдает их отдельным HTTP listener.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"notekeeper/internal/config"
	"notekeeper/internal/domain/entities"
	"notekeeper/internal/domain/services"
	svc "notekeeper/internal/ports/services"
	"notekeeper/pkg/logger"
)

const namespace = "notekeeper"

// Результаты операций над заметками.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics хранит коллекторы сервиса в собственном реестре.
type Metrics struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	noteOperations  *prometheus.CounterVec
	rateLimitBlocks prometheus.Counter
}

var _ svc.NoteMetrics = (*Metrics)(nil)

// New создает и регистрирует коллекторы.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		noteOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "note_operations_total",
				Help:      "Note operations by result",
			},
			[]string{"operation", "result"},
		),
		rateLimitBlocks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_requests_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.noteOperations,
		m.rateLimitBlocks,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveHTTP учитывает завершенный HTTP запрос.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RateLimited учитывает отклоненный ограничителем запрос.
func (m *Metrics) RateLimited() {
	m.rateLimitBlocks.Inc()
}

// NoteOperation учитывает операцию над заметкой.
func (m *Metrics) NoteOperation(operation string, err error) {
	m.noteOperations.WithLabelValues(operation, resultOf(err)).Inc()
}

// Handler возвращает обработчик для экспорта метрик.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry возвращает реестр коллекторов.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, entities.ErrNoteNotFound):
		return ResultNotFound
	case errors.Is(err, entities.ErrInvalidNote),
		errors.Is(err, entities.ErrRecipientNotFound),
		errors.Is(err, services.ErrEmptyQuery):
		return ResultRejected
	default:
		return ResultError
	}
}

// Server - HTTP listener для метрик.
type Server struct {
	server *http.Server
}

// NewServer создает listener метрик по конфигурации.
func NewServer(cfg *config.MetricsConfig, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, m.Handler())

	return &Server{
		server: &http.Server{
			Addr:              cfg.GetAddress(),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start запускает listener в отдельной горутине.
func (s *Server) Start(ctx context.Context) {
	log := logger.Log(ctx)
	log.Info(ctx, "metrics server started", zap.String("address", s.server.Addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server failed", zap.Error(err))
		}
	}()
}

// Stop останавливает listener.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop metrics server: %w", err)
	}
	return nil
}
