// Package grpc поднимает gRPC сервер со стандартным сервисом проверки здоровья.
package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"notekeeper/internal/config"
	"notekeeper/pkg/logger"
)

// ServiceName - имя сервиса в ответах grpc.health.v1.
const ServiceName = "notekeeper"

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server представляет gRPC сервер.
type Server struct {
	server   *grpc.Server
	health   *health.Server
	address  string
	listener net.Listener
}

// New создает новый экземпляр gRPC сервера с сервисами health и reflection.
func New(cfg *config.GRPCConfig) *Server {
	s := &Server{
		server:  grpc.NewServer(),
		health:  health.NewServer(),
		address: cfg.GetAddress(),
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)
	s.SetServing(false)
	return s
}

// RegisterService регистрирует дополнительные gRPC сервисы.
func (s *Server) RegisterService(registerFunc func(*grpc.Server)) {
	registerFunc(s.server)
}

// SetServing переключает статус сервиса и общий статус сервера.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// WatchReadiness периодически проверяет pinger и обновляет статус до отмены ctx.
func (s *Server) WatchReadiness(ctx context.Context, pinger Pinger, interval time.Duration) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		err := pinger.Ping(pingCtx)
		if err != nil {
			logger.Log(ctx).Warn(ctx, "readiness check failed", zap.Error(err))
		}
		s.SetServing(err == nil)
	}

	check()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				check()
			}
		}
	}()
}

// Start запускает gRPC сервер.
func (s *Server) Start(ctx context.Context) error {
	log := logger.Log(ctx)

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener

	log.Info(ctx, "gRPC server started", zap.String("address", listener.Addr().String()))

	go func() {
		if err := s.server.Serve(listener); err != nil {
			log.Error(ctx, "failed to serve gRPC", zap.Error(err))
		}
	}()

	return nil
}

// Addr возвращает фактический адрес после Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.address
	}
	return s.listener.Addr().String()
}

// Stop останавливает gRPC сервер.
func (s *Server) Stop(ctx context.Context) {
	logger.Log(ctx).Info(ctx, "stopping gRPC server")
	s.health.Shutdown()
	s.server.GracefulStop()
}
