// Package main реализует точку входа сервиса заметок.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/adapters/events"
	"notekeeper/internal/adapters/grpc"
	httpserver "notekeeper/internal/adapters/http"
	"notekeeper/internal/adapters/metrics"
	"notekeeper/internal/adapters/postgres"
	"notekeeper/internal/adapters/ratelimit"
	"notekeeper/internal/adapters/services"
	"notekeeper/internal/app"
	"notekeeper/internal/config"
	"notekeeper/internal/db"
	domain "notekeeper/internal/domain/services"
	"notekeeper/pkg/logger"
	"notekeeper/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "NOTEKEEPER_LOGGER_MODE"
	EnvLoggerLevel = "NOTEKEEPER_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize database"
	ErrInitServices         = "failed to initialize token service"
	ErrTokenMisconfigured   = "JWT signing key is not configured, set NOTEKEEPER_JWT_SECRET_KEY"
	ErrCreateRedisClient    = "failed to create redis client"
	ErrStartHTTPServer      = "failed to start HTTP server"
	ErrStartGRPC            = "failed to start gRPC server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "notekeeper service started"
	LogServiceShutdownDone = "notekeeper service shutdown complete"
	LogClosingDB           = "closing database connections"
	LogClosingRedis        = "closing redis connection"
	LogClosingKafka        = "closing kafka writer"
	LogStoppingHTTP        = "stopping HTTP server"
	LogStoppingGRPC        = "stopping gRPC server"
	LogStoppingMetrics     = "stopping metrics server"
	LogInitRepo            = "initializing repositories"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
	LogStartingGRPC        = "starting gRPC health server"
	LogKafkaEnabled        = "share events will be published to kafka"
	LogRateLimitEnabled    = "rate limiting enabled"
)

const readinessInterval = 10 * time.Second

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == string(logger.Production) {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}
	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := logger.Log(ctx).Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx, config.DefaultEnvFile)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogInitServices)
		serviceFactory, err := services.NewServiceFactory(domain.JWTConfig{
			SecretKey: []byte(cfg.JWT.SecretKey),
			TokenTTL:  cfg.JWT.GetTokenTTL(),
			Issuer:    cfg.JWT.Issuer,
			Audience:  cfg.JWT.Audience,
		}, cfg.JWT.BCryptCost)
		if err != nil {
			if errors.Is(err, domain.ErrConfiguration) {
				log.Error(ctx, ErrTokenMisconfigured, zap.Error(err))
			} else {
				log.Error(ctx, ErrInitServices, zap.Error(err))
			}
			exitCode = 1
			return
		}

		database, err := db.New(ctx, &cfg.Postgres)
		if err != nil {
			log.Error(ctx, ErrInitDB, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitRepo)
		repoFactory := postgres.NewRepositoryFactory(database.Pool())
		userRepo := repoFactory.UserRepository()

		hooks := []shutdown.Hook{
			func(ctx context.Context) error {
				log.Info(ctx, LogClosingDB)
				database.Close(ctx)
				return nil
			},
		}

		log.Info(ctx, LogInitUseCases)
		var noteOpts []app.NoteOption

		var promMetrics *metrics.Metrics
		if cfg.Metrics.Enabled {
			promMetrics = metrics.New()
			noteOpts = append(noteOpts, app.WithNoteMetrics(promMetrics))

			metricsServer := metrics.NewServer(&cfg.Metrics, promMetrics)
			metricsServer.Start(ctx)
			hooks = append(hooks, func(ctx context.Context) error {
				log.Info(ctx, LogStoppingMetrics)
				return metricsServer.Stop(ctx)
			})
		}

		if cfg.Kafka.Enabled() {
			log.Info(ctx, LogKafkaEnabled, zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
			publisher := events.NewKafkaPublisher(&cfg.Kafka)
			noteOpts = append(noteOpts, app.WithShareEventPublisher(publisher))
			hooks = append(hooks, func(ctx context.Context) error {
				log.Info(ctx, LogClosingKafka)
				return publisher.Close()
			})
		}

		authUseCase := app.NewAuthUseCase(userRepo, serviceFactory.PasswordService(), serviceFactory.TokenService())
		userUseCase := app.NewUserUseCase(userRepo)
		noteUseCase := app.NewNoteUseCase(
			repoFactory.NoteRepository(),
			repoFactory.ShareRepository(),
			serviceFactory.TokenService(),
			noteOpts...,
		)
		searchUseCase := app.NewSearchUseCase(noteUseCase)

		deps := httpserver.Dependencies{
			Auth:   authUseCase,
			Users:  userUseCase,
			Notes:  noteUseCase,
			Search: searchUseCase,
			Health: database,
		}
		if promMetrics != nil {
			deps.Metrics = promMetrics
		}

		if cfg.RateLimit.Enabled {
			redisClient, err := ratelimit.NewRedisClient(ctx, &cfg.RateLimit)
			if err != nil {
				log.Error(ctx, ErrCreateRedisClient, zap.Error(err))
				database.Close(ctx)
				exitCode = 1
				return
			}
			limiter := ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window, cfg.RateLimit.KeyPrefix)
			deps.Limiter = limiter
			log.Info(ctx, LogRateLimitEnabled,
				zap.Int("limit", cfg.RateLimit.Limit),
				zap.Duration("window", cfg.RateLimit.Window))
			hooks = append(hooks, func(ctx context.Context) error {
				log.Info(ctx, LogClosingRedis)
				return limiter.Close()
			})
		}

		if cfg.GRPC.Enabled {
			grpcServer := grpc.New(&cfg.GRPC)

			log.Info(ctx, LogStartingGRPC)
			if err := grpcServer.Start(ctx); err != nil {
				log.Error(ctx, ErrStartGRPC, zap.Error(err))
				database.Close(ctx)
				exitCode = 1
				return
			}

			readinessCtx, stopReadiness := context.WithCancel(ctx)
			grpcServer.WatchReadiness(readinessCtx, database, readinessInterval)
			hooks = append(hooks, func(ctx context.Context) error {
				log.Info(ctx, LogStoppingGRPC)
				stopReadiness()
				grpcServer.Stop(ctx)
				return nil
			})
		}

		log.Info(ctx, LogInitHTTPServer)
		fiberApp := httpserver.NewApp(&cfg.HTTP)
		httpserver.SetupRouter(fiberApp, deps)

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := fiberApp.Listen(cfg.HTTP.GetAddress(), fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()
		hooks = append(hooks, func(ctx context.Context) error {
			log.Info(ctx, LogStoppingHTTP)
			return fiberApp.ShutdownWithContext(ctx)
		})

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		if err := shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(), hooks...); err != nil {
			log.Error(ctx, "shutdown finished with errors", zap.Error(err))
			exitCode = 1
		}

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
