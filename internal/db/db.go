// Package db поднимает базу данных сервиса заметок: миграции и пул соединений.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"notekeeper/internal/config"
	"notekeeper/pkg/db/postgres"
	"notekeeper/pkg/logger"
)

// Константы для сообщений логгера.
const (
	LogDBInitializing    = "initializing notekeeper database"
	LogDBInitialized     = "notekeeper database initialized successfully"
	LogMigrationStarting = "starting database migrations"
)

// Константы для сообщений об ошибках.
const (
	ErrDBMigrations = "failed to apply notekeeper database migrations"
	ErrDBConnection = "failed to connect to notekeeper database"
)

// DB представляет соединение с базой данных сервиса.
type DB struct {
	database *postgres.Database
}

// New применяет миграции и открывает пул соединений.
func New(ctx context.Context, cfg *config.PostgresConfig) (*DB, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogDBInitializing,
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.Int("min_conn", cfg.MinConn),
		zap.Int("max_conn", cfg.MaxConn))

	source, err := postgres.MigrationsSource(cfg.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	log.Info(ctx, LogMigrationStarting, zap.String("migrations_path", source))
	if err := postgres.MigrateDSN(ctx, cfg.GetConnectionURL(), source); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	database, err := postgres.New(ctx, cfg.GetDSN(), postgres.PoolOptions{
		MinConns:       cfg.MinConn,
		MaxConns:       cfg.MaxConn,
		ConnectTimeout: cfg.ConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	log.Info(ctx, LogDBInitialized)
	return &DB{database: database}, nil
}

// Close закрывает пул.
func (db *DB) Close(ctx context.Context) {
	db.database.Close(ctx)
}

// Pool возвращает пул соединений.
func (db *DB) Pool() *pgxpool.Pool {
	return db.database.Pool()
}

// Ping проверяет соединение с базой данных.
func (db *DB) Ping(ctx context.Context) error {
	return db.database.Ping(ctx)
}
