// Package postgres общий пул соединений и миграции схемы.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"taskBurst/internal/logger"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type PoolConfig struct {
	MaxConnections int
	MinConnections int
	IdleTimeout    time.Duration
}

type DB struct {
	pool       *pgxpool.Pool
	connString string
}

func New(ctx context.Context, connString string, cfg PoolConfig) (*DB, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if cfg.MaxConnections > 0 {
		config.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		config.MinConns = int32(cfg.MinConnections)
	}
	if cfg.IdleTimeout > 0 {
		config.MaxConnIdleTime = cfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &DB{pool: pool, connString: connString}, nil
}

func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

func (d *DB) Close() {
	d.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (d *DB) HealthCheck(ctx context.Context) error {
	if err := d.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (d *DB) Migrate() error {
	logger.Info("Repository: Применение миграций")

	m, err := d.migrator()
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: Ошибка применения миграций", err)
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Repository: Миграции применены")
	return nil
}

func (d *DB) Down() error {
	logger.Info("Repository: Откат миграций")

	m, err := d.migrator()
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: Ошибка отката миграций", err)
		return fmt.Errorf("откат миграций: %w", err)
	}

	logger.Info("Repository: Миграции откачены")
	return nil
}

func (d *DB) migrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("чтение миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, MigrateURL(d.connString))
	if err != nil {
		return nil, fmt.Errorf("инициализация миграций: %w", err)
	}
	return m, nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("Repository: Ошибка закрытия источника миграций", zap.Error(srcErr))
	}
	if dbErr != nil {
		logger.Warn("Repository: Ошибка закрытия соединения миграций", zap.Error(dbErr))
	}
}

// MigrateURL драйвер pgx/v5 для golang-migrate регистрируется под схемой pgx5://
func MigrateURL(connString string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(connString, prefix) {
			return "pgx5://" + strings.TrimPrefix(connString, prefix)
		}
	}
	return connString
}

// SlowQuery предупреждение о медленном запросе, как во всех репозиториях.
func SlowQuery(start time.Time, threshold time.Duration, query string) {
	if elapsed := time.Since(start); elapsed > threshold {
		logger.Warn("Repository: Медленный запрос", zap.String("query", query), zap.Duration("ms", elapsed))
	}
}
