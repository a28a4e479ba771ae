package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"taskBurst/internal/auth"
	"taskBurst/internal/cache"
	"taskBurst/internal/config"
	"taskBurst/internal/logger"
	"taskBurst/internal/notify"
	pg "taskBurst/internal/repository/postgres"
	taskinmemory "taskBurst/internal/repository/task/inmemory"
	taskpg "taskBurst/internal/repository/task/postgres"
	userinmemory "taskBurst/internal/repository/user/inmemory"
	userpg "taskBurst/internal/repository/user/postgres"
	"taskBurst/internal/service"
	"taskBurst/internal/worker"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    http.Handler
	worker    *worker.OverdueWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.onShutdown(func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	tasks, users, err := a.initStorage(ctx)
	if err != nil {
		return err
	}

	lists, revocations, err := a.initCache(ctx)
	if err != nil {
		return err
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		SecretKey:            a.config.Auth.JWTSecret,
		AccessTokenDuration:  a.config.Auth.AccessTokenTTL,
		RefreshTokenDuration: a.config.Auth.RefreshTokenTTL,
		Issuer:               a.config.Auth.Issuer,
	})
	authService := auth.NewService(users, auth.NewPasswordHasher(a.config.Auth.BcryptCost), jwtManager, revocations)
	taskService := service.NewTaskService(tasks, authService, service.WithListCache(lists))

	a.router = NewRouter(RouterConfig{
		RequestTimeout: a.config.Server.RequestTimeout,
		RateLimit:      a.config.Server.RateLimit,
		CORSOrigins:    a.config.Server.CORSOrigins,
	}, taskService, authService)

	if a.config.Worker.Enabled {
		a.worker = worker.NewOverdueWorker(tasks, notify.LogSink{},
			worker.WithInterval(a.config.Worker.Interval),
			worker.WithBatchSize(a.config.Worker.BatchSize))
	}

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.Bool("redis", a.config.RedisEnabled()),
		zap.Bool("worker", a.worker != nil))
	return nil
}

func (a *App) initStorage(ctx context.Context) (service.TaskRepository, auth.UserRepository, error) {
	if a.config.Repository.Type == config.RepositoryInMemory {
		logger.Warn("Хранилище в памяти: данные пропадут после перезапуска")
		return taskinmemory.NewTaskStorage(), userinmemory.NewUserStorage(), nil
	}

	db, err := pg.New(ctx, a.config.Database.URL, pg.PoolConfig{
		MaxConnections: a.config.Database.MaxConnections,
		MinConnections: a.config.Database.MinConnections,
		IdleTimeout:    a.config.Database.IdleTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("подключение к базе: %w", err)
	}
	a.onShutdown(func() {
		logger.Info("Закрытие пула соединений с базой...")
		db.Close()
	})

	if a.config.Database.AutoMigrate {
		if err := db.Migrate(); err != nil {
			return nil, nil, fmt.Errorf("миграции: %w", err)
		}
	}

	return taskpg.New(db.Pool()), userpg.New(db.Pool()), nil
}

func (a *App) initCache(ctx context.Context) (service.TaskListCache, auth.Revocations, error) {
	if !a.config.RedisEnabled() {
		return cache.Nop{}, auth.NewMemoryRevocations(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.config.Redis.Addr,
		Password: a.config.Redis.Password,
		DB:       a.config.Redis.DB,
	})
	c := cache.New(client, a.config.Redis.Prefix, a.config.Redis.TTL)
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("подключение к Redis: %w", err)
	}
	a.onShutdown(func() {
		stats := c.GetStats()
		logger.Info("Закрытие соединения с Redis...",
			zap.Uint64("hits", stats.Hits),
			zap.Uint64("misses", stats.Misses),
			zap.Float64("hit_rate", stats.HitRate))
		if err := c.Close(); err != nil {
			logger.Error("Ошибка закрытия Redis", err)
		}
	})

	return cache.NewTaskLists(c), cache.NewRedisRevocations(c), nil
}

// Run блокируется до отмены ctx или падения сервера
func (a *App) Run(ctx context.Context) error {
	if a.server == nil {
		return errors.New("приложение не инициализировано")
	}
	defer a.shutdown()

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if a.worker != nil {
		go a.worker.Start(workerCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("сервер остановился: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Получен сигнал остановки, завершаем запросы...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("остановка сервера: %w", err)
	}
	logger.Info("Сервер остановлен")
	return nil
}

func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) onShutdown(fn func()) {
	a.shutdowns = append(a.shutdowns, fn)
}

// shutdown в обратном порядке: логгер закрывается последним
func (a *App) shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}

func (a *App) Close() {
	a.shutdown()
}

// Migrate применяет или откатывает миграции PostgreSQL
func Migrate(ctx context.Context, cfg *config.Config, down bool) error {
	if cfg.Database.URL == "" {
		return errors.New("database.url не задан")
	}

	db, err := pg.New(ctx, cfg.Database.URL, pg.PoolConfig{MaxConnections: 1, MinConnections: 1, IdleTimeout: time.Minute})
	if err != nil {
		return fmt.Errorf("подключение к базе: %w", err)
	}
	defer db.Close()

	if down {
		return db.Down()
	}
	return db.Migrate()
}
