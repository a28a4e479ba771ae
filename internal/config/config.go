// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yml"

const envPrefix = "TASKBURST"

const RepositoryPostgres = "postgres"
const RepositoryInMemory = "inmemory"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	Worker     WorkerConfig     `yaml:"worker"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       int           `yaml:"rate_limit"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	AutoMigrate    bool          `yaml:"auto_migrate"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "postgres" или "inmemory"
}

// RedisConfig без адреса кэш и отзыв токенов работают в памяти процесса
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	Issuer          string        `yaml:"issuer"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
	BcryptCost      int           `yaml:"bcrypt_cost"`
}

type WorkerConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Interval  time.Duration `yaml:"interval"`
	BatchSize int           `yaml:"batch_size"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Host:            "",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       100,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
			MinConnections: 2,
			IdleTimeout:    5 * time.Minute,
			AutoMigrate:    true,
		},
		Repository: RepositoryConfig{Type: RepositoryInMemory},
		Redis: RedisConfig{
			Prefix: "taskburst:",
			TTL:    5 * time.Minute,
		},
		Auth: AuthConfig{
			Issuer:          "taskburst",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Worker: WorkerConfig{
			Enabled:   true,
			Interval:  5 * time.Minute,
			BatchSize: 100,
		},
	}
}

// Load читает yaml поверх значений по умолчанию, затем применяет
// переменные окружения TASKBURST_<СЕКЦИЯ>_<КЛЮЧ>.
// Отсутствие файла по пути по умолчанию не ошибка.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
	default:
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	str := func(key string, dst *string) {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	flag := func(key string, dst *bool) {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}
	dur := func(key string, dst *time.Duration) {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetDuration(key)
		}
	}

	str("server.port", &cfg.Server.Port)
	str("server.host", &cfg.Server.Host)
	dur("server.request_timeout", &cfg.Server.RequestTimeout)
	num("server.rate_limit", &cfg.Server.RateLimit)
	_ = v.BindEnv("server.cors_origins")
	if v.IsSet("server.cors_origins") {
		cfg.Server.CORSOrigins = strings.Split(v.GetString("server.cors_origins"), ",")
	}

	str("database.url", &cfg.Database.URL)
	num("database.max_connections", &cfg.Database.MaxConnections)
	num("database.min_connections", &cfg.Database.MinConnections)
	flag("database.auto_migrate", &cfg.Database.AutoMigrate)

	flag("logging.development", &cfg.Logging.Development)
	str("repository.type", &cfg.Repository.Type)

	str("redis.addr", &cfg.Redis.Addr)
	str("redis.password", &cfg.Redis.Password)
	num("redis.db", &cfg.Redis.DB)
	dur("redis.ttl", &cfg.Redis.TTL)

	str("auth.jwt_secret", &cfg.Auth.JWTSecret)
	dur("auth.access_token_ttl", &cfg.Auth.AccessTokenTTL)
	dur("auth.refresh_token_ttl", &cfg.Auth.RefreshTokenTTL)
	num("auth.bcrypt_cost", &cfg.Auth.BcryptCost)

	flag("worker.enabled", &cfg.Worker.Enabled)
	dur("worker.interval", &cfg.Worker.Interval)
	num("worker.batch_size", &cfg.Worker.BatchSize)
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryInMemory:
	case RepositoryPostgres:
		if c.Database.URL == "" {
			return errors.New("для repository.type=postgres нужен database.url")
		}
	default:
		return fmt.Errorf("неизвестный тип хранилища %q", c.Repository.Type)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret не задан (TASKBURST_AUTH_JWT_SECRET)")
	}
	if c.Server.RateLimit <= 0 {
		return errors.New("server.rate_limit должен быть больше нуля")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}
