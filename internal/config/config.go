package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "TASKBOARD"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Backend    BackendConfig    `mapstructure:"backend"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Database   DatabaseConfig   `mapstructure:"database"`
	SQLite     SQLiteConfig     `mapstructure:"sqlite"`
	Board      BoardConfig      `mapstructure:"board"`
	Auth       AuthConfig       `mapstructure:"auth"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type BackendConfig struct {
	Type string `mapstructure:"type"` // "local" или "board"
}

type RepositoryConfig struct {
	Type string `mapstructure:"type"` // "postgres", "sqlite" или "inmemory"
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int32         `mapstructure:"max_connections"`
	MinConnections int32         `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type BoardGroupsConfig struct {
	Allowed  []string `mapstructure:"allowed"`
	Done     string   `mapstructure:"done"`
	Canceled string   `mapstructure:"canceled"`
	Reopen   string   `mapstructure:"reopen"`
}

type BoardConfig struct {
	APIURL       string            `mapstructure:"api_url"`
	Token        string            `mapstructure:"token"`
	BoardID      string            `mapstructure:"board_id"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	Groups       BoardGroupsConfig `mapstructure:"groups"`
	GroupEmoji   map[string]string `mapstructure:"group_emoji"`
	DefaultEmoji string            `mapstructure:"default_emoji"`
}

type AuthConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

type WorkerConfig struct {
	// OverdueInterval 0 выключает подсчёт просроченных задач
	OverdueInterval time.Duration `mapstructure:"overdue_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 25*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.development", false)

	v.SetDefault("backend.type", "local")
	v.SetDefault("repository.type", "sqlite")

	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)

	v.SetDefault("sqlite.path", "taskboard.db")

	v.SetDefault("board.api_url", "https://api.monday.com/v2")
	v.SetDefault("board.timeout", 15*time.Second)
	v.SetDefault("board.groups.allowed", []string{"topics", "group_mm0m8a0"})
	v.SetDefault("board.groups.done", "new_group_mkmkw2gr")
	v.SetDefault("board.groups.canceled", "group_mm0m3wrz")
	v.SetDefault("board.default_emoji", "📋")

	v.SetDefault("auth.session_secret", "")
	v.SetDefault("auth.session_ttl", 30*24*time.Hour)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("rate_limit.requests_per_minute", 300)
	v.SetDefault("worker.overdue_interval", 5*time.Minute)
}

// Load читает конфиг из файла (если путь задан) и переменных окружения.
// Переменные TASKBOARD_SECTION_KEY перекрывают файл, исторические имена тоже поддерживаются.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	legacy := map[string]string{
		"board.token":    "MONDAY_API_TOKEN",
		"board.board_id": "MONDAY_BOARD_ID",
		"auth.api_key":   "API_SECRET_KEY",
		"database.url":   "DATABASE_URL",
	}
	for key, env := range legacy {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("привязка переменной %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("не могу прочитать %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфига: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Backend.Type {
	case "local":
		switch c.Repository.Type {
		case "postgres":
			if c.Database.URL == "" {
				errs = append(errs, errors.New("database.url обязателен для postgres"))
			}
		case "sqlite":
			if c.SQLite.Path == "" {
				errs = append(errs, errors.New("sqlite.path обязателен для sqlite"))
			}
		case "inmemory":
		default:
			errs = append(errs, fmt.Errorf("неизвестный repository.type %q", c.Repository.Type))
		}
	case "board":
		if c.Board.Token == "" {
			errs = append(errs, errors.New("board.token обязателен для доски"))
		}
		if c.Board.BoardID == "" {
			errs = append(errs, errors.New("board.board_id обязателен для доски"))
		}
		if len(c.Board.Groups.Allowed) == 0 {
			errs = append(errs, errors.New("board.groups.allowed не может быть пустым"))
		}
		if c.Auth.APIKey == "" && c.Auth.SessionSecret == "" {
			errs = append(errs, errors.New("для доски нужен auth.api_key или auth.session_secret"))
		}
	default:
		errs = append(errs, fmt.Errorf("неизвестный backend.type %q", c.Backend.Type))
	}

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port обязателен"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("неверная конфигурация: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
