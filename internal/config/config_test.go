package config_test

import (
	"os"
	"path/filepath"
	"taskBoard/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestLoad_Defaults тестирует значения по умолчанию без файла
func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Backend.Type)
	assert.Equal(t, "sqlite", cfg.Repository.Type)
	assert.Equal(t, "taskboard.db", cfg.SQLite.Path)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddr())
	assert.Equal(t, 25*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "new_group_mkmkw2gr", cfg.Board.Groups.Done)
	assert.Equal(t, []string{"topics", "group_mm0m8a0"}, cfg.Board.Groups.Allowed)
}

// TestLoad_File тестирует чтение yaml
func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
  host: "127.0.0.1"
logging:
  development: true
backend:
  type: local
repository:
  type: postgres
database:
  url: "postgres://u:p@localhost:5432/db"
  max_connections: 20
  idle_timeout: 1m
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.GetServerAddr())
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "postgres", cfg.Repository.Type)
	assert.Equal(t, int32(20), cfg.Database.MaxConnections)
	assert.Equal(t, int32(2), cfg.Database.MinConnections)
	assert.Equal(t, time.Minute, cfg.Database.IdleTimeout)
}

// TestLoad_Env тестирует переменные окружения, включая исторические имена
func TestLoad_Env(t *testing.T) {
	t.Setenv("TASKBOARD_BACKEND_TYPE", "board")
	t.Setenv("MONDAY_API_TOKEN", "tok")
	t.Setenv("MONDAY_BOARD_ID", "123")
	t.Setenv("API_SECRET_KEY", "k3y")
	t.Setenv("TASKBOARD_SERVER_PORT", "7070")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "board", cfg.Backend.Type)
	assert.Equal(t, "tok", cfg.Board.Token)
	assert.Equal(t, "123", cfg.Board.BoardID)
	assert.Equal(t, "k3y", cfg.Auth.APIKey)
	assert.Equal(t, "7070", cfg.Server.Port)
}

// TestLoad_EnvPrefixWins тестирует, что переменная с префиксом важнее исторической
func TestLoad_EnvPrefixWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://legacy")
	t.Setenv("TASKBOARD_DATABASE_URL", "postgres://prefixed")
	t.Setenv("TASKBOARD_REPOSITORY_TYPE", "postgres")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://prefixed", cfg.Database.URL)
}

// TestConfig_Validate тестирует проверки конфигурации
func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Server:     config.ServerConfig{Port: "8080"},
			Backend:    config.BackendConfig{Type: "local"},
			Repository: config.RepositoryConfig{Type: "inmemory"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"unknown backend", func(c *config.Config) { c.Backend.Type = "s3" }, "backend.type"},
		{"unknown repository", func(c *config.Config) { c.Repository.Type = "mysql" }, "repository.type"},
		{"postgres without url", func(c *config.Config) { c.Repository.Type = "postgres" }, "database.url"},
		{"sqlite without path", func(c *config.Config) { c.Repository.Type = "sqlite" }, "sqlite.path"},
		{"board without token", func(c *config.Config) {
			c.Backend.Type = "board"
			c.Board.BoardID = "1"
			c.Board.Groups.Allowed = []string{"topics"}
			c.Auth.APIKey = "k"
		}, "board.token"},
		{"board without credentials", func(c *config.Config) {
			c.Backend.Type = "board"
			c.Board.Token = "t"
			c.Board.BoardID = "1"
			c.Board.Groups.Allowed = []string{"topics"}
		}, "auth.api_key"},
		{"no port", func(c *config.Config) { c.Server.Port = "" }, "server.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestLoad_MissingFile тестирует ошибку при отсутствии файла
func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
