package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"taskBoard/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Up применяет все миграции диалекта.
// Для postgres принимает строку подключения pgx, для sqlite - путь к файлу.
func Up(dialect Dialect, dsn string) error {
	databaseURL, err := migrateURL(dialect, dsn)
	if err != nil {
		return err
	}

	src, err := iofs.New(files, string(dialect))
	if err != nil {
		return fmt.Errorf("чтение миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("инициализация migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Migrations: Схема актуальна", zap.String("dialect", string(dialect)))
			return nil
		}
		return fmt.Errorf("применение миграций: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("Migrations: Миграции применены",
		zap.String("dialect", string(dialect)),
		zap.Uint("version", version))
	return nil
}

func migrateURL(dialect Dialect, dsn string) (string, error) {
	switch dialect {
	case Postgres:
		for _, prefix := range []string{"postgres://", "postgresql://"} {
			if strings.HasPrefix(dsn, prefix) {
				return "pgx5://" + strings.TrimPrefix(dsn, prefix), nil
			}
		}
		return "", fmt.Errorf("неподдерживаемая строка подключения postgres")
	case SQLite:
		path, query, _ := strings.Cut(dsn, "?")
		u := "sqlite3://" + path
		if query != "" {
			u += "?" + query
		}
		return u, nil
	default:
		return "", fmt.Errorf("неизвестный диалект %q", dialect)
	}
}
