package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		dsn     string
		want    string
		wantErr bool
	}{
		{"postgres", Postgres, "postgres://u:p@localhost:5432/db?sslmode=disable", "pgx5://u:p@localhost:5432/db?sslmode=disable", false},
		{"postgresql", Postgres, "postgresql://u:p@db/tasks", "pgx5://u:p@db/tasks", false},
		{"postgres keyword dsn", Postgres, "host=localhost user=u", "", true},
		{"sqlite", SQLite, "/tmp/tasks.db", "sqlite3:///tmp/tasks.db", false},
		{"sqlite with params", SQLite, "tasks.db?_foreign_keys=on", "sqlite3://tasks.db?_foreign_keys=on", false},
		{"unknown", Dialect("mysql"), "x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := migrateURL(tt.dialect, tt.dsn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilesEmbedded(t *testing.T) {
	for _, name := range []string{
		"postgres/000001_init.up.sql",
		"postgres/000001_init.down.sql",
		"sqlite/000001_init.up.sql",
		"sqlite/000001_init.down.sql",
	} {
		data, err := files.ReadFile(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}
