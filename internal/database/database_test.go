package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateSQLiteIsIdempotent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "bot.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	applied, err := MigrateSQLite(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_recruitments.sql"}, applied)

	applied, err = MigrateSQLite(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, applied)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM recruitments`).Scan(&n))
	assert.Zero(t, n)
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	assert.Error(t, err)
}

func TestMigrationFilesSorted(t *testing.T) {
	files, err := migrationFiles(postgresMigrations, "migrations/postgres")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_recruitments.sql", files[0].name)
	assert.Contains(t, files[0].sql, "JSONB")
}
