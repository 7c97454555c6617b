package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_AppliesMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "calorina.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, uint(2), db.SchemaVersion)

	for _, table := range []string{"execution_metrics", "diet_plan_events"} {
		var name string
		err := db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	// Running again is a no-op.
	version, err := RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}
