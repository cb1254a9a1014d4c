package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mealmate.db")

	db, err := NewDB(path, nil)
	require.NoError(t, err)

	var name string
	err = db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='execution_metrics'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "execution_metrics", name)
	require.NoError(t, db.Close())

	// Reopening an up-to-date database is a no-op migration.
	db, err = NewDB(path, nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
