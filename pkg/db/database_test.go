package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLite(t *testing.T) {
	db, err := Open(context.Background(), "sqlite", "file:pkgdb_open?mode=memory&cache=shared")
	require.NoError(t, err)

	require.NoError(t, Ping(context.Background(), db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, sqlDB.Close())
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), "sqlite", "")
	require.Error(t, err)

	_, err = Open(context.Background(), "oracle", "dsn")
	require.ErrorContains(t, err, "unsupported database driver")
}
