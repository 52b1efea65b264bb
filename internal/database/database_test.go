package database

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/brain-bank/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "brainbank.db")

	store, err := Open(context.Background(), &config.Config{DBDriver: config.DriverSQLite, DBPath: path}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	assert.NoError(t, store.Ping(context.Background()))
	assert.FileExists(t, path)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{DBDriver: "mongo"}, discardLogger())
	assert.Error(t, err)
}
