package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dayplanner/internal/config"
	"dayplanner/internal/db/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "nested", "dayplanner.db"),
	}

	st, err := OpenAndMigrate(ctx, cfg)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Ping(ctx))

	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, st.CreateUser(ctx, user))
	tasks, err := st.EnsureDaySlots(ctx, user.ID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, tasks, models.SlotsPerDay)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "mysql"})
	assert.ErrorContains(t, err, `unknown database driver "mysql"`)
}
