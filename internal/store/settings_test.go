package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/orodjarna/internal/db"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	secret1, err := GetJWTSecret(ctx, database)
	require.NoError(t, err)
	assert.Len(t, secret1, 64) // 32 bytes hex

	secret2, err := GetJWTSecret(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, secret1, secret2)
}

func TestEnsureSettingKeepsFirstValue(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, ok, err := GetSetting(ctx, database, "label_printer")
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := EnsureSetting(ctx, database, "label_printer", "zebra-1")
	require.NoError(t, err)
	assert.Equal(t, "zebra-1", v)

	v, err = EnsureSetting(ctx, database, "label_printer", "zebra-2")
	require.NoError(t, err)
	assert.Equal(t, "zebra-1", v)

	got, ok, err := GetSetting(ctx, database, "label_printer")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "zebra-1", got)
}
