package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suPer8Hu/session-to-uninfo/internal/config"
)

func TestOpen_SQLiteWithoutRedis(t *testing.T) {
	cfg := config.Config{
		DBDriver:   "sqlite",
		DBDSN:      filepath.Join(t.TempDir(), "bot.db"),
		DBLogLevel: "silent",
		LogLevel:   "error",
		LogFormat:  "json",
	}

	a, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Redis)
	assert.NotNil(t, a.Resolver)

	ctx := a.Context(context.Background())
	assert.Equal(t, zerolog.ErrorLevel, zerolog.Ctx(ctx).GetLevel())
}
