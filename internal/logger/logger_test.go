package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetBeforeInit(t *testing.T) {
	assert.NotNil(t, Get())
}

func TestInitLevels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		require.NoError(t, Init(lvl), "level %s", lvl)
		assert.True(t, Get().Desugar().Core().Enabled(mustLevel(t, lvl)))
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init("loud"))
}

func mustLevel(t *testing.T, s string) zapcore.Level {
	t.Helper()
	lvl, err := zapcore.ParseLevel(s)
	require.NoError(t, err)
	return lvl
}
