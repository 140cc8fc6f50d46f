package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init("loud", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestInitAppliesLevel(t *testing.T) {
	t.Cleanup(func() { Set(nil) })
	require.NoError(t, Init("warn", false))
	assert.False(t, Log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Log.Core().Enabled(zapcore.WarnLevel))
}

func TestSetNilInstallsNop(t *testing.T) {
	Set(zap.NewExample())
	Set(nil)
	assert.False(t, Log.Core().Enabled(zapcore.ErrorLevel))
}
