package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/adoption-service/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "WARN", Service: "adoption"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_UnknownValuesFallBack(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "loud", Encoding: "xml", Env: "production"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
