package notch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggerConfigFor(t *testing.T) {
	for _, buildType := range []string{buildTypeNone, buildTypeDev} {
		config, err := loggerConfigFor(buildType)
		require.NoError(t, err)

		assert.True(t, config.Level.Enabled(zapcore.DebugLevel), "build type %q", buildType)
		assert.Equal(t, []string{"stderr"}, config.OutputPaths)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(buildTypeDev)
	require.NoError(t, err)

	logger.Named("test").Debugw("Created test logger", "ok", true)
}
