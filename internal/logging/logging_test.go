package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantDebug bool
		wantInfo  bool
	}{
		{name: "debug console", config: Config{Level: "debug", Format: "console"}, wantDebug: true, wantInfo: true},
		{name: "info json", config: Config{Level: "info", Format: "json"}, wantDebug: false, wantInfo: true},
		{name: "error", config: Config{Level: "error"}, wantDebug: false, wantInfo: false},
		{name: "unknown level falls back to info", config: Config{Level: "loud"}, wantDebug: false, wantInfo: true},
		{name: "development", config: Config{Level: "warn", Development: true}, wantDebug: false, wantInfo: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			require.NoError(t, err)
			require.NotNil(t, logger)

			assert.Equal(t, tt.wantDebug, logger.Core().Enabled(zap.DebugLevel))
			assert.Equal(t, tt.wantInfo, logger.Core().Enabled(zap.InfoLevel))
		})
	}
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}
