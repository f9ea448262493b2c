package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"ledger-reconciliation/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		verbose   bool
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{"info json", config.LoggingConfig{Level: "info", Encoding: "json"}, false, zapcore.InfoLevel, false},
		{"warn console", config.LoggingConfig{Level: "warn", Encoding: "console"}, false, zapcore.WarnLevel, false},
		{"verbose forces debug", config.LoggingConfig{Level: "error"}, true, zapcore.DebugLevel, false},
		{"bad level", config.LoggingConfig{Level: "loud"}, false, zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, tt.verbose)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
		})
	}
}
