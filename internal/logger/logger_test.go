package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"", zapcore.InfoLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		t.Run(format, func(t *testing.T) {
			l, err := New("warn", format)
			require.NoError(t, err)
			assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
			assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
		})
	}

	_, err := New("loud", "json")
	assert.Error(t, err)
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}
