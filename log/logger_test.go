package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCustomLogger(&buf, LogLevelWarn)

	logger.Debug("hidden %d", 1)
	logger.Info("hidden %d", 2)
	logger.Warn("shown %d", 3)
	logger.Error("shown %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown 3")
	assert.Contains(t, out, "[ERROR] shown 4")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":        LogLevelInfo,
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"warning": LogLevelWarn,
		" error ": LogLevelError,
		"none":    LogLevelNone,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "NONE", LogLevelNone.String())
	assert.Equal(t, "UNKNOWN(42)", LogLevel(42).String())
}

func TestPackageLogger(t *testing.T) {
	prev := GetDefaultLogger()
	defer SetDefaultLogger(prev)

	var buf bytes.Buffer
	SetDefaultLogger(NewCustomLogger(&buf, LogLevelDebug))

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")
	assert.Contains(t, buf.String(), "[DEBUG] d")
	assert.Contains(t, buf.String(), "[ERROR] e")

	SetDefaultLogger(nil)
	assert.IsType(t, NoOpLogger{}, GetDefaultLogger())

	var own bytes.Buffer
	mine := NewCustomLogger(&own, LogLevelInfo)
	assert.Same(t, mine, OrDefault(mine))
	assert.IsType(t, NoOpLogger{}, OrDefault(nil))
}
