package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("", true))
	assert.Equal(t, slog.LevelInfo, ParseLevel("", false))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN", true))
	assert.Equal(t, slog.LevelError, ParseLevel("error", false))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose", false))
}

func TestInitSetsDefault(t *testing.T) {
	Init(false, "warn", "")

	assert.NotNil(t, Log)
	assert.Same(t, Log, slog.Default())
}
