package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnst/pgq-consumer/internal/logger"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("verbose"))
}

func TestNew_JSONFormatFiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	log := logger.New(&buf, "warn", "json")
	log.Info("dropped")
	log.Warn("kept", slog.Int64("batch_id", 42))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.InDelta(t, 42, entry["batch_id"], 0)
}

func TestNew_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger.New(&buf, "debug", "text").Debug("attempt skipped")
	assert.Contains(t, buf.String(), "msg=\"attempt skipped\"")
}
