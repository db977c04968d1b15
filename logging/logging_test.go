package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/pagegrab/config"
)

func TestInitJSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Init(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	slog.Info("dropped")
	slog.Warn("kept", "url", "https://example.com")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "https://example.com", rec["url"])
}

func TestInitText(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger := Init(config.LogConfig{Level: "DEBUG", Format: "text"}, &buf)
	logger.Debug("hello")
	assert.Contains(t, buf.String(), "level=DEBUG msg=hello")
}
