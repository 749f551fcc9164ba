package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&Config{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Info("model trained",
		String("crop", "tomato"),
		Int("points", 24),
		Float("bic", 181.5),
		Bool("seasonal", false),
		Duration("took", 1500*time.Millisecond),
		Strings("sources", []string{"a.csv", "b.csv"}),
		Error(errors.New("boom")),
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "model trained", entry["message"])
	assert.Equal(t, "tomato", entry["crop"])
	assert.Equal(t, 24.0, entry["points"])
	assert.Equal(t, 181.5, entry["bic"])
	assert.Equal(t, false, entry["seasonal"])
	assert.Equal(t, 1500.0, entry["took"])
	assert.Equal(t, "a.csv, b.csv", entry["sources"])
	assert.Equal(t, "boom", entry["error"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&Config{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "shown")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&Config{Format: "json"}, &buf)
	require.NoError(t, err)

	log.With(String("run_id", "r-1")).Error("failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "r-1", entry["run_id"])
	assert.Equal(t, "error", entry["level"])
}

func TestInvalidLevel(t *testing.T) {
	_, err := NewWithWriter(&Config{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricecast.log")
	log, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)
	log.Info("hello")
	assert.FileExists(t, path)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error("nothing", String("k", "v"))
	})
}
