package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Go_and_buy_the_drink", sanitize("Go and buy the drink."))
	assert.Equal(t, "task", sanitize("!!!"))
	assert.Len(t, sanitize(string(make([]byte, 200))+"abc"), 3)

	long := ""
	for i := 0; i < 100; i++ {
		long += "a"
	}
	assert.Len(t, sanitize(long), 60)
}

func TestLoggerAdapter_WritesJSONFile(t *testing.T) {
	dir := t.TempDir()

	log, err := NewLoggerAdapter(Config{Dir: dir, Level: "debug", TaskName: "buy drink"})
	require.NoError(t, err)

	log.With("component", "runner").Info("Run started", "task", "buy drink")
	log.Debug("debug entry")
	require.NoError(t, log.Close())
	require.NoError(t, log.Close(), "second close is a no-op")

	files, err := filepath.Glob(filepath.Join(dir, "*_buy_drink.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	f, err := os.Open(files[0])
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}

	require.Len(t, entries, 2)
	assert.Equal(t, "Run started", entries[0]["message"])
	assert.Equal(t, "runner", entries[0]["component"])
	assert.Equal(t, "buy drink", entries[0]["task"])
	assert.Equal(t, "info", entries[0]["level"])
	assert.Contains(t, entries[0], "timestamp")
}

func TestLoggerAdapter_LevelFilter(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := NewWithCore(core)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown", "k", 1)
	log.With("step", 2).Error("shown too")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
	assert.Equal(t, int64(2), logs.All()[1].ContextMap()["step"])
}

func TestLoggerAdapter_Named(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	NewWithCore(core).Named("agent").Info("Executing tool", "name", "click")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "agent", logs.All()[0].LoggerName)
	assert.Equal(t, "click", logs.All()[0].ContextMap()["name"])
}

func TestNewLoggerAdapter_NoSinksIsNop(t *testing.T) {
	log, err := NewLoggerAdapter(Config{})
	require.NoError(t, err)
	log.Info("dropped")
	assert.NoError(t, log.Close())
}
