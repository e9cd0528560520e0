package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogPath(t *testing.T) {
	path := DefaultLogPath()

	assert.Equal(t, "rmkgen.log", filepath.Base(path))
	assert.Contains(t, path, ".rmkgen")
}

func TestDebugConfig(t *testing.T) {
	cfg := DebugConfig()

	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, DefaultLogPath(), cfg.FilePath)
	assert.NotNil(t, cfg.Console)
}

func TestSetup_WritesJSONToFileAndConsole(t *testing.T) {
	// Given: a file path and a console buffer
	path := filepath.Join(t.TempDir(), "logs", "rmkgen.log")
	var console bytes.Buffer

	// When: logging through the configured logger
	logger, cleanup, err := Setup(Config{Level: "debug", FilePath: path, MaxSizeMB: 1, MaxFiles: 2, Console: &console})
	require.NoError(t, err)
	logger.Debug("resolve_complete", slog.Int("keys", 42))
	cleanup()

	// Then: both outputs carry the JSON record
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
	assert.Equal(t, "resolve_complete", rec["msg"])
	assert.EqualValues(t, 42, rec["keys"])
	assert.Contains(t, console.String(), "resolve_complete")
}

func TestSetup_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer

	logger, cleanup, err := Setup(Config{Level: "warn", Console: &console})
	require.NoError(t, err)
	defer cleanup()
	logger.Info("hidden")
	logger.Warn("template_cache_write_failed")

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "level=WARN")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestRotatingWriter_Rotation(t *testing.T) {
	// Given: a 1 MB writer keeping two rotated files
	path := filepath.Join(t.TempDir(), "rmkgen.log")
	w, err := NewRotatingWriter(path, 1, 2)
	require.NoError(t, err)
	defer w.Close()
	chunk := []byte(strings.Repeat("x", 600*1024))

	// When: writing four chunks
	for i := 0; i < 4; i++ {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}

	// Then: the current file and two rotations exist, nothing older
	assert.FileExists(t, path)
	assert.FileExists(t, path+".1")
	assert.FileExists(t, path+".2")
	assert.NoFileExists(t, path+".3")
}

func TestRotatingWriter_AppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rmkgen.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	w, err := NewRotatingWriter(path, 1, 1)
	require.NoError(t, err)
	_, err = w.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(data))
}

func TestRotatingWriter_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rmkgen.log")
	w, err := NewRotatingWriter(path, 1, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = w.Write([]byte("line\n"))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 400, strings.Count(string(data), "line\n"))
}

func TestRotatingWriter_CloseTwice(t *testing.T) {
	w, err := NewRotatingWriter(filepath.Join(t.TempDir(), "rmkgen.log"), 1, 1)
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Sync())
}
