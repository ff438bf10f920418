package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit_Disabled(t *testing.T) {
	path, err := Init(Options{})
	require.NoError(t, err)
	assert.Empty(t, path)
	Info("dropped")
}

func TestInit_WritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { L = zap.NewNop() })

	path, err := Init(Options{Enabled: true, LogDir: dir, Level: zapcore.DebugLevel, Prefix: "svc"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "svc-"+time.Now().Format(dateLayout)+".log"), path)

	Debug("hello", zap.Int("n", 3))
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"n":3`)
}

func TestCleanOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	files := map[string]bool{
		"webmap-2024-01-01.log": false, // expired
		"webmap-2024-03-30.log": true,
		"webmap-notadate.log":   true,
		"other-2024-01-01.log":  true,
	}
	for name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	cleanOldLogs(dir, "webmap-", now)

	for name, keep := range files {
		_, err := os.Stat(filepath.Join(dir, name))
		if keep {
			assert.NoError(t, err, name)
		} else {
			assert.True(t, os.IsNotExist(err), name)
		}
	}
}
