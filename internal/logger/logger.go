// Package logger holds the process-wide zap logger. It discards everything
// until Init enables file logging.
package logger

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the global logger. It is a no-op until Init is called.
var L = zap.NewNop()

const (
	defaultPrefix = "webmap"
	logSuffix     = ".log"
	dateLayout    = "2006-01-02"
	retentionDays = 30
)

// Options configures Init.
type Options struct {
	Enabled bool          // If false, all logging is discarded
	LogDir  string        // Directory for log files. Default: ~/.webmap/logs
	Level   zapcore.Level // Minimum level. Default: Info
	Prefix  string        // File name prefix. Default: webmap
}

// Init configures logging. It returns the file being written so callers can
// print it; the path is empty when logging is disabled.
func Init(opts Options) (string, error) {
	if !opts.Enabled {
		L = zap.NewNop()
		return "", nil
	}

	logDir := opts.LogDir
	if logDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		logDir = filepath.Join(home, ".webmap", "logs")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", err
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	prefix += "-"

	// Best effort.
	cleanOldLogs(logDir, prefix, time.Now())

	filename := filepath.Join(logDir, prefix+time.Now().Format(dateLayout)+logSuffix)
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(f), opts.Level)
	L = zap.New(core)
	return filename, nil
}

// Sync flushes buffered entries.
func Sync() { _ = L.Sync() }

// cleanOldLogs removes log files older than retentionDays.
func cleanOldLogs(logDir, prefix string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		// webmap-2024-01-05.log
		dateStr := strings.TrimPrefix(strings.TrimSuffix(name, logSuffix), prefix)
		logDate, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			continue
		}
		if logDate.Before(cutoff) {
			os.Remove(filepath.Join(logDir, name))
		}
	}
}

// Named returns a child of L for a component.
func Named(name string) *zap.Logger { return L.Named(name) }

func Debug(msg string, fields ...zap.Field) { L.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L.Error(msg, fields...) }
