package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerDefault(t *testing.T) {
	logger, err := New()
	require.NoError(t, err)
	logger.Info("to stderr")
	_ = logger.Sync()
}

func TestLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "duptrim.log")
	logger, err := New(
		WithoutLogToStderr(),
		WithPath(path),
	)
	require.NoError(t, err)

	logger.Info("to file")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "to file")
}

func TestLoggerNoOutput(t *testing.T) {
	_, err := New(WithoutLogToStderr())
	require.Error(t, err)
}

func TestLoggerInvalidPath(t *testing.T) {
	_, err := New(WithPath("/tmp/logs/"))
	require.Error(t, err)
}
