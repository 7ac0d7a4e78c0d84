package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitCreatesTimestampedLogFile(t *testing.T) {
	dir := t.TempDir()
	l := New(false)
	require.NoError(t, l.Init(dir))
	defer l.Close()

	l.Info("hello %s", "world")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, strings.HasPrefix(entries[0].Name(), "analysis_"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	require.Contains(t, string(data), "hello world")
}

func TestZeroValueLoggerIsConsoleOnly(t *testing.T) {
	l := New(false)
	require.NotPanics(t, func() {
		l.Info("no file open")
		l.Warn("still fine")
		l.Error("also fine")
		l.Debug("never printed without verbose")
	})
}

func TestWriterFallsBackToDiscardWithoutInit(t *testing.T) {
	l := New(false)
	n, err := l.Writer().Write([]byte("discarded"))
	require.NoError(t, err)
	require.Equal(t, len("discarded"), n)
}
