package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hpdcache/flistflat/internal/flist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileLogger(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	fl, err := NewFileLogger(logDir, "debug")
	require.NoError(t, err)
	defer fl.Close()

	_, err = uuid.Parse(fl.RunID())
	assert.NoError(t, err, "run ID should be a UUID")

	assert.FileExists(t, fl.Path())
	assert.True(t, strings.HasPrefix(filepath.Base(fl.Path()), "run-"))

	target, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(fl.Path()), target)
}

func TestFileLoggerWritesLevelsAndSummary(t *testing.T) {
	logDir := t.TempDir()

	fl, err := NewFileLogger(logDir, "info")
	require.NoError(t, err)

	fl.LogDebug("filtered out")
	fl.LogInfo("resolving top.f")
	fl.LogSummary("top.f", &flist.Result{
		Commands: 1,
		Files: []flist.FileVisit{
			{Path: "/rtl/top.f", Depth: 0},
			{Path: "/rtl/sub.f", Depth: 1},
		},
		Skipped: []flist.SkippedLine{{File: "/rtl/sub.f", Line: 4, Text: "defs.svh"}},
	}, time.Millisecond)
	require.NoError(t, fl.Close())

	data, err := os.ReadFile(fl.Path())
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "Run ID: "+fl.RunID())
	assert.Contains(t, content, "[INFO] resolving top.f")
	assert.NotContains(t, content, "filtered out")
	assert.Contains(t, content, "Commands: 1")
	assert.Contains(t, content, "    /rtl/sub.f")
	assert.Contains(t, content, "/rtl/sub.f:4: defs.svh")
}

func TestFileLoggerReplacesLatestSymlink(t *testing.T) {
	logDir := t.TempDir()

	first, err := NewFileLogger(logDir, "info")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewFileLogger(logDir, "info")
	require.NoError(t, err)
	defer second.Close()

	assert.NotEqual(t, first.Path(), second.Path())
	target, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(second.Path()), target)
}

func TestFileLoggerCloseIsIdempotent(t *testing.T) {
	fl, err := NewFileLogger(t.TempDir(), "info")
	require.NoError(t, err)
	require.NoError(t, fl.Close())
	require.NoError(t, fl.Close())
	fl.LogError("after close is dropped")
}

func TestMultiLogger(t *testing.T) {
	a, b := &bytes.Buffer{}, &bytes.Buffer{}
	m := NewMultiLogger(NewConsoleLogger(a, "trace"), nil, NewConsoleLogger(b, "warn"))

	m.LogTrace("t")
	m.LogDebug("d")
	m.LogInfo("i")
	m.LogWarn("w")
	m.LogError("e")
	m.LogSummary("root.f", &flist.Result{}, time.Millisecond)

	assert.Equal(t, 6, strings.Count(a.String(), "\n"))
	assert.Equal(t, 2, strings.Count(b.String(), "\n"))
}
