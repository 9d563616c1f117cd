// Package updater replaces generated scripts on disk under a file lock.
//
// Example:
//
//	err := updater.WriteScript("synth/read.ys", data,
//	    updater.WithTimeout(2*time.Second),
//	    updater.WithMonitor(func(m updater.UpdateMetrics) { log.Printf("%+v", m) }))
//
// WriteScript acquires the output's lock, compares the new content with
// what is already on disk and writes only when they differ, so tools that
// watch the script's mtime are not retriggered by a no-op run.
package updater

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hpdcache/flistflat/internal/filelock"
)

// UpdateMonitor receives metrics after each write attempt.
type UpdateMonitor func(UpdateMetrics)

// UpdateMetrics describes one WriteScript call.
type UpdateMetrics struct {
	Path         string
	BytesWritten int
	Unchanged    bool
	LockWait     time.Duration
	Duration     time.Duration
	Err          error
}

type options struct {
	timeout time.Duration
	monitor UpdateMonitor
}

// Option configures WriteScript.
type Option func(*options)

// WithTimeout bounds the wait for the output lock. Zero waits forever.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithMonitor registers a callback invoked with the metrics of the call.
func WithMonitor(m UpdateMonitor) Option {
	return func(o *options) {
		o.monitor = m
	}
}

// WriteScript writes data to path atomically while holding the path's lock.
// The file is left untouched when it already holds data.
func WriteScript(path string, data []byte, opts ...Option) error {
	config := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&config)
		}
	}

	metrics := UpdateMetrics{Path: path}
	start := time.Now()
	defer func() {
		metrics.Duration = time.Since(start)
		if config.monitor != nil {
			config.monitor(metrics)
		}
	}()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		metrics.Err = fmt.Errorf("failed to create directory for %s: %w", path, err)
		return metrics.Err
	}

	lock := filelock.NewFileLock(filelock.LockPath(path))
	var lockErr error
	if config.timeout > 0 {
		lockErr = lock.LockWithTimeout(config.timeout)
	} else {
		lockErr = lock.Lock()
	}
	metrics.LockWait = time.Since(start)
	if lockErr != nil {
		metrics.Err = lockErr
		return lockErr
	}
	defer lock.Unlock()

	current, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(current, data):
		metrics.Unchanged = true
		return nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		metrics.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return metrics.Err
	}

	if err := filelock.AtomicWrite(path, data); err != nil {
		metrics.Err = err
		return err
	}

	metrics.BytesWritten = len(data)
	return nil
}
