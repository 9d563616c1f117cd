package logger

import (
	"time"

	"github.com/hpdcache/flistflat/internal/flist"
)

// Logger is the full logging surface used by the command layer.
type Logger interface {
	flist.Logger
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogSummary(root string, result *flist.Result, duration time.Duration)
}

// MultiLogger fans every call out to a list of loggers.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines loggers. Nil entries are dropped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) LogTrace(message string) {
	for _, l := range m.loggers {
		l.LogTrace(message)
	}
}

func (m *MultiLogger) LogDebug(message string) {
	for _, l := range m.loggers {
		l.LogDebug(message)
	}
}

func (m *MultiLogger) LogInfo(message string) {
	for _, l := range m.loggers {
		l.LogInfo(message)
	}
}

func (m *MultiLogger) LogWarn(message string) {
	for _, l := range m.loggers {
		l.LogWarn(message)
	}
}

func (m *MultiLogger) LogError(message string) {
	for _, l := range m.loggers {
		l.LogError(message)
	}
}

func (m *MultiLogger) LogSummary(root string, result *flist.Result, duration time.Duration) {
	for _, l := range m.loggers {
		l.LogSummary(root, result, duration)
	}
}
