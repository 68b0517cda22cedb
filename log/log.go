// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log is a small leveled-logging facade, reproducing the shape of
// github.com/saferwall/pe's own internal log package: a Logger interface,
// a level filter, and a Helper with per-level formatting methods.
package log

import (
	"fmt"
	"io"
	"sync"
)

// Level is a logging severity.
type Level int

// Levels, most to least verbose.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger logs a leveled message with alternating key/value pairs.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// StdLogger writes "level=X msg=Y k=v ..." lines to w.
type StdLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdLogger returns a Logger that writes to w.
func NewStdLogger(w io.Writer) *StdLogger {
	return &StdLogger{w: w}
}

// Log implements Logger.
func (l *StdLogger) Log(level Level, keyvals ...interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := fmt.Fprintf(l.w, "level=%s", level); err != nil {
		return err
	}
	for i := 0; i+1 < len(keyvals); i += 2 {
		if _, err := fmt.Fprintf(l.w, " %v=%v", keyvals[i], keyvals[i+1]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(l.w)
	return err
}

// Option configures a Filter.
type Option func(*Filter)

// FilterLevel sets the minimum level a Filter passes through.
func FilterLevel(level Level) Option {
	return func(f *Filter) { f.level = level }
}

// Filter wraps a Logger, dropping messages below a minimum level.
type Filter struct {
	logger Logger
	level  Level
}

// NewFilter returns a Filter over logger with the given options applied.
func NewFilter(logger Logger, opts ...Option) *Filter {
	f := &Filter{logger: logger, level: LevelInfo}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Log implements Logger.
func (f *Filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.level {
		return nil
	}
	return f.logger.Log(level, keyvals...)
}

// Helper wraps a Logger with printf-style convenience methods.
type Helper struct {
	logger Logger
}

// NewHelper returns a Helper over logger.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

// Debugf logs a formatted message at LevelDebug.
func (h *Helper) Debugf(format string, args ...interface{}) {
	_ = h.logger.Log(LevelDebug, "msg", fmt.Sprintf(format, args...))
}

// Infof logs a formatted message at LevelInfo.
func (h *Helper) Infof(format string, args ...interface{}) {
	_ = h.logger.Log(LevelInfo, "msg", fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at LevelWarn.
func (h *Helper) Warnf(format string, args ...interface{}) {
	_ = h.logger.Log(LevelWarn, "msg", fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at LevelError.
func (h *Helper) Errorf(format string, args ...interface{}) {
	_ = h.logger.Log(LevelError, "msg", fmt.Sprintf(format, args...))
}
