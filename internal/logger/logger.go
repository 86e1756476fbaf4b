// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the leveled, structured logger used throughout
// kubefuse, backed by log/slog. The severity ladder (TRACE, DEBUG, INFO,
// WARNING, ERROR, OFF) is one step finer than slog's four built-in
// levels, so TRACE maps to the custom level slog.LevelDebug-1, and every
// record carries a "severity" attribute with the precise label.
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

// Severity is kubefuse's logging severity, ordered from most to least
// verbose.
type Severity string

const (
	SeverityTrace   Severity = "TRACE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
	SeverityOff     Severity = "OFF"
)

var slogLevelFor = map[Severity]slog.Level{
	SeverityTrace:   slog.LevelDebug - 1,
	SeverityDebug:   slog.LevelDebug,
	SeverityInfo:    slog.LevelInfo,
	SeverityWarning: slog.LevelWarn,
	SeverityError:   slog.LevelError,
	SeverityOff:     slog.LevelError + 100,
}

var (
	programLevel  = new(slog.LevelVar)
	defaultLogger = slog.New(newHandler(os.Stderr, programLevel, "text"))
)

func newHandler(w io.Writer, level *slog.LevelVar, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Init (re)configures the default logger's severity, output format
// ("text" or "json"), and destination. dest of nil writes to os.Stderr.
func Init(severity Severity, format string, dest io.Writer) {
	if dest == nil {
		dest = os.Stderr
	}
	level, ok := slogLevelFor[severity]
	if !ok {
		level = slog.LevelInfo
	}
	programLevel.Set(level)
	defaultLogger = slog.New(newHandler(dest, programLevel, format))
}

func log2(ctx context.Context, severity Severity, msg string, args ...any) {
	level := slogLevelFor[severity]
	if !defaultLogger.Enabled(ctx, level) {
		return
	}
	args = append([]any{"severity", string(severity)}, args...)
	defaultLogger.Log(ctx, level, msg, args...)
}

func Tracef(format string, args ...any)   { log2(context.Background(), SeverityTrace, sprintf(format, args...)) }
func Debugf(format string, args ...any)   { log2(context.Background(), SeverityDebug, sprintf(format, args...)) }
func Infof(format string, args ...any)    { log2(context.Background(), SeverityInfo, sprintf(format, args...)) }
func Warnf(format string, args ...any)    { log2(context.Background(), SeverityWarning, sprintf(format, args...)) }
func Errorf(format string, args ...any)   { log2(context.Background(), SeverityError, sprintf(format, args...)) }

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// NewStdLogger returns a *log.Logger that forwards every line it receives
// to the default logger at the given severity, with prefix prepended to
// the message. This bridges jacobsa/fuse's *log.Logger-shaped
// MountConfig.ErrorLogger/DebugLogger hooks into kubefuse's structured
// logger, the same bridging role the teacher's logger.NewLegacyLogger
// plays for gcsfuse.
func NewStdLogger(severity Severity, prefix string) *log.Logger {
	return log.New(&severityWriter{severity: severity, prefix: prefix}, "", 0)
}

// severityWriter adapts io.Writer (what *log.Logger writes to) onto the
// structured logger, forwarding each write as one log line.
type severityWriter struct {
	severity Severity
	prefix   string
}

func (w *severityWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	log2(context.Background(), w.severity, w.prefix+msg)
	return len(p), nil
}
