// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger provides a thin wrapper around zerolog.Logger that adds
// convenience constructors and context-aware helpers used throughout the
// shift-calendar server.
//
// The Logger type embeds zerolog.Logger so all standard zerolog methods
// (Debug, Info, Warn, Error, Fatal, etc.) are available directly on *Logger.
// Application code should pass *Logger by pointer and obtain request-scoped
// loggers via FromContext or FromRequest.
package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger embeds zerolog.Logger and adds request and user scoped helpers.
type Logger struct {
	zerolog.Logger
}

type options struct {
	output io.Writer
	level  zerolog.Level
}

// Option customizes [NewLogger].
type Option func(*options)

// WithOutput redirects log output, which defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithLevel sets the global minimum level, which defaults to Debug.
func WithLevel(level zerolog.Level) Option {
	return func(o *options) { o.level = level }
}

// NewLogger constructs a JSON *Logger for the given role label
// (e.g. "shift-calendar-server").
//
// Every entry carries "role", a timestamp and a "func" caller field holding
// the fully-qualified function name instead of file:line.
func NewLogger(role string, opts ...Option) *Logger {
	o := options{output: os.Stdout, level: zerolog.DebugLevel}
	for _, opt := range opts {
		opt(&o)
	}

	zerolog.SetGlobalLevel(o.level)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}

	zerolog.CallerFieldName = "func"
	logger := zerolog.New(o.output).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}
}

// Nop returns a *Logger that discards all log output.
// It is intended for use in tests and other contexts where logging is
// undesirable or would produce noise.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger returns a new *Logger that inherits all fields of the
// receiver. The child logger can be enriched with additional context fields
// without affecting the parent logger.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// FromRequest extracts the zerolog.Logger stored in the request's context by
// zerolog's log.Ctx helper and returns it as a *Logger.
//
// This is typically used in HTTP middleware that has previously attached a
// request-scoped logger to the context via zerolog's WithContext.
func FromRequest(r *http.Request) *Logger {
	return &Logger{*log.Ctx(r.Context())}
}

// FromContext extracts the zerolog.Logger stored in ctx by zerolog's log.Ctx
// helper and returns it as a *Logger.
//
// If no logger has been attached to ctx, zerolog returns its global logger,
// so this function never returns nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

// ForUser returns a child logger tagged with "user_id". Calendar credential
// operations log through it; token values are never logged.
func (l *Logger) ForUser(userID int64) *Logger {
	return &Logger{l.With().Int64("user_id", userID).Logger()}
}
