// Package logging defines the structured-logging interface used across the
// service, with log/slog and zap implementations.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are key-value pairs:
//
//	log.Info(ctx, "user logged in", "user_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

const (
	BackendZap  = "zap"
	BackendSlog = "slog"
)

// New builds a Logger for the configured backend writing to stdout.
func New(backend, level, environment string) (Logger, error) {
	return newWithWriter(os.Stdout, backend, level, environment)
}

func newWithWriter(w io.Writer, backend, level, environment string) (Logger, error) {
	switch backend {
	case BackendZap, "":
		return NewZapLogger(w, level, environment), nil
	case BackendSlog:
		return NewSlogJSONLogger(w, level), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(context.Context, string, ...any) {}
func (Nop) Info(context.Context, string, ...any)  {}
func (Nop) Warn(context.Context, string, ...any)  {}
func (Nop) Error(context.Context, string, ...any) {}
func (n Nop) With(...any) Logger                  { return n }
