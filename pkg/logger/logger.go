// Package logger provides component-scoped structured logging for the client.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	root = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()
)

// Setup reconfigures the root logger. Level accepts zerolog level names
// ("debug", "info", "warn", "error"); unknown values keep the default.
// A nil writer keeps stderr.
func Setup(level string, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	out := w
	if out == nil {
		out = io.Writer(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	l := zerolog.New(out).With().Timestamp().Logger()
	if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
		l = l.Level(parsed)
	} else {
		l = l.Level(zerolog.WarnLevel)
	}
	root = l
}

// Component returns a logger tagged with a component name, e.g. "client" or "widget".
func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With().Str("component", name).Logger()
}

// Discard silences all logging. Used by the TUI, which owns the terminal.
func Discard() {
	Setup("", io.Discard)
}
