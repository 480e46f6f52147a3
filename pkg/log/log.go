// Package log configures structured logging for the fix-descriptor
// toolchain on top of log/slog. Subsystems hold *slog.Logger directly:
// they obtain a module-tagged child of the process-wide logger via
// Module, and the CLI installs its own logger with SetDefault once the
// verbosity flag is known.
package log

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu   sync.RWMutex
	root = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// New returns a logger writing JSON records to w at the level implied by
// the 0-5 verbosity scale.
func New(w io.Writer, verbosity int) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: LevelFromVerbosity(verbosity)})
	return slog.New(h)
}

// SetDefault replaces the process-wide logger. A nil logger is ignored.
func SetDefault(l *slog.Logger) {
	if l == nil {
		return
	}
	mu.Lock()
	root = l
	mu.Unlock()
}

// Default returns the process-wide logger.
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Module returns a child of the process-wide logger carrying a "module"
// attribute, so each subsystem (sbeschema, sbe, merkle, ...) tags its own
// log lines.
func Module(name string) *slog.Logger {
	return Default().With("module", name)
}
