package log

import "log/slog"

// LevelFromVerbosity converts a 0-5 CLI verbosity flag into an slog.Level:
// 0-1 map to error-only, 2 to warn, 3 to info, 4-5 to debug.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 1:
		return slog.LevelError
	case v == 2:
		return slog.LevelWarn
	case v == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
