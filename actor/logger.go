package actor

import "log/slog"

// logger is the package-wide logger execution contexts derive theirs from.
var logger = slog.Default()

// SetLogger overrides the package logger. If not set, slog.Default() is used.
// Contexts spawned with WithLogger ignore it.
func SetLogger(l *slog.Logger) {
	logger = l
}
