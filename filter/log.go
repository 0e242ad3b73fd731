package filter

import "log/slog"

var logger = slog.Default()

// SetLogger replaces the logger used to report skipped joins.
// A nil logger restores slog.Default().
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	logger = l
}
