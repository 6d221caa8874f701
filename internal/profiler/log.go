package profiler

import "log/slog"

// LogCallback writes scope boundaries to a structured logger.
type LogCallback struct {
	logger *slog.Logger
}

// NewLogCallback returns a callback logging through l, or through
// slog.Default when l is nil.
func NewLogCallback(l *slog.Logger) *LogCallback {
	if l == nil {
		l = slog.Default()
	}
	return &LogCallback{logger: l}
}

func (lc *LogCallback) Begin(ev Event) {
	lc.logger.Debug("scope begin", "scope", ev.Name, "id", ev.ScopeID)
}

func (lc *LogCallback) End(ev Event) {
	lc.logger.Debug("scope end", "scope", ev.Name, "id", ev.ScopeID, "elapsed", ev.Elapsed)
}
