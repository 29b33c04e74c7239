package segmo

import (
	"log/slog"

	"github.com/gogpu/segmo/internal/obslog"
)

// SetLogger configures the logger for segmo and all its sub-packages.
// By default, segmo produces no log output. Pass nil to restore the
// silent default.
//
// Log levels:
//   - [slog.LevelDebug]: per-stage pipeline timings, tier transitions
//   - [slog.LevelInfo]: init/capability events, tier changes
//   - [slog.LevelWarn]: recoverable errors (producer failure, worker
//     init fallback, dropped frames)
func SetLogger(l *slog.Logger) { obslog.Set(l) }

// Logger returns the current logger used by segmo.
func Logger() *slog.Logger { return obslog.Get() }
