package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
)

// Init configures the global slog logger.
// In production it uses JSON output for log aggregation (CloudWatch),
// otherwise the human-readable text handler.
func Init(production bool) {
	slog.SetDefault(slog.New(newHandler(os.Stdout, production)))
	log.SetFlags(0)
}

func newHandler(w io.Writer, production bool) slog.Handler {
	if production {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
}

// WithRun returns a logger with run context fields attached.
// Use this for all logging within a single briefing run.
func WithRun(runID, trigger string) *slog.Logger {
	return slog.With(
		"run_id", runID,
		"trigger", trigger,
	)
}
