package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/victorsole/brubru/pkg/orchestrator"
)

// logTimeFormat renders CLI log timestamps as e.g. "14:32:01.45".
const logTimeFormat = "15:04:05.00"

// newLogger returns the CLI logger: timestamped lines on w at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// stopwatch times one command and logs its outcome as structured fields.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, start: time.Now()}
}

func (s stopwatch) elapsed() time.Duration {
	return time.Since(s.start).Round(time.Millisecond)
}

// done logs msg with keyvals and an elapsed field.
func (s stopwatch) done(msg string, keyvals ...any) {
	s.logger.Info(msg, append(keyvals, "elapsed", s.elapsed())...)
}

// batch logs the tally of a fan-out. A failed source raises the line to Warn.
func (s stopwatch) batch(msg string, resp orchestrator.AggregatedResponse) {
	kv := []any{
		"request_id", resp.RequestID,
		"sources", resp.TotalSourcesRequested,
		"successful", resp.Successful,
		"failed", resp.Failed,
		"elapsed", s.elapsed(),
	}
	if resp.Failed > 0 {
		s.logger.Warn(msg, kv...)
		return
	}
	s.logger.Info(msg, kv...)
}

type loggerKey struct{}

// withLogger attaches l to ctx so serve can hand it to the HTTP server.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger set by withLogger, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
