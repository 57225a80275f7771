package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// RunIDKey is the attribute that ties together the records of one run.
const RunIDKey = "run_id"

// redacted replaces the value of secretKeys in log arguments.
const redacted = "[REDACTED]"

var secretKeys = map[string]bool{"password": true, "new_password": true, "hash": true}

// RunLogger is a Logger bound to one run of the tool. Every record carries
// the run id, and values logged under secret keys are masked.
type RunLogger struct {
	l     *slog.Logger
	runID string
}

// NewRunLogger wraps l for the run runID; an empty runID gets a fresh UUID.
func NewRunLogger(l *slog.Logger, runID string) *RunLogger {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &RunLogger{l: l.With(RunIDKey, runID), runID: runID}
}

// RunID returns the id stamped on every record.
func (r *RunLogger) RunID() string {
	return r.runID
}

func (r *RunLogger) Debug(ctx context.Context, msg string, args ...any) {
	r.log(ctx, slog.LevelDebug, msg, args)
}

func (r *RunLogger) Info(ctx context.Context, msg string, args ...any) {
	r.log(ctx, slog.LevelInfo, msg, args)
}

func (r *RunLogger) Warn(ctx context.Context, msg string, args ...any) {
	r.log(ctx, slog.LevelWarn, msg, args)
}

func (r *RunLogger) Error(ctx context.Context, msg string, args ...any) {
	r.log(ctx, slog.LevelError, msg, args)
}

func (r *RunLogger) With(args ...any) Logger {
	return &RunLogger{l: r.l.With(redact(args)...), runID: r.runID}
}

func (r *RunLogger) log(ctx context.Context, level slog.Level, msg string, args []any) {
	if !r.l.Enabled(ctx, level) {
		return
	}
	r.l.Log(ctx, level, msg, redact(args)...)
}

// redact returns args with the values of secret keys masked. args is not
// modified.
func redact(args []any) []any {
	var out []any
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || !secretKeys[key] {
			continue
		}
		if out == nil {
			out = append([]any(nil), args...)
		}
		out[i+1] = redacted
	}
	if out == nil {
		return args
	}
	return out
}
