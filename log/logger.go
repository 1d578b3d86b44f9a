// Package log provides structured JSON logging with call context.
//
// Logs go to stderr by default. Nothing here writes to stdout, which
// carries protocol envelopes.
package log

import (
	"io"
	"os"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pithecene-io/mangle/types"
)

// Logger writes JSON entries tagged with the call identity (key, language,
// file). Empty identity fields are omitted.
type Logger struct {
	zap  *zap.Logger
	meta *types.CallMeta
}

// NewLogger creates a logger with call context writing to os.Stderr.
func NewLogger(meta *types.CallMeta) *Logger {
	return newLoggerWithWriter(meta, os.Stderr)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// WithOutput returns a new logger with a different output writer.
// The call context is rebuilt on the new core.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	return newLoggerWithWriter(l.meta, w)
}

func newLoggerWithWriter(meta *types.CallMeta, w io.Writer) *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:     "timestamp",
			LevelKey:    "level",
			MessageKey:  "message",
			EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
			EncodeLevel: zapcore.LowercaseLevelEncoder,
		}),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)

	var identity []zap.Field
	if meta != nil {
		for _, f := range []struct{ key, value string }{
			{"key", meta.Key},
			{"language", meta.Language},
			{"file", meta.File},
		} {
			if f.value != "" {
				identity = append(identity, zap.String(f.key, f.value))
			}
		}
	}

	return &Logger{zap: zap.New(core).With(identity...), meta: meta}
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.zap.Debug(message, flatten(fields)...)
}

// Info logs an info message.
func (l *Logger) Info(message string, fields map[string]any) {
	l.zap.Info(message, flatten(fields)...)
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.zap.Warn(message, flatten(fields)...)
}

// Error logs an error message.
func (l *Logger) Error(message string, fields map[string]any) {
	l.zap.Error(message, flatten(fields)...)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// flatten turns a field bag into top-level zap fields in key order.
func flatten(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}
