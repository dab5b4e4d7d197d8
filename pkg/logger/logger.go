package logger

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// Level mirrors slog levels with package-local names so callers don't
// import slog just to set verbosity.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var (
	levelVar = func() *slog.LevelVar {
		lv := &slog.LevelVar{}
		lv.Set(slog.LevelInfo)
		return lv
	}()
	current atomic.Pointer[slog.Logger]
)

func init() {
	current.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelVar,
	})))
}

// SetLevel adjusts the minimum level for all subsequent log calls.
func SetLevel(l Level) {
	switch l {
	case DEBUG:
		levelVar.Set(slog.LevelDebug)
	case INFO:
		levelVar.Set(slog.LevelInfo)
	case WARN:
		levelVar.Set(slog.LevelWarn)
	case ERROR:
		levelVar.Set(slog.LevelError)
	}
}

// SetOutput replaces the backing handler. Intended for tests.
func SetOutput(l *slog.Logger) {
	current.Store(l)
}

func logC(level slog.Level, component, msg string, fields map[string]any) {
	attrs := make([]any, 0, 2+2*len(fields))
	attrs = append(attrs, "component", component)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	current.Load().Log(context.Background(), level, msg, attrs...)
}

func DebugC(component, msg string) { logC(slog.LevelDebug, component, msg, nil) }
func InfoC(component, msg string)  { logC(slog.LevelInfo, component, msg, nil) }
func WarnC(component, msg string)  { logC(slog.LevelWarn, component, msg, nil) }
func ErrorC(component, msg string) { logC(slog.LevelError, component, msg, nil) }

func DebugCF(component, msg string, fields map[string]any) {
	logC(slog.LevelDebug, component, msg, fields)
}

func InfoCF(component, msg string, fields map[string]any) {
	logC(slog.LevelInfo, component, msg, fields)
}

func WarnCF(component, msg string, fields map[string]any) {
	logC(slog.LevelWarn, component, msg, fields)
}

func ErrorCF(component, msg string, fields map[string]any) {
	logC(slog.LevelError, component, msg, fields)
}
