// Package logging provides structured JSON logging for cmdgen components.
// Logs are off unless Configure is called; user-facing output goes through
// the render package, never through here.
package logging

import (
	"io"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// Configure sends JSON logs at or above level to w.
func Configure(w io.Writer, level zapcore.Level) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.MessageKey = "event"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), level)
	SetBase(zap.New(core))
}

// SetBase replaces the underlying zap logger (tests use an observer core).
func SetBase(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Logger provides structured logging for one component.
type Logger struct {
	component string
	requestID string
}

// New creates a new logger for a component
func New(component string) *Logger {
	return &Logger{component: component}
}

// WithRequestID sets the request context
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{
		component: l.component,
		requestID: id,
	}
}

func (l *Logger) fields(extra map[string]interface{}, err error) []zap.Field {
	fields := make([]zap.Field, 0, len(extra)+3)
	fields = append(fields, zap.String("component", l.component))
	if l.requestID != "" {
		fields = append(fields, zap.String("request_id", l.requestID))
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, extra[k]))
	}

	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	return fields
}

// Debug logs a debug event
func (l *Logger) Debug(event string, extra map[string]interface{}) {
	current().Debug(event, l.fields(extra, nil)...)
}

// Info logs an info event
func (l *Logger) Info(event string, extra map[string]interface{}) {
	current().Info(event, l.fields(extra, nil)...)
}

// Warn logs a warning event
func (l *Logger) Warn(event string, extra map[string]interface{}, err error) {
	current().Warn(event, l.fields(extra, err)...)
}

// Error logs an error event
func (l *Logger) Error(event string, extra map[string]interface{}, err error) {
	current().Error(event, l.fields(extra, err)...)
}

// TimedEvent logs an event with duration
func (l *Logger) TimedEvent(event string, start time.Time, extra map[string]interface{}) {
	fields := append(l.fields(extra, nil), zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	current().Info(event, fields...)
}
