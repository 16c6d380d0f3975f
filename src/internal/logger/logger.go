// FILE: logship/src/internal/logger/logger.go
package logger

import (
	"fmt"

	"logship/src/internal/clock"
	"logship/src/internal/core"
)

// Emitter accepts finished events. *shipper.Shipper implements it.
type Emitter interface {
	Emit(event core.LogEvent)
}

// Fields carries the optional parts of a log call.
type Fields struct {
	// Properties attached to the event
	Properties map[string]any
	// Err fills the event's Exception
	Err error
	// Context properties; explicit Properties win on conflict
	Context map[string]any
}

// Logger builds LogEvents from application calls and hands them to an
// Emitter.
type Logger struct {
	emitter  Emitter
	clock    clock.Clock
	minLevel core.Level
	context  map[string]any
}

// Option customizes a Logger.
type Option func(*Logger)

// WithClock sets the timestamp source.
func WithClock(c clock.Clock) Option {
	return func(l *Logger) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithMinimumLevel discards calls below level.
func WithMinimumLevel(level core.Level) Option {
	return func(l *Logger) {
		l.minLevel = level
	}
}

// New creates a Logger writing to emitter.
func New(emitter Emitter, opts ...Option) *Logger {
	l := &Logger{
		emitter:  emitter,
		clock:    clock.Real(),
		minLevel: core.LevelVerbose,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// With returns a Logger that adds props to every event as context.
func (l *Logger) With(props map[string]any) *Logger {
	merged := make(map[string]any, len(l.context)+len(props))
	for k, v := range l.context {
		merged[k] = v
	}
	for k, v := range props {
		merged[k] = v
	}
	child := *l
	child.context = merged
	return &child
}

// Enabled reports whether events at level are kept.
func (l *Logger) Enabled(level core.Level) bool {
	return level >= l.minLevel
}

// Commit emits an event with the given properties as-is.
func (l *Logger) Commit(level core.Level, template string, properties map[string]any) {
	if !l.Enabled(level) || l.emitter == nil {
		return
	}
	l.emitter.Emit(core.NewEvent(l.clock.Now(), level, template, properties))
}

// Log merges fields into one event and emits it.
func (l *Logger) Log(level core.Level, template string, fields ...Fields) {
	if !l.Enabled(level) || l.emitter == nil {
		return
	}

	var f Fields
	for _, extra := range fields {
		f = mergeFields(f, extra)
	}

	event := core.NewEvent(l.clock.Now(), level, template, l.properties(f))
	if f.Err != nil {
		event.Exception = fmt.Sprintf("%+v", f.Err)
	}
	l.emitter.Emit(event)
}

func (l *Logger) Verbose(template string, fields ...Fields) {
	l.Log(core.LevelVerbose, template, fields...)
}

func (l *Logger) Debug(template string, fields ...Fields) {
	l.Log(core.LevelDebug, template, fields...)
}

func (l *Logger) Info(template string, fields ...Fields) {
	l.Log(core.LevelInformation, template, fields...)
}

func (l *Logger) Warn(template string, fields ...Fields) {
	l.Log(core.LevelWarning, template, fields...)
}

func (l *Logger) Error(template string, fields ...Fields) {
	l.Log(core.LevelError, template, fields...)
}

// Fatal emits at Fatal level. It does not exit the process.
func (l *Logger) Fatal(template string, fields ...Fields) {
	l.Log(core.LevelFatal, template, fields...)
}

// properties layers logger context, call context, the error type and
// explicit properties, later layers winning.
func (l *Logger) properties(f Fields) map[string]any {
	size := len(l.context) + len(f.Context) + len(f.Properties)
	if f.Err != nil {
		size++
	}
	if size == 0 {
		return nil
	}

	props := make(map[string]any, size)
	for k, v := range l.context {
		props[k] = v
	}
	for k, v := range f.Context {
		props[k] = v
	}
	if f.Err != nil {
		props["ErrorType"] = fmt.Sprintf("%T", f.Err)
	}
	for k, v := range f.Properties {
		props[k] = v
	}
	return props
}

func mergeFields(a, b Fields) Fields {
	if b.Err != nil {
		a.Err = b.Err
	}
	a.Properties = mergeMaps(a.Properties, b.Properties)
	a.Context = mergeMaps(a.Context, b.Context)
	return a
}

func mergeMaps(a, b map[string]any) map[string]any {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
