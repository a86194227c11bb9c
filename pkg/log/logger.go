package log

import "time"

// Logger provides structured logging capabilities.
// Implementations can wrap zerolog or any other logging library.
type Logger interface {
	// Debug logs a debug-level message with fields.
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with fields.
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with fields.
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with fields.
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Time creates a time field.
func Time(key string, value time.Time) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with key "error".
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a field with any value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Component returns a logger that tags every message with component=name.
// Loggers that do not support child loggers are wrapped.
func Component(l Logger, name string) Logger {
	if l == nil {
		return NewNoopLogger()
	}
	if w, ok := l.(interface{ With(...Field) Logger }); ok {
		return w.With(String("component", name))
	}
	return &tagged{next: l, fields: []Field{String("component", name)}}
}

type tagged struct {
	next   Logger
	fields []Field
}

func (t *tagged) Debug(msg string, fields ...Field) { t.next.Debug(msg, t.merge(fields)...) }
func (t *tagged) Info(msg string, fields ...Field)  { t.next.Info(msg, t.merge(fields)...) }
func (t *tagged) Warn(msg string, fields ...Field)  { t.next.Warn(msg, t.merge(fields)...) }
func (t *tagged) Error(msg string, fields ...Field) { t.next.Error(msg, t.merge(fields)...) }

func (t *tagged) merge(fields []Field) []Field {
	out := make([]Field, 0, len(t.fields)+len(fields))
	out = append(out, t.fields...)
	return append(out, fields...)
}
