package logger

import (
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Record is one structured log line: a fixed core plus free-form attributes.
// Attrs never override the core keys.
type Record struct {
	Level     zapcore.Level
	Message   string
	RequestID string
	Method    string
	Path      string
	Status    int
	Latency   time.Duration
	Attrs     map[string]any
}

var coreKeys = map[string]struct{}{
	"rid": {}, "method": {}, "path": {}, "status": {}, "latency": {},
}

func (r Record) Fields() []zap.Field {
	fields := []zap.Field{
		zap.String("rid", r.RequestID),
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.Int("status", r.Status),
		zap.Duration("latency", r.Latency),
	}
	keys := make([]string, 0, len(r.Attrs))
	for k := range r.Attrs {
		if _, reserved := coreKeys[k]; !reserved {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, r.Attrs[k]))
	}
	return fields
}

func (r Record) Write(l *zap.Logger) {
	if ce := l.Check(r.Level, r.Message); ce != nil {
		ce.Write(r.Fields()...)
	}
}
