package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldTraceID is the standardized structured logging key for resolution trace identifiers.
	FieldTraceID = "trace_id"
	// FieldTemplate is the standardized structured logging key for template names.
	FieldTemplate = "template"
	// FieldEntityType is the standardized structured logging key for tracker entity types.
	FieldEntityType = "entity_type"
	// FieldPath is the standardized structured logging key for filesystem paths.
	FieldPath = "path"
)

type traceIDKey struct{}

// WithTraceID stores a resolution trace identifier on the context.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceIDFromContext retrieves the resolution trace identifier, if any.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(traceIDKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns a logger augmented with structured fields derived
// from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := TraceIDFromContext(ctx); ok {
		return logger.With(String(FieldTraceID, id))
	}
	return logger
}
