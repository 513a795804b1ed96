package types

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	containerKey contextKey = "container"
)

// WithRunID returns a context carrying the run correlation identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithContainer returns a context carrying the container being harvested.
func WithContainer(ctx context.Context, container string) context.Context {
	return context.WithValue(ctx, containerKey, container)
}

// ContextFields extracts the correlation values loggers attach to every entry.
func ContextFields(ctx context.Context) Fields {
	fields := Fields{}
	if ctx == nil {
		return fields
	}
	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields["run_id"] = runID
	}
	if container, ok := ctx.Value(containerKey).(string); ok && container != "" {
		fields["container"] = container
	}
	return fields
}
