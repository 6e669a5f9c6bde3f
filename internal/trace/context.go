package trace

import "context"

type (
	tracerKey struct{}
	parentKey struct{}
)

// WithTracer attaches t to ctx.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// ParentOf returns the id of the innermost span opened with Start, 0 if none.
func ParentOf(ctx context.Context) uint64 {
	if ctx != nil {
		if id, ok := ctx.Value(parentKey{}).(uint64); ok {
			return id
		}
	}
	return 0
}

// Start opens a span under the span carried by ctx and returns a context in
// which the new span is the parent. A filtered-out span leaves ctx as is.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	s := Begin(FromContext(ctx), scope, name, ParentOf(ctx))
	if s.ID() == 0 {
		return ctx, s
	}
	return context.WithValue(ctx, parentKey{}, s.ID()), s
}
