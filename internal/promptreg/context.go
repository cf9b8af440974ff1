package promptreg

import (
	"context"

	errx "github.com/fraud-detection-agent/server/internal/core/error"
)

type ctxKey struct{}

// WithClient attaches the shared registry handle to the context so tools
// invoked mid-turn can re-fetch their own sub-prompts.
func WithClient(ctx context.Context, r Registry) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// FromContext returns the registry handle attached to the invocation
// context. A missing handle is a configuration error: fatal, not retried.
func FromContext(ctx context.Context) (Registry, error) {
	r, ok := ctx.Value(ctxKey{}).(Registry)
	if !ok || r == nil {
		return nil, errx.NewConfiguration("prompt registry client missing from invocation context")
	}
	return r, nil
}
