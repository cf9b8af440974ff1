package tools

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/fraud-detection-agent/server/internal/core/retry"
)

// retryTool decorates an invokable tool with its own bounded retry budget
// for transient failures. This is the inner of the two retry tiers; the
// node-level policy around the whole supervisor turn is independent.
type retryTool struct {
	inner  tool.InvokableTool
	policy retry.Policy
}

// WithRetry wraps the tool so each invocation gets up to maxRetries
// re-attempts after the first failure. Configuration errors are never
// retried.
func WithRetry(inner tool.InvokableTool, policy retry.Policy) tool.InvokableTool {
	return &retryTool{inner: inner, policy: policy}
}

func (t *retryTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return t.inner.Info(ctx)
}

func (t *retryTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	return retry.Do(ctx, t.policy, func(ctx context.Context) (string, error) {
		return t.inner.InvokableRun(ctx, argumentsInJSON, opts...)
	})
}
