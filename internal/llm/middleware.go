package llm

import (
	"context"

	"arna/internal/llmclient"
)

// Middleware decorates an LLMClient to inject cross-cutting concerns
// (retries, logging).
type Middleware func(llmclient.LLMClient) llmclient.LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner llmclient.LLMClient, mws ...Middleware) llmclient.LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

type ctxKeyWorker struct{}

// WithWorker attaches a worker name to the context for log lines.
func WithWorker(ctx context.Context, worker string) context.Context {
	return context.WithValue(ctx, ctxKeyWorker{}, worker)
}

// WorkerFrom returns the worker string stored in the context.
func WorkerFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyWorker{}).(string); ok && v != "" {
		return v
	}
	return "-"
}
