package llm

import (
	"context"
	"time"

	"github.com/ccastromar/dictionary-enricher/internal/metrics"
)

// Request is a single chat-style completion.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer sends a prompt to a text-completion service and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

func observe(provider string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.LLMCalls.Inc(map[string]string{"provider": provider, "outcome": outcome})
	metrics.LLMCallDur.Observe(map[string]string{"provider": provider, "outcome": outcome}, time.Since(start).Seconds())
}
