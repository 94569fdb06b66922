// Package enrich turns a column name and optional sample values into a
// validated group, description and confidence by asking a completion service.
package enrich

import (
	"context"
	"strings"

	"github.com/ccastromar/dictionary-enricher/internal/llm"
	"github.com/ccastromar/dictionary-enricher/internal/logx"
	"github.com/ccastromar/dictionary-enricher/internal/metrics"
)

const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 300
)

type Options struct {
	Temperature float64
	MaxTokens   int
}

type Enricher struct {
	client llm.Completer
	opts   Options
}

func New(client llm.Completer, opts Options) *Enricher {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	return &Enricher{client: client, opts: opts}
}

// Enrich classifies one column. It never fails: any completion or validation
// error is logged and yields DefaultResult.
func (e *Enricher) Enrich(ctx context.Context, column string, samples []string) Result {
	if strings.TrimSpace(column) == "" {
		logx.Warn("Enricher", "empty column name, using default enrichment")
		return e.fallback()
	}

	reply, err := e.client.Complete(ctx, llm.Request{
		System:      SystemPrompt,
		Prompt:      BuildPrompt(column, samples),
		Temperature: e.opts.Temperature,
		MaxTokens:   e.opts.MaxTokens,
	})
	if err != nil {
		logx.Warn("Enricher", "error processing column '%s': %v", column, err)
		return e.fallback()
	}

	parsed, err := ParseReply(reply)
	if err != nil {
		// the reply itself is not logged; it may echo sample data
		logx.Warn("Enricher", "error parsing response for column '%s': %v", column, err)
		return e.fallback()
	}

	if parsed.GroupRejected {
		logx.Warn("Enricher", "invalid group '%s' for column '%s', defaulting to 'categorical'", parsed.RejectedGroup, column)
		metrics.Corrections.Inc(map[string]string{"kind": "group"})
	}
	if parsed.Clamped {
		metrics.Corrections.Inc(map[string]string{"kind": "confidence"})
	}
	metrics.Rows.Inc(map[string]string{"outcome": "enriched"})
	return parsed.Result
}

func (e *Enricher) fallback() Result {
	metrics.Rows.Inc(map[string]string{"outcome": "defaulted"})
	return DefaultResult()
}
