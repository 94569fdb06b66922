package llm

import (
	"fmt"

	"golang.org/x/time/rate"

	"github.com/ccastromar/dictionary-enricher/internal/config"
)

const (
	ProviderOpenAI    = config.ProviderOpenAI
	ProviderAnthropic = config.ProviderAnthropic
	ProviderOllama    = config.ProviderOllama
)

// New builds the completer for the resolved settings, rate limited when
// RequestsPerSecond is set.
func New(s *config.Settings) (Completer, error) {
	var c Completer
	switch s.Provider {
	case ProviderOpenAI:
		c = NewOpenAIClient(s.BaseURL, s.APIKey, s.Model, s.Timeout)
	case ProviderAnthropic:
		c = NewAnthropicClient(s.BaseURL, s.APIKey, s.Model, s.Timeout)
	case ProviderOllama:
		c = NewOllamaClient(s.BaseURL, s.Model, s.Timeout)
	default:
		return nil, fmt.Errorf("%w %q", config.ErrUnknownProvider, s.Provider)
	}

	if s.RequestsPerSecond > 0 {
		burst := s.Workers
		if burst < 1 {
			burst = 1
		}
		c = RateLimited(c, rate.NewLimiter(rate.Limit(s.RequestsPerSecond), burst))
	}
	return c, nil
}
