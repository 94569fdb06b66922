package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"

	DefaultProvider    = ProviderOpenAI
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 300
	DefaultTimeout     = 60 * time.Second
	DefaultWorkers     = 1
)

var (
	ErrMissingCredential = errors.New("API key not found")
	ErrUnknownProvider   = errors.New("unknown provider")
)

// File is the optional YAML run profile.
type File struct {
	Provider          string        `yaml:"provider"`
	Model             string        `yaml:"model"`
	BaseURL           string        `yaml:"base_url"`
	Temperature       *float64      `yaml:"temperature"`
	MaxTokens         int           `yaml:"max_tokens"`
	Timeout           time.Duration `yaml:"timeout"`
	Workers           int           `yaml:"workers"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	ColumnCandidates  []string      `yaml:"column_candidates"`
}

func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}

// Overrides carries values set explicitly on the command line. Zero means unset.
type Overrides struct {
	Provider          string
	Model             string
	APIKey            string
	BaseURL           string
	Workers           int
	RequestsPerSecond float64
}

// Settings is the fully resolved run configuration.
type Settings struct {
	Provider          string
	Model             string
	APIKey            string
	BaseURL           string
	Temperature       float64
	MaxTokens         int
	Timeout           time.Duration
	Workers           int
	RequestsPerSecond float64
	ColumnCandidates  []string
}

// Resolve merges flags, environment, config file and defaults, in that order of precedence.
// env and file may be nil.
func Resolve(o Overrides, env *EnvVars, file *File) (*Settings, error) {
	if env == nil {
		env = &EnvVars{}
	}
	if file == nil {
		file = &File{}
	}

	s := &Settings{
		Provider:          strings.ToLower(firstNonEmpty(o.Provider, env.LLMProvider, file.Provider, DefaultProvider)),
		BaseURL:           firstNonEmpty(o.BaseURL, env.LLMBaseURL, file.BaseURL),
		Temperature:       DefaultTemperature,
		MaxTokens:         firstPositive(file.MaxTokens, DefaultMaxTokens),
		Timeout:           firstPositiveDuration(env.LLMTimeout, file.Timeout, DefaultTimeout),
		Workers:           firstPositive(o.Workers, env.Workers, file.Workers, DefaultWorkers),
		RequestsPerSecond: firstPositiveFloat(o.RequestsPerSecond, env.RequestsPerSecond, file.RequestsPerSecond),
		ColumnCandidates:  file.ColumnCandidates,
	}
	if file.Temperature != nil {
		s.Temperature = *file.Temperature
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		return nil, fmt.Errorf("temperature %v out of range [0,2]", s.Temperature)
	}

	switch s.Provider {
	case ProviderOpenAI:
		s.APIKey = firstNonEmpty(o.APIKey, env.OpenAIAPIKey)
		s.Model = firstNonEmpty(o.Model, env.LLMModel, file.Model, DefaultModel)
		if s.APIKey == "" {
			return nil, fmt.Errorf("%w: set OPENAI_API_KEY or pass --api-key", ErrMissingCredential)
		}
	case ProviderAnthropic:
		s.APIKey = firstNonEmpty(o.APIKey, env.AnthropicAPIKey)
		s.Model = firstNonEmpty(o.Model, env.LLMModel, file.Model)
		if s.Model == "" {
			return nil, fmt.Errorf("provider %s requires a model (--model or LLM_MODEL)", s.Provider)
		}
		if s.APIKey == "" {
			return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or pass --api-key", ErrMissingCredential)
		}
	case ProviderOllama:
		s.APIKey = o.APIKey
		s.Model = firstNonEmpty(o.Model, env.LLMModel, file.Model)
		if s.Model == "" {
			return nil, fmt.Errorf("provider %s requires a model (--model or LLM_MODEL)", s.Provider)
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownProvider, s.Provider)
	}

	return s, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstPositiveFloat(vals ...float64) float64 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstPositiveDuration(vals ...time.Duration) time.Duration {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
