package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type EnvVars struct {
	AppEnv   string `envconfig:"APP_ENV" default:"prod"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`

	LLMProvider string        `envconfig:"LLM_PROVIDER"`
	LLMBaseURL  string        `envconfig:"LLM_BASE_URL"`
	LLMModel    string        `envconfig:"LLM_MODEL"`
	LLMTimeout  time.Duration `envconfig:"LLM_TIMEOUT"`

	Workers           int     `envconfig:"ENRICH_WORKERS"`
	RequestsPerSecond float64 `envconfig:"ENRICH_RPS"`
}

// LoadEnv reads an optional .env file (existing variables win) and then the process environment.
func LoadEnv(dotenvPaths ...string) (*EnvVars, error) {
	if err := godotenv.Load(dotenvPaths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var v EnvVars
	if err := envconfig.Process("", &v); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &v, nil
}
