package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile_Success(t *testing.T) {
	path := writeFile(t, "enrich.yaml", `
provider: ollama
model: qwen3:0.6b
base_url: http://localhost:11434
temperature: 0
max_tokens: 200
timeout: 5s
workers: 4
requests_per_second: 2.5
column_candidates: [attribute, column_name]
`)
	f, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "ollama", f.Provider)
	require.Equal(t, "qwen3:0.6b", f.Model)
	require.NotNil(t, f.Temperature)
	require.Equal(t, 0.0, *f.Temperature)
	require.Equal(t, 200, f.MaxTokens)
	require.Equal(t, 5*time.Second, f.Timeout)
	require.Equal(t, 4, f.Workers)
	require.Equal(t, 2.5, f.RequestsPerSecond)
	require.Equal(t, []string{"attribute", "column_name"}, f.ColumnCandidates)
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile_BadYAML(t *testing.T) {
	path := writeFile(t, "bad.yaml", "workers: [oops")
	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestResolve_Defaults(t *testing.T) {
	s, err := Resolve(Overrides{}, &EnvVars{OpenAIAPIKey: "sk-env"}, nil)
	require.NoError(t, err)
	require.Equal(t, ProviderOpenAI, s.Provider)
	require.Equal(t, DefaultModel, s.Model)
	require.Equal(t, "sk-env", s.APIKey)
	require.Equal(t, DefaultTemperature, s.Temperature)
	require.Equal(t, DefaultMaxTokens, s.MaxTokens)
	require.Equal(t, DefaultWorkers, s.Workers)
	require.Equal(t, DefaultTimeout, s.Timeout)
	require.Zero(t, s.RequestsPerSecond)
}

func TestResolve_Precedence(t *testing.T) {
	temp := 0.1
	env := &EnvVars{OpenAIAPIKey: "sk-env", LLMModel: "env-model", Workers: 3}
	file := &File{Model: "file-model", Workers: 8, Temperature: &temp, RequestsPerSecond: 1}

	s, err := Resolve(Overrides{APIKey: "sk-flag", Workers: 2}, env, file)
	require.NoError(t, err)
	require.Equal(t, "sk-flag", s.APIKey)
	require.Equal(t, "env-model", s.Model)
	require.Equal(t, 2, s.Workers)
	require.Equal(t, 0.1, s.Temperature)
	require.Equal(t, 1.0, s.RequestsPerSecond)

	s, err = Resolve(Overrides{Model: "flag-model"}, env, file)
	require.NoError(t, err)
	require.Equal(t, "flag-model", s.Model)
	require.Equal(t, 3, s.Workers)
}

func TestResolve_MissingCredential(t *testing.T) {
	_, err := Resolve(Overrides{}, &EnvVars{}, nil)
	require.ErrorIs(t, err, ErrMissingCredential)

	_, err = Resolve(Overrides{Provider: "anthropic", Model: "claude-3-haiku-20240307"}, &EnvVars{OpenAIAPIKey: "sk"}, nil)
	require.ErrorIs(t, err, ErrMissingCredential)
}

func TestResolve_OllamaNeedsNoKey(t *testing.T) {
	s, err := Resolve(Overrides{}, &EnvVars{LLMProvider: "Ollama", LLMModel: "qwen3:0.6b"}, nil)
	require.NoError(t, err)
	require.Equal(t, ProviderOllama, s.Provider)
	require.Empty(t, s.APIKey)
}

func TestResolve_UnknownProvider(t *testing.T) {
	_, err := Resolve(Overrides{Provider: "bard", APIKey: "x"}, nil, nil)
	require.ErrorIs(t, err, ErrUnknownProvider)
}

func TestResolve_TemperatureOutOfRange(t *testing.T) {
	temp := 3.0
	_, err := Resolve(Overrides{APIKey: "x"}, nil, &File{Temperature: &temp})
	require.Error(t, err)
}

func TestLoadEnv_DotenvDoesNotOverride(t *testing.T) {
	path := writeFile(t, ".env", "OPENAI_API_KEY=sk-dotenv\nLLM_MODEL=gpt-4o-mini\n")
	t.Setenv("OPENAI_API_KEY", "sk-process")
	t.Setenv("LLM_MODEL", "")
	require.NoError(t, os.Unsetenv("LLM_MODEL"))

	env, err := LoadEnv(path)
	require.NoError(t, err)
	require.Equal(t, "sk-process", env.OpenAIAPIKey)
	require.Equal(t, "gpt-4o-mini", env.LLMModel)
}

func TestLoadEnv_MissingDotenvIsFine(t *testing.T) {
	t.Setenv("ENRICH_WORKERS", "6")
	env, err := LoadEnv(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	require.Equal(t, 6, env.Workers)
}

func TestLoadEnv_BadValue(t *testing.T) {
	t.Setenv("ENRICH_WORKERS", "many")
	_, err := LoadEnv(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
}
