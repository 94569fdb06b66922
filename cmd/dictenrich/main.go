package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccastromar/dictionary-enricher/internal/app"
	"github.com/ccastromar/dictionary-enricher/internal/config"
	"github.com/ccastromar/dictionary-enricher/internal/enrich"
	"github.com/ccastromar/dictionary-enricher/internal/llm"
	"github.com/ccastromar/dictionary-enricher/internal/logx"
	"github.com/ccastromar/dictionary-enricher/internal/metrics"
)

// runner is the minimal interface our app must satisfy for running.
type runner interface {
	Run(context.Context) (*app.Summary, error)
}

// appCtor is a constructor indirection to enable testing without calling a real LLM.
var appCtor = func(s *config.Settings, opts app.Options) (runner, error) {
	client, err := llm.New(s)
	if err != nil {
		return nil, err
	}
	return app.New(opts, client, enrich.Options{
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	}), nil
}

func newRootCmd() *cobra.Command {
	var (
		output      string
		apiKey      string
		model       string
		sampleData  string
		provider    string
		baseURL     string
		configPath  string
		workers     int
		rps         float64
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:           "dictenrich INPUT_CSV",
		Short:         "Enrich a data dictionary CSV using an LLM",
		Long:          "Adds group, description and confidence columns to a data dictionary CSV by asking an LLM about each column name.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]

			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			logx.Init(env.LogLevel)
			defer logx.Sync()

			var file *config.File
			if configPath != "" {
				if file, err = config.LoadFile(configPath); err != nil {
					return err
				}
			}

			settings, err := config.Resolve(config.Overrides{
				Provider:          provider,
				Model:             model,
				APIKey:            apiKey,
				BaseURL:           baseURL,
				Workers:           workers,
				RequestsPerSecond: rps,
			}, env, file)
			if err != nil {
				return err
			}

			if output == "" {
				output = app.DefaultOutputPath(input)
			}

			r, err := appCtor(settings, app.Options{
				InputPath:        input,
				OutputPath:       output,
				SampleDataPath:   sampleData,
				Model:            settings.Provider + "/" + settings.Model,
				Workers:          settings.Workers,
				ColumnCandidates: settings.ColumnCandidates,
			})
			if err != nil {
				return err
			}

			sum, err := r.Run(cmd.Context())
			if showMetrics {
				metrics.Write(cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Enriched %d columns. Output saved to: %s\n", sum.Rows, sum.OutputPath)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "path to output enriched CSV file (default: <input>_enriched.csv)")
	f.StringVarP(&apiKey, "api-key", "k", "", "LLM API key (or set OPENAI_API_KEY / ANTHROPIC_API_KEY)")
	f.StringVarP(&model, "model", "m", "", "model to use (default: "+config.DefaultModel+" for openai)")
	f.StringVarP(&sampleData, "sample-data", "s", "", "optional CSV with actual data samples for better analysis")
	f.StringVar(&provider, "provider", "", "completion provider: openai, anthropic or ollama (default: openai)")
	f.StringVar(&baseURL, "base-url", "", "override the provider endpoint")
	f.StringVarP(&configPath, "config", "c", "", "optional YAML run profile")
	f.IntVarP(&workers, "workers", "w", 0, "concurrent completion calls (default: 1)")
	f.Float64Var(&rps, "rps", 0, "max completion calls per second (0: unlimited)")
	f.BoolVar(&showMetrics, "metrics", false, "print run metrics to stderr")

	return cmd
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
