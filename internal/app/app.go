package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ccastromar/dictionary-enricher/internal/dictionary"
	"github.com/ccastromar/dictionary-enricher/internal/enrich"
	"github.com/ccastromar/dictionary-enricher/internal/llm"
	"github.com/ccastromar/dictionary-enricher/internal/logx"
)

// Output columns appended to the dictionary.
const (
	ColGroup       = "group"
	ColDescription = "description"
	ColConfidence  = "confidence"
)

type Options struct {
	InputPath      string
	OutputPath     string
	SampleDataPath string

	// Model is only used to label log lines.
	Model            string
	Workers          int
	ColumnCandidates []string
}

// Summary describes a finished run.
type Summary struct {
	RunID       string
	OutputPath  string
	ColumnField string
	Rows        int
}

type App struct {
	opts     Options
	enricher *enrich.Enricher
	runID    string
}

func New(opts Options, client llm.Completer, eo enrich.Options) *App {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.OutputPath == "" {
		opts.OutputPath = DefaultOutputPath(opts.InputPath)
	}
	return &App{
		opts:     opts,
		enricher: enrich.New(client, eo),
		runID:    uuid.NewString(),
	}
}

// DefaultOutputPath is the input path with its extension replaced by "_enriched.csv".
func DefaultOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "_enriched.csv"
}

// Run loads the dictionary, enriches every row and writes the output file.
func (a *App) Run(ctx context.Context) (*Summary, error) {
	table, err := dictionary.ReadFile(a.opts.InputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file '%s' not found", a.opts.InputPath)
		}
		return nil, fmt.Errorf("loading CSV: %w", err)
	}

	var samples *dictionary.Table
	if a.opts.SampleDataPath != "" {
		samples, err = dictionary.ReadFile(a.opts.SampleDataPath)
		if err != nil {
			logx.LW(a.runID, "App", "could not load sample data: %v", err)
			samples = nil
		} else {
			logx.L(a.runID, "App", "loaded sample data from %s", a.opts.SampleDataPath)
		}
	}

	field, err := dictionary.Resolve(table, a.opts.ColumnCandidates)
	if err != nil {
		return nil, err
	}

	table.EnsureColumn(ColGroup, "")
	table.EnsureColumn(ColDescription, "")
	table.EnsureColumn(ColConfidence, enrich.FormatConfidence(0))

	logx.L(a.runID, "App", "enriching %d columns using %s (workers=%d)", table.Len(), a.opts.Model, a.opts.Workers)

	results, err := a.enrichRows(ctx, table, field, samples)
	if err != nil {
		return nil, err
	}

	for i, res := range results {
		table.Set(i, ColGroup, string(res.Group))
		table.Set(i, ColDescription, res.Description)
		table.Set(i, ColConfidence, enrich.FormatConfidence(res.Confidence))
	}

	if err := table.WriteFile(a.opts.OutputPath); err != nil {
		return nil, fmt.Errorf("saving output: %w", err)
	}
	logx.L(a.runID, "App", "enriched data dictionary saved to: %s", a.opts.OutputPath)

	return &Summary{
		RunID:       a.runID,
		OutputPath:  a.opts.OutputPath,
		ColumnField: field,
		Rows:        table.Len(),
	}, nil
}

// enrichRows runs at most Workers enrichments at a time. results[i] always belongs to row i.
func (a *App) enrichRows(ctx context.Context, table *dictionary.Table, field string, samples *dictionary.Table) ([]enrich.Result, error) {
	results := make([]enrich.Result, table.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)

	for i := 0; i < table.Len(); i++ {
		if gctx.Err() != nil {
			break
		}
		name := table.Value(i, field)
		g.Go(func() error {
			values, _ := dictionary.GatherSamples(samples, name, dictionary.DefaultSampleLimit)

			logx.L(a.runID, "App", "processing: %s", name)
			timer := logx.Start(a.runID, "App", "enrich "+name)
			res := a.enricher.Enrich(gctx, name, values)
			timer.End()

			results[i] = res
			logx.L(a.runID, "App", "  -> %s: group=%s confidence=%.2f", name, res.Group, res.Confidence)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run canceled: %w", err)
	}
	return results, nil
}
