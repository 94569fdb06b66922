package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ccastromar/dictionary-enricher/internal/dictionary"
	"github.com/ccastromar/dictionary-enricher/internal/enrich"
	"github.com/ccastromar/dictionary-enricher/internal/llm"
)

func writeCSV(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func readOutput(t *testing.T, path string) *dictionary.Table {
	t.Helper()
	tbl, err := dictionary.ReadFile(path)
	require.NoError(t, err)
	return tbl
}

func fixedReply(reply string) llm.Completer {
	return llm.CompleterFunc(func(ctx context.Context, req llm.Request) (string, error) {
		return reply, nil
	})
}

func TestRun_UserIDScenario(t *testing.T) {
	dir := t.TempDir()
	in := writeCSV(t, dir, "dict.csv", "column_name\nuser_id\n")

	a := New(Options{InputPath: in}, fixedReply(`{"group":"identifier","description":"Unique user identifier","confidence":0.95}`), enrich.Options{})
	sum, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "dict_enriched.csv"), sum.OutputPath)
	require.Equal(t, "column_name", sum.ColumnField)
	require.Equal(t, 1, sum.Rows)
	require.NotEmpty(t, sum.RunID)

	out := readOutput(t, sum.OutputPath)
	require.Equal(t, []string{"column_name", "group", "description", "confidence"}, out.Header)
	require.Equal(t, [][]string{{"user_id", "identifier", "Unique user identifier", "0.95"}}, out.Rows)
}

func TestRun_SampleDataReachesPrompt(t *testing.T) {
	dir := t.TempDir()
	in := writeCSV(t, dir, "dict.csv", "column_name\nsignup_date\n")
	sample := writeCSV(t, dir, "data.csv", "user_id,signup_date\n"+
		"1,2024-01-01\n2,2024-01-02\n3,2024-01-03\n4,2024-01-04\n5,2024-01-05\n6,2024-01-06\n")

	var prompts []string
	client := llm.CompleterFunc(func(ctx context.Context, req llm.Request) (string, error) {
		prompts = append(prompts, req.Prompt)
		return `{"group":"datetime","description":"Signup date","confidence":0.9}`, nil
	})

	_, err := New(Options{InputPath: in, SampleDataPath: sample}, client, enrich.Options{}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, prompts, 1)
	require.Contains(t, prompts[0], "signup_date")
	for i := 1; i <= 5; i++ {
		require.Contains(t, prompts[0], fmt.Sprintf("2024-01-0%d", i))
	}
	require.NotContains(t, prompts[0], "2024-01-06")
}

func TestRun_MalformedReplyScenario(t *testing.T) {
	dir := t.TempDir()
	in := writeCSV(t, dir, "dict.csv", "column_name\nmystery\n")
	out := filepath.Join(dir, "out.csv")

	_, err := New(Options{InputPath: in, OutputPath: out}, fixedReply("not json"), enrich.Options{}).Run(context.Background())
	require.NoError(t, err)

	tbl := readOutput(t, out)
	require.Equal(t, [][]string{{"mystery", "categorical", "Unable to determine description", "0.0"}}, tbl.Rows)
}

func TestRun_CoercionScenario(t *testing.T) {
	dir := t.TempDir()
	in := writeCSV(t, dir, "dict.csv", "column_name\nc\n")
	out := filepath.Join(dir, "out.csv")

	_, err := New(Options{InputPath: in, OutputPath: out}, fixedReply(`{"group":"weird","description":"x","confidence":1.5}`), enrich.Options{}).Run(context.Background())
	require.NoError(t, err)

	tbl := readOutput(t, out)
	require.Equal(t, [][]string{{"c", "categorical", "x", "1.0"}}, tbl.Rows)
}

func TestRun_PassesMetadataThroughAndKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("table,name,notes\n")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "t,col_%02d,note %d\n", i, i)
	}
	b.WriteString("t,col_00,duplicate\n")
	in := writeCSV(t, dir, "dict.csv", b.String())
	out := filepath.Join(dir, "out.csv")

	var mu sync.Mutex
	calls := 0
	client := llm.CompleterFunc(func(ctx context.Context, req llm.Request) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		// later rows finish first
		name := strings.TrimPrefix(strings.SplitN(strings.SplitN(req.Prompt, "Column Name: ", 2)[1], "\n", 2)[0], "col_")
		var n int
		fmt.Sscanf(name, "%d", &n)
		time.Sleep(time.Duration(20-n) * time.Millisecond)
		return fmt.Sprintf(`{"group":"numeric","description":"desc %s","confidence":0.5}`, name), nil
	})

	sum, err := New(Options{InputPath: in, OutputPath: out, Workers: 6}, client, enrich.Options{}).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "name", sum.ColumnField)
	require.Equal(t, 21, calls)

	tbl := readOutput(t, out)
	require.Equal(t, []string{"table", "name", "notes", "group", "description", "confidence"}, tbl.Header)
	require.Len(t, tbl.Rows, 21)
	for i := 0; i < 20; i++ {
		require.Equal(t, []string{"t", fmt.Sprintf("col_%02d", i), fmt.Sprintf("note %d", i), "numeric", fmt.Sprintf("desc %02d", i), "0.5"}, tbl.Rows[i])
	}
	require.Equal(t, []string{"t", "col_00", "duplicate", "numeric", "desc 00", "0.5"}, tbl.Rows[20])
}

func TestRun_MissingSampleDataIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	in := writeCSV(t, dir, "dict.csv", "column_name\nage\n")

	_, err := New(Options{InputPath: in, SampleDataPath: filepath.Join(dir, "nope.csv")},
		fixedReply(`{"group":"numeric","description":"Age","confidence":0.8}`), enrich.Options{}).Run(context.Background())
	require.NoError(t, err)
}

func TestRun_FatalInputErrors(t *testing.T) {
	dir := t.TempDir()
	client := fixedReply(`{}`)

	_, err := New(Options{InputPath: filepath.Join(dir, "missing.csv")}, client, enrich.Options{}).Run(context.Background())
	require.ErrorContains(t, err, "not found")

	empty := writeCSV(t, dir, "empty.csv", "")
	_, err = New(Options{InputPath: empty}, client, enrich.Options{}).Run(context.Background())
	require.ErrorIs(t, err, dictionary.ErrNoColumns)

	broken := writeCSV(t, dir, "broken.csv", "a,b\n1,2,3\n")
	_, err = New(Options{InputPath: broken}, client, enrich.Options{}).Run(context.Background())
	require.ErrorContains(t, err, "loading CSV")
}

func TestRun_CanceledDoesNotWriteOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeCSV(t, dir, "dict.csv", "column_name\na\nb\n")
	out := filepath.Join(dir, "out.csv")

	ctx, cancel := context.WithCancel(context.Background())
	client := llm.CompleterFunc(func(ctx context.Context, req llm.Request) (string, error) {
		cancel()
		return "", ctx.Err()
	})

	_, err := New(Options{InputPath: in, OutputPath: out}, client, enrich.Options{}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(out)
	require.True(t, os.IsNotExist(statErr))
}

func TestDefaultOutputPath(t *testing.T) {
	require.Equal(t, "data/dict_enriched.csv", DefaultOutputPath("data/dict.csv"))
	require.Equal(t, "dict_enriched.csv", DefaultOutputPath("dict"))
	require.Equal(t, "a.b_enriched.csv", DefaultOutputPath("a.b.csv"))
}
