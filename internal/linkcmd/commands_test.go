package linkcmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/booklink/internal/config"
	"github.com/lehigh-university-libraries/booklink/internal/history"
	"github.com/lehigh-university-libraries/booklink/internal/tableio"
)

const (
	leftCSV = `ID,Title,Author,Year,ISBN,Language
ol_1,The Great Gatsby,F. Scott Fitzgerald,1925,9780743273565,English
ol_2,Digital Fortress,Dan Brown,2001,,English
ol_3,Emma,Jane Austen,1815,,French
`
	rightCSV = `ID,Title,Author,Year,ISBN,URL
gb_1,Great Gatsby,"Fitzgerald, F. Scott",,0743273567,https://books.google.com/gb_1
gb_2,Digital Fortress,Dan Brown,2010,,https://books.google.com/gb_2
gb_3,Emma,Jane Austen,1816,,https://books.google.com/gb_3
`
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvStrategy, config.EnvWorkers, config.EnvHistoryDB} {
		t.Setenv(key, "")
	}
}

func fixtures(t *testing.T) (dir, left, right string) {
	t.Helper()
	dir = t.TempDir()
	left = filepath.Join(dir, "table_a.csv")
	right = filepath.Join(dir, "table_b.csv")
	require.NoError(t, os.WriteFile(left, []byte(leftCSV), 0644))
	require.NoError(t, os.WriteFile(right, []byte(rightCSV), 0644))
	return dir, left, right
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMatchCommand(t *testing.T) {
	clearEnv(t)
	dir, left, right := fixtures(t)
	output := filepath.Join(dir, "table_c.csv")
	db := filepath.Join(dir, "history.db")
	runs := filepath.Join(dir, "runs")

	out, err := run(t, NewMatchCmd(),
		"--left", left, "--right", right, "--output", output,
		"--strategy", "linkage", "--workers", "2",
		"--history-db", db, "--summary-yaml", runs, "--samples", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "Found 2 matching record pairs")
	assert.Contains(t, out, "Sample matches:")
	assert.Contains(t, out, "Run recorded as")

	table, err := tableio.NewLoader(output).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ID", "ltable_id", "rtable_id",
		"ltable_Title", "ltable_Author", "ltable_Year", "ltable_ISBN", "ltable_Language",
		"rtable_Title", "rtable_Author", "rtable_Year", "rtable_ISBN", "rtable_URL",
	}, table.Headers)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "gb_1", table.Value(&table.Records[0], "rtable_id"))
	assert.Equal(t, "ol_3", table.Value(&table.Records[1], "ltable_id"))

	store, err := history.Open(db)
	require.NoError(t, err)
	defer store.Close()
	stored, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "linkage", stored[0].Strategy)
	assert.Equal(t, 2, stored[0].Matches)

	entries, err := os.ReadDir(runs)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	out, err = run(t, NewHistoryCmd(), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, stored[0].ID)

	out, err = run(t, NewHistoryCmd(), "--db", db, "--run", stored[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "ol_1")
	assert.Contains(t, out, "isbn")
}

func TestMatchCommandWeightedDefault(t *testing.T) {
	clearEnv(t)
	dir, left, right := fixtures(t)
	output := filepath.Join(dir, "table_c.jsonl")

	out, err := run(t, NewMatchCmd(), "--left", left, "--right", right, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "BOOKLINK MATCH SUMMARY")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Digital Fortress and Emma agree on title and author; Gatsby's titles differ
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `{"ID":"0","ltable_id":"ol_2","rtable_id":"gb_2"`), lines[0])
}

func TestMatchCommandRejectsInvalidFlags(t *testing.T) {
	clearEnv(t)
	dir, left, right := fixtures(t)
	output := filepath.Join(dir, "out.csv")

	_, err := run(t, NewMatchCmd(), "--left", left, "--right", right, "--output", output, "--strategy", "fuzzy")
	assert.Error(t, err)

	_, err = run(t, NewMatchCmd(), "--left", left, "--right", right, "--output", output, "--workers", "0")
	assert.Error(t, err)

	_, err = run(t, NewMatchCmd(), "--left", left, "--right", right, "--output", filepath.Join(dir, "out.parquet"))
	assert.Error(t, err)

	_, err = run(t, NewMatchCmd(), "--left", filepath.Join(dir, "missing.csv"), "--right", right, "--output", output)
	assert.Error(t, err)
}

func TestAnalyzeCommand(t *testing.T) {
	clearEnv(t)
	_, left, right := fixtures(t)

	out, err := run(t, NewAnalyzeCmd(), "--left", left, "--right", right, "--samples", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "table_a: 3 books")
	assert.Contains(t, out, "Found 2 matching books")
	assert.Contains(t, out, "Overlap percentage: 66.7%")
	assert.Contains(t, out, "via isbn: 1")
	assert.Contains(t, out, "The Great Gatsby")
}

func TestISBNCommand(t *testing.T) {
	out, err := run(t, NewISBNCmd(), "978-0-7432-7356-5", "080442957x")
	require.NoError(t, err)
	assert.Contains(t, out, "0743273567")
	assert.Contains(t, out, "9780804429573")

	_, err = run(t, NewISBNCmd())
	assert.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	_, left, _ := fixtures(t)

	out, err := run(t, NewInspectCmd(), "--table", left, "--column", "Language", "--limit", "0")
	require.NoError(t, err)
	assert.Equal(t, "English,English,French\n", out)

	out, err = run(t, NewInspectCmd(), "--table", left, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "RECORD 1: ol_1")
	assert.Contains(t, out, "Normalized title: great gatsby")
	assert.NotContains(t, out, "RECORD 2")

	_, err = run(t, NewInspectCmd(), "--table", left, "--column", "Publisher")
	assert.Error(t, err)
}

func TestHistoryCommandRequiresDB(t *testing.T) {
	clearEnv(t)
	_, err := run(t, NewHistoryCmd())
	assert.Error(t, err)
}
