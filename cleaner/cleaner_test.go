package cleaner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aluiziolira/go-scrape-internships/models"
	"github.com/aluiziolira/go-scrape-internships/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeInput(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func readSheet(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(pipeline.SheetName)
	require.NoError(t, err)
	return rows
}

func TestCleanDropsEveryRowWithASentinel(t *testing.T) {
	path := writeInput(t, `[{"title":["Intern A","Intern B"],"description":["N/A","Data role"],"opened_on":["2024-01-01","N/A"],"link":["https://x/1","https://x/2"]}]`)

	table, result, err := Clean(path)
	require.NoError(t, err)
	require.Equal(t, 2, result.Exploded)
	require.Equal(t, 2, result.Dropped)
	require.Empty(t, table.Rows)
}

func TestCleanKeepsCompleteRow(t *testing.T) {
	path := writeInput(t, `[{"title":["Intern C"],"description":["QA role"],"opened_on":["2024-02-01"],"link":["https://x/3"]}]`)

	table, result, err := Clean(path)
	require.NoError(t, err)
	require.Equal(t, 1, result.Kept)

	want := []models.Row{{
		Index: 1,
		Listing: models.Listing{
			Title:       models.Present("Intern C"),
			Description: models.Present("QA role"),
			OpenedOn:    models.Present("2024-02-01"),
			Link:        models.Present("https://x/3"),
		},
	}}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExplodeYieldsOneRowPerPosition(t *testing.T) {
	s := func(v string) *string { return &v }
	records := []Record{
		{
			"title":       {s("A"), s("B"), s("C")},
			"description": {s("a"), nil, s("c")},
			"opened_on":   {s("1"), s("2"), s("N/A")},
			"link":        {s("l1"), s("l2"), s("l3")},
		},
		{
			"title":       {s("D")},
			"description": {s("d")},
			"opened_on":   {s("4")},
			"link":        {s("l4")},
		},
	}

	table, err := Explode(records)
	require.NoError(t, err)
	require.Len(t, table.Rows, 4)
	for i, row := range table.Rows {
		require.Equal(t, i+1, row.Index)
	}
	require.False(t, table.Rows[1].Listing.Description.Valid, "JSON null should explode to a missing field")
	require.True(t, table.Rows[2].Listing.OpenedOn.IsSentinel())

	ReplaceSentinels(table)
	require.False(t, table.Rows[2].Listing.OpenedOn.Valid)

	dropped := DropIncomplete(table)
	require.Equal(t, 2, dropped)
	got := []int{table.Rows[0].Index, table.Rows[1].Index}
	if diff := cmp.Diff([]int{1, 4}, got); diff != "" {
		t.Fatalf("surviving indices mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		target error
	}{
		{
			name:   "mismatched lengths",
			body:   `[{"title":["A","B"],"description":["a"],"opened_on":["1","2"],"link":["l1","l2"]}]`,
			target: ErrLengthMismatch,
		},
		{
			name:   "missing column",
			body:   `[{"title":["A"],"description":["a"],"opened_on":["1"]}]`,
			target: ErrLengthMismatch,
		},
		{
			name:   "empty list",
			body:   `[]`,
			target: ErrEmptyInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Clean(writeInput(t, tt.body))
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestRunAbortsWithoutOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "internships.xlsx")

	tests := []struct {
		name string
		in   func(t *testing.T) string
	}{
		{
			name: "missing file",
			in: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.json")
			},
		},
		{
			name: "malformed json",
			in: func(t *testing.T) string {
				return writeInput(t, `[{"title": [`)
			},
		},
		{
			name: "mismatched lengths",
			in: func(t *testing.T) string {
				return writeInput(t, `[{"title":["A"],"description":[],"opened_on":["1"],"link":["l"]}]`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(tt.in(t), pipeline.NewTableWriter(out))
			require.Error(t, err)
			_, statErr := os.Stat(out)
			require.True(t, os.IsNotExist(statErr), "no spreadsheet should be written")
		})
	}
}

func TestRunExportsSpreadsheet(t *testing.T) {
	in := writeInput(t, `[{"title":["Intern A","Intern C"],"description":["N/A","QA role"],"opened_on":["2024-01-01","2024-02-01"],"link":["https://x/1","https://x/3"]}]`)
	out := filepath.Join(t.TempDir(), "internships.xlsx")

	result, err := Run(in, pipeline.NewTableWriter(out))
	require.NoError(t, err)
	require.Equal(t, out, result.Output)
	require.Equal(t, 1, result.Kept)

	rows := readSheet(t, out)
	want := [][]string{
		{"", "title", "description", "opened_on", "link"},
		{"2", "Intern C", "QA role", "2024-02-01", "https://x/3"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("sheet mismatch (-want +got):\n%s", diff)
	}
}

func TestRunIsRepeatable(t *testing.T) {
	in := writeInput(t, `[{"title":["Intern C","Intern D"],"description":["QA role","Ops"],"opened_on":["2024-02-01","2024-02-03"],"link":["https://x/3","https://x/4"]}]`)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.xlsx")
	second := filepath.Join(dir, "second.xlsx")

	_, err := Run(in, pipeline.NewTableWriter(first))
	require.NoError(t, err)
	_, err = Run(in, pipeline.NewTableWriter(second))
	require.NoError(t, err)

	if diff := cmp.Diff(readSheet(t, first), readSheet(t, second)); diff != "" {
		t.Fatalf("repeated runs differ (-first +second):\n%s", diff)
	}

	before, err := os.ReadFile(in)
	require.NoError(t, err)
	require.Contains(t, string(before), "Intern D", "source file must not be modified")
}
