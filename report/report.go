// Package report sets up logging for the command-line entry points and
// prints end-of-run summaries.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-internships/cleaner"
	"github.com/aluiziolira/go-scrape-internships/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lmittmann/tint"
)

// NewLogger returns a colourised handler on terminals and JSON otherwise.
func NewLogger(out *os.File, verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	var handler slog.Handler
	if isTerminal(out) {
		handler = tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler), level
}

// ExtractSummary prints the outcome of an extraction run.
func ExtractSummary(w io.Writer, result *models.ExtractResult, output string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Extraction complete")
	t.AppendRows([]table.Row{
		{"Pages", fmt.Sprintf("%d/%d succeeded", result.PagesSucceeded, result.PagesAttempted)},
		{"Listings", result.ListingCount},
		{"Duplicates skipped", result.DuplicatesSkipped},
		{"Failed URLs", len(result.FailedURLs)},
	})
	if len(result.ErrorsByType) > 0 {
		t.AppendRow(table.Row{"Error types", formatCounts(result.ErrorsByType)})
	}
	t.AppendRows([]table.Row{
		{"Duration", result.EndTime.Sub(result.StartTime).Round(time.Millisecond)},
		{"Output file", output},
	})
	t.Render()
}

// CleanSummary prints the outcome of a cleaning run.
func CleanSummary(w io.Writer, result *cleaner.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Cleaning complete")
	t.AppendRows([]table.Row{
		{"Rows exploded", result.Exploded},
		{"Rows dropped", result.Dropped},
		{"Rows kept", result.Kept},
		{"Output file", result.Output},
	})
	t.Render()
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
