// Package cleaner turns the extractor's columnar JSON output into a table of
// complete listings.
package cleaner

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aluiziolira/go-scrape-internships/models"
	"github.com/aluiziolira/go-scrape-internships/pipeline"
)

var (
	// ErrEmptyInput is returned when the file holds no aggregate records.
	ErrEmptyInput = errors.New("cleaner: no aggregate records")
	// ErrLengthMismatch is returned when a record's sequences differ in length.
	ErrLengthMismatch = errors.New("cleaner: field sequences differ in length")
)

// Record is one persisted aggregate record. Entries are pointers so JSON nulls survive decoding.
type Record map[string][]*string

// Result summarises a cleaning run.
type Result struct {
	Exploded int
	Dropped  int
	Kept     int
	Output   string
}

// Load reads the extractor's JSON file.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	return records, nil
}

// Explode turns the columnar records into one row per listing position and
// numbers the rows from 1. Records are concatenated in file order.
func Explode(records []Record) (*models.Table, error) {
	table := &models.Table{}
	for i, rec := range records {
		n, err := recordLen(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		for pos := 0; pos < n; pos++ {
			table.Rows = append(table.Rows, models.Row{
				Index: len(table.Rows) + 1,
				Listing: models.Listing{
					Title:       nullable(rec["title"][pos]),
					Description: nullable(rec["description"][pos]),
					OpenedOn:    nullable(rec["opened_on"][pos]),
					Link:        nullable(rec["link"][pos]),
				},
			})
		}
	}
	return table, nil
}

// ReplaceSentinels turns every sentinel value into a missing field.
func ReplaceSentinels(table *models.Table) {
	for i := range table.Rows {
		l := &table.Rows[i].Listing
		for _, f := range []*models.Field{&l.Title, &l.Description, &l.OpenedOn, &l.Link} {
			if f.IsSentinel() {
				*f = models.Missing()
			}
		}
	}
}

// DropIncomplete removes every row with a missing field. Surviving rows keep
// their index. It returns the number of rows removed.
func DropIncomplete(table *models.Table) int {
	kept := table.Rows[:0]
	for _, row := range table.Rows {
		if row.Listing.Complete() {
			kept = append(kept, row)
		}
	}
	dropped := len(table.Rows) - len(kept)
	table.Rows = kept
	return dropped
}

// Clean loads path and applies explode, sentinel replacement and dropping.
func Clean(path string) (*models.Table, *Result, error) {
	records, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	table, err := Explode(records)
	if err != nil {
		return nil, nil, err
	}

	result := &Result{Exploded: len(table.Rows)}
	ReplaceSentinels(table)
	result.Dropped = DropIncomplete(table)
	result.Kept = len(table.Rows)

	slog.Info("dataframe cleaned",
		slog.Int("exploded", result.Exploded),
		slog.Int("dropped", result.Dropped),
		slog.Int("kept", result.Kept),
	)
	return table, result, nil
}

// Run cleans the JSON file at in and exports the table through w. On any
// error nothing is written.
func Run(in string, w pipeline.TableWriter) (*Result, error) {
	table, result, err := Clean(in)
	if err != nil {
		return nil, err
	}
	if err := w.WriteTable(table); err != nil {
		return nil, fmt.Errorf("export table: %w", err)
	}
	result.Output = w.Path()
	slog.Info("table exported", slog.String("path", w.Path()), slog.Int("rows", result.Kept))
	return result, nil
}

func recordLen(rec Record) (int, error) {
	n := -1
	for _, col := range models.Columns {
		seq, ok := rec[col]
		if !ok {
			return 0, fmt.Errorf("missing %q: %w", col, ErrLengthMismatch)
		}
		if n == -1 {
			n = len(seq)
			continue
		}
		if len(seq) != n {
			return 0, fmt.Errorf("%q has %d entries, want %d: %w", col, len(seq), n, ErrLengthMismatch)
		}
	}
	return n, nil
}

func nullable(raw *string) models.Field {
	if raw == nil {
		return models.Missing()
	}
	return models.Present(*raw)
}
