package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-scrape-internships/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the cleaned table is written to.
const SheetName = "Sheet1"

// TableWriter defines the interface for cleaned table output.
type TableWriter interface {
	WriteTable(table *models.Table) error
	Path() string
}

// NewTableWriter picks a writer from the file extension: .csv writes CSV,
// anything else an XLSX workbook.
func NewTableWriter(filename string) TableWriter {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return &CSVWriter{filename: filename}
	}
	return &XLSXWriter{filename: filename}
}

// JSONWriter writes the list of aggregate records as an indented JSON array.
type JSONWriter struct {
	filename string
}

// NewJSONWriter returns a writer for filename. Nothing is created until Write.
func NewJSONWriter(filename string) *JSONWriter {
	return &JSONWriter{filename: filename}
}

// Write replaces the file with the encoded records.
func (jw *JSONWriter) Write(records []*models.Aggregate) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("encode json records: %w", err)
	}
	return writeFileAtomic(jw.filename, buf.Bytes())
}

// Path returns the destination file.
func (jw *JSONWriter) Path() string {
	return jw.filename
}

// XLSXWriter renders the cleaned table into a single-sheet workbook.
type XLSXWriter struct {
	filename string
}

// WriteTable renders the workbook in memory and replaces the file with it.
func (xw *XLSXWriter) WriteTable(table *models.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, 0, len(models.Columns)+1)
	header = append(header, "")
	for _, c := range models.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("style xlsx header: %w", err)
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d cell: %w", row.Index, err)
		}
		values := make([]interface{}, 0, len(models.Columns)+1)
		values = append(values, row.Index)
		for _, field := range row.Values() {
			values = append(values, field.Value)
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", row.Index, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}
	return writeFileAtomic(xw.filename, buf.Bytes())
}

// Path returns the destination file.
func (xw *XLSXWriter) Path() string {
	return xw.filename
}

// CSVWriter writes the cleaned table as CSV with a leading index column.
type CSVWriter struct {
	filename string
}

// WriteTable replaces the file with the table.
func (cw *CSVWriter) WriteTable(table *models.Table) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := append([]string{"index"}, models.Columns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range table.Rows {
		record := []string{strconv.Itoa(row.Index)}
		for _, field := range row.Values() {
			record = append(record, field.Value)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return writeFileAtomic(cw.filename, buf.Bytes())
}

// Path returns the destination file.
func (cw *CSVWriter) Path() string {
	return cw.filename
}

// writeFileAtomic writes data next to filename and renames it into place so
// readers never observe a partial file.
func writeFileAtomic(filename string, data []byte) error {
	if err := ensureDir(filename); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", filename, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", filename, err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filename, err)
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
