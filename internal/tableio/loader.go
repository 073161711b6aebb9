// Package tableio reads and writes book tables as CSV, JSONL, Parquet and XLSX.
package tableio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"

	"github.com/lehigh-university-libraries/booklink/internal/record"
)

// Format is a supported table file format
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSONL   Format = "jsonl"
	FormatParquet Format = "parquet"
	FormatExcel   Format = "xlsx"
)

// FormatOf detects the table format from the file extension
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".jsonl", ".json":
		return FormatJSONL, nil
	case ".parquet":
		return FormatParquet, nil
	case ".xlsx":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("unsupported file format: %q (supported: .csv, .jsonl, .parquet, .xlsx)", ext)
	}
}

// Loader reads a catalog export into a record table
type Loader struct {
	path string
}

// NewLoader creates a new loader for path
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads every row
func (l *Loader) Load() (*record.Table, error) {
	return l.load(0)
}

// LoadSample reads at most limit rows
func (l *Loader) LoadSample(limit int) (*record.Table, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("sample limit must be positive, got %d", limit)
	}
	return l.load(limit)
}

func (l *Loader) load(limit int) (*record.Table, error) {
	format, err := FormatOf(l.path)
	if err != nil {
		return nil, err
	}

	var table *record.Table
	switch format {
	case FormatCSV:
		table, err = l.loadCSV(limit)
	case FormatJSONL:
		table, err = l.loadJSONL(limit)
	case FormatParquet:
		table, err = l.loadParquet(limit)
	case FormatExcel:
		table, err = l.loadExcel(limit)
	}
	if err != nil {
		return nil, err
	}
	if !table.HasKey() {
		return nil, fmt.Errorf("table %s has no key column (tried %s)", l.path, strings.Join(record.KeyColumnCandidates, ", "))
	}

	slog.Debug("Loaded table",
		"path", l.path,
		"format", format,
		"records", len(table.Records),
		"key_column", table.KeyColumn)
	return table, nil
}

func (l *Loader) name() string {
	base := filepath.Base(l.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func full(table *record.Table, limit int) bool {
	return limit > 0 && len(table.Records) >= limit
}

// loadCSV reads a headed CSV file. Rows shorter than the header leave the
// trailing columns absent.
func (l *Loader) loadCSV(limit int) (*record.Table, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file %s: %w", l.path, err)
	}
	defer file.Close()

	r := csv.NewReader(bufio.NewReader(file))
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv file %s has no header row", l.path)
		}
		return nil, fmt.Errorf("failed to read csv header from %s: %w", l.path, err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	table := record.NewTable(l.name(), headers)
	for !full(table, limit) {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row from %s: %w", l.path, err)
		}
		table.AppendRow(row)

		if n := len(table.Records); n%1000 == 0 {
			slog.Debug("Reading CSV", "rows_read", n)
		}
	}
	return table, nil
}

// loadJSONL reads one JSON object per line. The header is the order in which
// keys are first seen across the file.
func (l *Loader) loadJSONL(limit int) (*record.Table, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	// Increase buffer size for large JSON lines
	const maxCapacity = 10 * 1024 * 1024 // 10MB per line
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	var (
		headers []string
		known   = make(map[string]struct{})
		rows    []map[string]string
	)

	lineNum := 0
	for scanner.Scan() && (limit <= 0 || len(rows) < limit) {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		keys, cells, err := decodeObject(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		for _, k := range keys {
			if _, ok := known[k]; !ok {
				known[k] = struct{}{}
				headers = append(headers, k)
			}
		}
		rows = append(rows, cells)

		if lineNum%1000 == 0 {
			slog.Debug("Reading JSONL", "lines_read", lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	table := record.NewTable(l.name(), headers)
	for _, cells := range rows {
		table.Append(cells)
	}
	return table, nil
}

// decodeObject decodes a flat JSON object keeping key order. Nulls are
// treated as absent; non-string scalars and nested values keep their JSON text.
func decodeObject(line []byte) ([]string, map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected a JSON object")
	}

	var keys []string
	cells := make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected an object key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("failed to decode value of %q: %w", key, err)
		}

		var s string
		switch {
		case bytes.Equal(raw, []byte("null")):
			continue
		case json.Unmarshal(raw, &s) == nil:
		default:
			s = string(raw)
		}
		if _, dup := cells[key]; !dup {
			keys = append(keys, key)
		}
		cells[key] = s
	}
	return keys, cells, nil
}

// loadParquet reads BookRow records in batches
func (l *Loader) loadParquet(limit int) (*record.Table, error) {
	slog.Debug("Opening Parquet file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[BookRow](pf)
	defer reader.Close()

	table := record.NewTable(l.name(), BookRowHeaders)
	rows := make([]BookRow, 128)

	batchNum := 0
	for !full(table, limit) {
		n, err := reader.Read(rows)
		if n > 0 {
			batchNum++
			for _, row := range rows[:n] {
				if full(table, limit) {
					break
				}
				table.AppendRow(row.Cells())
			}
			slog.Debug("Read batch from Parquet", "batch", batchNum, "rows_in_batch", n, "total_rows_read", len(table.Records))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to read parquet rows: %w", err)
			}
			break
		}
	}
	return table, nil
}

// loadExcel reads the first sheet of a workbook. The first row is the header;
// blank trailing cells are kept as empty values.
func (l *Loader) loadExcel(limit int) (*record.Table, error) {
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", l.path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q in %s has no header row", sheetName, l.path)
	}

	headers := rows[0]
	table := record.NewTable(l.name(), headers)
	for _, row := range rows[1:] {
		if full(table, limit) {
			break
		}
		padded := make([]string, len(headers))
		copy(padded, row)
		table.AppendRow(padded)
	}
	return table, nil
}
