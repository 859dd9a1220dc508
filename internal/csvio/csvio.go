// Package csvio reads and writes the shared table shape: a CSV with a
// header row, one record per line. The core never removes columns; writes
// append the derived columns after the originals.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pucklab/puckcast/internal/table"
)

// Read loads a header CSV into a RowTable. Every cell arrives as a string;
// numeric-looking cells parse as numbers, empty cells are absent.
func Read(path string) (*table.RowTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", table.ErrInsufficientData, path)
	}

	header := records[0]
	t := table.NewRowTable()
	for _, name := range header {
		t.AddColumn(name)
	}
	for i, cells := range records[1:] {
		row := table.NewRecord(i)
		for j, cell := range cells {
			if j >= len(header) {
				break
			}
			row.Set(header[j], table.FromString(cell))
		}
		t.Append(row)
	}
	return t, nil
}

// Write stores a RowTable as CSV atomically, via temp file and rename.
// Absent cells render empty.
func Write(path string, t *table.RowTable) error {
	return WriteRows(path, t.Columns(), t.Rows)
}

// WriteRows stores an explicit row slice under the given column order; used
// for fold output where train and test are slices of the same table.
func WriteRows(path string, columns []string, rows []*table.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(columns); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	line := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			line[i] = row.Get(col).String()
		}
		if err := writer.Write(line); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
