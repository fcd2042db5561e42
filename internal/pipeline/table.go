package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// table is a CSV file in memory: one header row plus data rows padded or
// clipped to the header width. FAA exports contain ragged rows, so reading
// is lenient.
type table struct {
	header []string
	rows   [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return &table{}, nil
	}

	t := &table{header: records[0]}
	width := len(t.header)
	for _, row := range records[1:] {
		switch {
		case len(row) < width:
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		case len(row) > width:
			row = row[:width]
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func (t *table) write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(t.rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

// junkColumnRe matches auto-generated header names produced by spreadsheet
// exports ("Unnamed: 12", "Column1").
var junkColumnRe = regexp.MustCompile(`(?i)^(Unnamed|Column)`)

// dropJunkColumns removes columns with auto-generated names and columns
// whose every cell is empty.
func (t *table) dropJunkColumns() {
	keep := make([]int, 0, len(t.header))
	for i, col := range t.header {
		if junkColumnRe.MatchString(strings.TrimSpace(col)) {
			continue
		}
		empty := true
		for _, row := range t.rows {
			if strings.TrimSpace(row[i]) != "" {
				empty = false
				break
			}
		}
		if !empty {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(t.header) {
		return
	}

	newHeader := make([]string, len(keep))
	for j, i := range keep {
		newHeader[j] = t.header[i]
	}
	newRows := make([][]string, len(t.rows))
	for r, row := range t.rows {
		newRow := make([]string, len(keep))
		for j, i := range keep {
			newRow[j] = row[i]
		}
		newRows[r] = newRow
	}
	t.header = newHeader
	t.rows = newRows
}

// slice returns a chunk of the table's rows as a new table sharing the
// header.
func (t *table) slice(start, end int) *table {
	if end > len(t.rows) {
		end = len(t.rows)
	}
	return &table{header: t.header, rows: t.rows[start:end]}
}
