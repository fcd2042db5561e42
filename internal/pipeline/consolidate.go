package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/uaswatch/uas-sightings-etl/internal/domain"
)

var yearRe = regexp.MustCompile(`20\d{2}`)

// consolidatePhase merges every enriched chunk from every run into one
// deduplicated master file per year. Chunks are grouped by the 4-digit year
// in their filename; columns are aligned by name because report vintages
// differ.
func (p *Pipeline) consolidatePhase(ctx context.Context) error {
	parts, err := filepath.Glob(filepath.Join(p.processedRoot, "*", "Enriched_*.csv"))
	if err != nil {
		return fmt.Errorf("list enriched files: %w", err)
	}
	if len(parts) == 0 {
		p.logger.Warn("no enriched files found to consolidate")
		return nil
	}

	byYear := make(map[string][]string)
	for _, path := range parts {
		if year := yearRe.FindString(filepath.Base(path)); year != "" {
			byYear[year] = append(byYear[year], path)
		}
	}

	years := make([]string, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Strings(years)

	for _, year := range years {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		files := byYear[year]
		sort.Strings(files)
		p.logger.Info("consolidating year", "year", year, "files", len(files))

		merged, err := mergeByColumnName(files)
		if err != nil {
			return fmt.Errorf("consolidate %s: %w", year, err)
		}

		for _, row := range merged.rows {
			for i, v := range row {
				row[i] = domain.StandardizeValue(v)
			}
		}

		before := len(merged.rows)
		merged.rows = dedupeExact(merged.rows)
		exactDupes := before - len(merged.rows)

		smartDupes := 0
		dateCol := bestColumn(merged.header, dateKeywords)
		cityCol := bestColumn(merged.header, cityKeywords)
		altCol := columnIndex(merged.header, "Alt_Ft")
		if dateCol >= 0 && cityCol >= 0 && altCol >= 0 {
			pre := len(merged.rows)
			merged.rows = dedupeBy(merged.rows, dateCol, cityCol, altCol)
			smartDupes = pre - len(merged.rows)
		}
		p.logger.Info("duplicates removed",
			"year", year, "exact", exactDupes, "likely", smartDupes)

		outPath := filepath.Join(p.yearlyDir, fmt.Sprintf("FAA_%s.csv", year))
		if err := merged.write(outPath); err != nil {
			return err
		}
		p.yearsWritten.Add(1)
		p.logger.Info("yearly master written",
			"year", year, "records", len(merged.rows), "file", filepath.Base(outPath))
	}
	return nil
}

// mergeByColumnName concatenates tables whose headers may differ, aligning
// cells by column name. The merged header is the first-seen order of every
// column across all files.
func mergeByColumnName(files []string) (*table, error) {
	var header []string
	seen := make(map[string]int)
	type mapped struct {
		cols map[string]string
	}
	var rows []mapped

	for _, path := range files {
		t, err := readTable(path)
		if err != nil {
			return nil, err
		}
		for _, col := range t.header {
			if _, ok := seen[col]; !ok {
				seen[col] = len(header)
				header = append(header, col)
			}
		}
		for _, row := range t.rows {
			m := mapped{cols: make(map[string]string, len(t.header))}
			for i, col := range t.header {
				if i < len(row) {
					m.cols[col] = row[i]
				}
			}
			rows = append(rows, m)
		}
	}

	merged := &table{header: header}
	for _, m := range rows {
		row := make([]string, len(header))
		for col, v := range m.cols {
			row[seen[col]] = v
		}
		merged.rows = append(merged.rows, row)
	}
	return merged, nil
}

func dedupeExact(rows [][]string) [][]string {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, row := range rows {
		key := strings.Join(row, "\x1f")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

// dedupeBy drops rows sharing the same (date, city, altitude) triple,
// keeping the first occurrence. Same sighting reported through two
// channels usually differs only in narrative wording.
func dedupeBy(rows [][]string, cols ...int) [][]string {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, row := range rows {
		parts := make([]string, len(cols))
		for i, c := range cols {
			if c < len(row) {
				parts[i] = row[c]
			}
		}
		key := strings.Join(parts, "\x1f")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		if col == name {
			return i
		}
	}
	return -1
}
