package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// splitPhase divides every input CSV under the data path into
// row-count-bounded chunk files. Oversized and unreadable files are skipped
// with a logged error, never aborting the run.
func (p *Pipeline) splitPhase(ctx context.Context) error {
	inputs, err := filepath.Glob(filepath.Join(p.dataPath, "*.csv"))
	if err != nil {
		return fmt.Errorf("list input files: %w", err)
	}
	p.logger.Info("split phase starting", "input_files", len(inputs))

	for _, path := range inputs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		name := filepath.Base(path)
		if strings.Contains(name, "Enriched_") {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			p.logger.Error("stat input file failed, skipping", "file", name, "error", err)
			continue
		}
		if info.Size() > p.maxFileSizeBytes {
			p.logger.Error("input file exceeds size limit, skipping",
				"file", name,
				"size_bytes", info.Size(),
				"limit_bytes", p.maxFileSizeBytes,
			)
			continue
		}

		t, err := readTable(path)
		if err != nil {
			p.logger.Error("reading input file failed, skipping", "file", name, "error", err)
			continue
		}
		t.dropJunkColumns()

		if narrative := bestColumn(t.header, narrativeKeywords); narrative >= 0 {
			p.logger.Info("input file loaded",
				"file", name,
				"rows", len(t.rows),
				"narrative_column", t.header[narrative],
			)
		} else {
			p.logger.Warn("no narrative column found", "file", name, "header", t.header)
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		for i := 0; i < len(t.rows); i += p.rowsPerSplit {
			chunk := t.slice(i, i+p.rowsPerSplit)
			chunkPath := filepath.Join(p.splitDir, fmt.Sprintf("%s_part_%d.csv", stem, i/p.rowsPerSplit+1))
			if err := chunk.write(chunkPath); err != nil {
				return fmt.Errorf("write chunk %s: %w", chunkPath, err)
			}
		}
	}
	return nil
}
