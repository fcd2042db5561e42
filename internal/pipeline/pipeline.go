// Package pipeline sequences the enrichment run: split input files into
// row-bounded chunks, enrich each chunk record by record through the
// extraction engine and the geocode resolver, and consolidate all enriched
// output into deduplicated yearly master files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/uaswatch/uas-sightings-etl/internal/airports"
	"github.com/uaswatch/uas-sightings-etl/internal/config"
	"github.com/uaswatch/uas-sightings-etl/internal/domain"
	"github.com/uaswatch/uas-sightings-etl/internal/observability"
)

// AirportResolver maps a city/state pair to an airport code (or a sentinel).
// Implemented by geocode.Resolver.
type AirportResolver interface {
	Resolve(ctx context.Context, city, state string) string
}

// Publisher delivers enriched sightings to an external sink. Nil disables
// publishing.
type Publisher interface {
	PublishBatch(ctx context.Context, sightings []domain.EnrichedSighting) error
}

// Pipeline orchestrates the split-enrich-consolidate run. Rows within a
// chunk and chunks within a run are processed strictly sequentially; the
// geocode cache therefore has a single writer.
type Pipeline struct {
	dataPath      string
	splitDir      string
	outputDir     string
	processedRoot string
	yearlyDir     string

	maxFileSizeBytes int64
	rowsPerSplit     int
	chunkPause       time.Duration

	extractorCfg domain.ExtractorConfig
	airports     *airports.Index
	resolver     AirportResolver
	publisher    Publisher

	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger

	ready            atomic.Bool
	recordsProcessed atomic.Int64
	recordsPublished atomic.Int64
	chunksProcessed  atomic.Int64
	yearsWritten     atomic.Int64
}

// New creates a Pipeline. clock may be nil for real time; publisher may be
// nil to disable publishing.
func New(
	cfg *config.Config,
	extractorCfg domain.ExtractorConfig,
	index *airports.Index,
	resolver AirportResolver,
	publisher Publisher,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		dataPath:         cfg.DataPath,
		splitDir:         fmt.Sprintf("%s/Split_Chunks/%s", cfg.DataPath, cfg.RunDate),
		outputDir:        fmt.Sprintf("%s/Processed_Files/%s", cfg.DataPath, cfg.RunDate),
		processedRoot:    fmt.Sprintf("%s/Processed_Files", cfg.DataPath),
		yearlyDir:        fmt.Sprintf("%s/Yearly_Masters", cfg.DataPath),
		maxFileSizeBytes: int64(cfg.MaxFileSizeMB) * 1024 * 1024,
		rowsPerSplit:     cfg.RowsPerSplit,
		chunkPause:       cfg.ChunkPause,
		extractorCfg:     extractorCfg,
		airports:         index,
		resolver:         resolver,
		publisher:        publisher,
		clock:            clock,
		metrics:          metrics,
		logger:           logger,
	}
}

// CheckReadiness returns nil once the run has enriched at least one chunk.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no chunks enriched yet")
	}
	return nil
}

// Progress reports run counters for the /status endpoint.
func (p *Pipeline) Progress() map[string]int64 {
	return map[string]int64{
		"records_processed": p.recordsProcessed.Load(),
		"records_published": p.recordsPublished.Load(),
		"chunks_processed":  p.chunksProcessed.Load(),
		"years_written":     p.yearsWritten.Load(),
	}
}

// Run executes the three phases in order. A failing phase aborts the run;
// per-record problems never do.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline starting",
		"data_path", p.dataPath,
		"rows_per_split", p.rowsPerSplit,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for _, dir := range []string{p.splitDir, p.outputDir, p.yearlyDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	if err := p.splitPhase(ctx); err != nil {
		return fmt.Errorf("split phase: %w", err)
	}
	if err := p.enrichPhase(ctx); err != nil {
		return fmt.Errorf("enrich phase: %w", err)
	}
	if err := p.consolidatePhase(ctx); err != nil {
		return fmt.Errorf("consolidate phase: %w", err)
	}

	p.logger.Info("pipeline complete",
		"records", p.recordsProcessed.Load(),
		"chunks", p.chunksProcessed.Load(),
	)
	return nil
}
