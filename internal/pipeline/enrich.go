package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/uaswatch/uas-sightings-etl/internal/airports"
	"github.com/uaswatch/uas-sightings-etl/internal/domain"
)

// enrichedColumns are appended to every chunk in this order.
var enrichedColumns = []string{
	"Acft_Type", "UAS_Color", "Alt_Ft", "Evasive", "LEO_Agency",
	"Assigned_Airport", "Airport_Longitude", "Airport_Latitude",
}

// enrichPhase runs the extraction engine and the geocode resolver over every
// chunk. Chunks whose output already exists are skipped, making interrupted
// runs resumable without re-geocoding.
func (p *Pipeline) enrichPhase(ctx context.Context) error {
	chunks, err := filepath.Glob(filepath.Join(p.splitDir, "*.csv"))
	if err != nil {
		return fmt.Errorf("list chunks: %w", err)
	}
	sort.Strings(chunks)

	for i, chunkPath := range chunks {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		name := filepath.Base(chunkPath)
		outPath := filepath.Join(p.outputDir, "Enriched_"+name)
		if _, err := os.Stat(outPath); err == nil {
			p.logger.Info("chunk already processed, skipping",
				"chunk", name, "index", i+1, "total", len(chunks))
			continue
		}

		p.logger.Info("processing chunk", "chunk", name, "index", i+1, "total", len(chunks))
		start := p.clock.Now()

		if err := p.enrichChunk(ctx, chunkPath, outPath); err != nil {
			return fmt.Errorf("enrich chunk %s: %w", name, err)
		}

		p.metrics.ChunkDuration.Observe(p.clock.Since(start).Seconds())
		p.metrics.ChunksProcessed.Inc()
		p.chunksProcessed.Add(1)
		p.ready.Store(true)

		// Pacing between chunks keeps pressure off the geocoding service
		// across a long backlog.
		if i < len(chunks)-1 && p.chunkPause > 0 {
			p.clock.Sleep(p.chunkPause)
		}
	}
	return nil
}

func (p *Pipeline) enrichChunk(ctx context.Context, chunkPath, outPath string) error {
	t, err := readTable(chunkPath)
	if err != nil {
		return err
	}

	narrativeCol := bestColumn(t.header, narrativeKeywords)
	cityCol := bestColumn(t.header, cityKeywords)
	stateCol := bestColumn(t.header, stateKeywords)

	if narrativeCol < 0 {
		p.logger.Warn("no narrative column in chunk, skipping", "chunk", filepath.Base(chunkPath))
		return nil
	}
	if cityCol < 0 || stateCol < 0 {
		p.logger.Warn("missing city/state columns, geocoding fallback disabled",
			"chunk", filepath.Base(chunkPath))
	}

	cell := func(row []string, col int) string {
		if col < 0 || col >= len(row) {
			return ""
		}
		return row[col]
	}

	extracted := 0
	geocoded := 0
	boundsValid := 0
	published := make([]domain.EnrichedSighting, 0, len(t.rows))

	t.header = append(t.header, enrichedColumns...)
	for i := range t.rows {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rec := domain.SightingRecord{
			Narrative: cell(t.rows[i], narrativeCol),
			City:      cell(t.rows[i], cityCol),
			State:     cell(t.rows[i], stateCol),
		}
		if len(rec.Narrative) > p.extractorCfg.MaxTextLength {
			p.metrics.NarrativesTruncated.Inc()
		}

		fields := domain.ExtractDetails(rec.Narrative, p.extractorCfg, p.logger)
		fields.NotifyingAgency = domain.ExtractAgency(rec.Narrative, p.extractorCfg, p.logger)

		candidates := domain.AirportCodeCandidates(rec.Narrative, p.extractorCfg, p.airports, p.logger)
		if len(candidates) > 0 {
			fields.AirportCode = candidates[0].Code
			p.metrics.AirportCodesExtracted.WithLabelValues(candidates[0].Tier.String()).Inc()
			extracted++
		} else {
			fields.AirportCode = p.resolver.Resolve(ctx, rec.City, rec.State)
			geocoded++
		}

		lonText, latText := "", ""
		sighting := domain.NewEnrichedSighting(rec, fields)
		if lat, lon, ok := p.airports.Coordinates(fields.AirportCode); ok {
			lonText = strconv.FormatFloat(lon, 'f', -1, 64)
			latText = strconv.FormatFloat(lat, 'f', -1, 64)
			if airports.InContinentalUS(lat, lon) {
				boundsValid++
				sighting.AirportLat = &lat
				sighting.AirportLon = &lon
			}
		}

		t.rows[i] = append(t.rows[i],
			fields.AircraftType,
			fields.Color,
			fields.AltitudeFeet,
			fields.EvasiveAction,
			fields.NotifyingAgency,
			fields.AirportCode,
			lonText,
			latText,
		)
		published = append(published, sighting)

		p.metrics.RecordsProcessed.Inc()
		p.recordsProcessed.Add(1)
	}

	p.logger.Info("chunk enriched",
		"chunk", filepath.Base(chunkPath),
		"rows", len(t.rows),
		"codes_from_text", extracted,
		"codes_geocoded", geocoded,
		"bounds_valid", boundsValid,
	)

	if err := t.write(outPath); err != nil {
		return err
	}

	if p.publisher != nil {
		if err := p.publisher.PublishBatch(ctx, published); err != nil {
			// Publishing is a secondary sink; the enriched file already
			// exists, so log and move on.
			p.logger.Error("publish batch failed", "chunk", filepath.Base(chunkPath), "error", err)
		} else {
			p.metrics.RecordsPublished.Add(float64(len(published)))
			p.recordsPublished.Add(int64(len(published)))
		}
	}
	return nil
}
