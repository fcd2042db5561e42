// Command enrich runs the UAS sighting enrichment pipeline over the files
// in DATA_PATH: split into chunks, extract and geocode every record, then
// consolidate into yearly masters.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/uaswatch/uas-sightings-etl/internal/adapter/http"
	kafkaadapter "github.com/uaswatch/uas-sightings-etl/internal/adapter/kafka"
	"github.com/uaswatch/uas-sightings-etl/internal/adapter/nominatim"
	"github.com/uaswatch/uas-sightings-etl/internal/airports"
	"github.com/uaswatch/uas-sightings-etl/internal/config"
	"github.com/uaswatch/uas-sightings-etl/internal/domain"
	"github.com/uaswatch/uas-sightings-etl/internal/geocode"
	"github.com/uaswatch/uas-sightings-etl/internal/observability"
	"github.com/uaswatch/uas-sightings-etl/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	index, err := airports.Load(cfg.AirportDataPath)
	if err != nil {
		logger.Error("failed to load airport reference data", "error", err)
		os.Exit(1)
	}
	logger.Info("airport reference data loaded",
		"us_iata_airports", index.IATACount(),
		"icao_aliases", index.ICAOAliasCount(),
	)

	store := geocode.NewFileStore(cfg.CacheFilePath, logger)
	cache := store.Load()

	geocoder := nominatim.NewClient(
		cfg.NominatimBaseURL,
		cfg.NominatimUserAgent,
		cfg.GeocodeTimeout,
		cfg.GeocodeRateLimit,
		logger,
	)

	extractorCfg := domain.DefaultExtractorConfig()
	extractorCfg.MaxTextLength = cfg.MaxTextLength

	resolver := geocode.NewResolver(
		geocoder,
		index,
		cache,
		store,
		extractorCfg.StateAbbrev,
		geocode.RetryPolicy{MaxAttempts: cfg.MaxRetryAttempts, BaseDelay: cfg.RetryDelayBase},
		nil,
		metrics,
		logger,
	)

	// Publishing is feature-flagged; file output is the primary sink.
	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(cfg, extractorCfg, index, resolver, publisher, nil, metrics, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	runErr := p.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("pipeline error", "error", runErr)
	}

	// Final save brackets the run even though the resolver persists each new
	// entry: a failed mid-run save must not lose the rest.
	if err := store.Save(resolver.Cache()); err != nil {
		logger.Error("final cache save failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		os.Exit(1)
	}
}
