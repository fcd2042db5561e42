package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// DataPath is the root folder holding input report files and all run
	// output (split chunks, enriched chunks, yearly masters, geocode cache).
	DataPath string
	// RunDate names the per-run output subdirectories, YYYY-MM-DD.
	RunDate string

	AirportDataPath string
	CacheFilePath   string

	MaxFileSizeMB int
	MaxTextLength int
	RowsPerSplit  int
	ChunkPause    time.Duration

	// Geocoding.
	MaxRetryAttempts   int
	RetryDelayBase     time.Duration
	GeocodeTimeout     time.Duration
	NominatimBaseURL   string
	NominatimUserAgent string
	GeocodeRateLimit   float64 // requests per second against the external service

	// Optional enriched-record publishing.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. An invalid or uncontained data path is a contract violation
// and fails the run immediately.
func Load() (*Config, error) {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	if err := validateDataPath(dataPath); err != nil {
		return nil, err
	}

	airportData := os.Getenv("AIRPORT_DATA")
	if airportData == "" {
		return nil, errors.New("AIRPORT_DATA is required (path to the airport reference CSV)")
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	chunkPause, err := parseDuration("CHUNK_PAUSE", "5s")
	if err != nil {
		return nil, err
	}
	retryDelayBase, err := parseDuration("RETRY_DELAY_BASE", "30s")
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	rateLimit, err := parseFloat("GEOCODE_RATE_LIMIT", 1.0)
	if err != nil {
		return nil, err
	}

	kafkaBrokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DataPath:        dataPath,
		RunDate:         envOrDefault("RUN_DATE", time.Now().Format("2006-01-02")),
		AirportDataPath: airportData,
		CacheFilePath:   envOrDefault("CACHE_FILE", filepath.Join(dataPath, "geocoding_cache.json")),

		MaxFileSizeMB: parseInt("MAX_FILE_SIZE_MB", 100),
		MaxTextLength: parseInt("MAX_TEXT_LENGTH", 50000),
		RowsPerSplit:  parseInt("ROWS_PER_SPLIT", 250),
		ChunkPause:    chunkPause,

		MaxRetryAttempts:   parseInt("MAX_RETRY_ATTEMPTS", 3),
		RetryDelayBase:     retryDelayBase,
		GeocodeTimeout:     geocodeTimeout,
		NominatimBaseURL:   envOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: envOrDefault("NOMINATIM_USER_AGENT", "uas-sightings-etl/1.0"),
		GeocodeRateLimit:   rateLimit,

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   kafkaBrokers,
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "enriched-uas-sightings"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.RowsPerSplit <= 0 {
		return nil, errors.New("ROWS_PER_SPLIT must be positive")
	}
	if cfg.MaxRetryAttempts < 0 {
		return nil, errors.New("MAX_RETRY_ATTEMPTS must not be negative")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

// validateDataPath confines the data path to the user's home directory or
// the working directory. City/state resolutions are sensitive in aggregate,
// so run output never lands outside user-owned locations.
func validateDataPath(path string) error {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve DATA_PATH: %w", err)
	}

	var roots []string
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, home)
	}
	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, cwd)
	}

	for _, root := range roots {
		rel, err := filepath.Rel(root, resolved)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("DATA_PATH %q is outside the allowed directories %v", path, roots)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
