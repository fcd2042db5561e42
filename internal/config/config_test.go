package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dataDir creates a data directory under the working directory, because the
// data path must live inside the home or working directory and t.TempDir()
// resolves outside both.
func dataDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp(".", "data-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func setRequired(t *testing.T) string {
	t.Helper()
	dir := dataDir(t)
	t.Setenv("DATA_PATH", dir)
	t.Setenv("AIRPORT_DATA", "airports.csv")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataPath)
	assert.Equal(t, "airports.csv", cfg.AirportDataPath)
	assert.Equal(t, time.Now().Format("2006-01-02"), cfg.RunDate)
	assert.Contains(t, cfg.CacheFilePath, "geocoding_cache.json")
	assert.Equal(t, 100, cfg.MaxFileSizeMB)
	assert.Equal(t, 50000, cfg.MaxTextLength)
	assert.Equal(t, 250, cfg.RowsPerSplit)
	assert.Equal(t, 5*time.Second, cfg.ChunkPause)
	assert.Equal(t, 3, cfg.MaxRetryAttempts)
	assert.Equal(t, 30*time.Second, cfg.RetryDelayBase)
	assert.Equal(t, 15*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.NominatimBaseURL)
	assert.Equal(t, 1.0, cfg.GeocodeRateLimit)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, "enriched-uas-sightings", cfg.KafkaSinkTopic)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomValues(t *testing.T) {
	setRequired(t)
	t.Setenv("RUN_DATE", "2024-06-01")
	t.Setenv("ROWS_PER_SPLIT", "500")
	t.Setenv("CHUNK_PAUSE", "1s")
	t.Setenv("RETRY_DELAY_BASE", "2s")
	t.Setenv("MAX_RETRY_ATTEMPTS", "5")
	t.Setenv("GEOCODE_RATE_LIMIT", "0.5")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "2024-06-01", cfg.RunDate)
	assert.Equal(t, 500, cfg.RowsPerSplit)
	assert.Equal(t, time.Second, cfg.ChunkPause)
	assert.Equal(t, 2*time.Second, cfg.RetryDelayBase)
	assert.Equal(t, 5, cfg.MaxRetryAttempts)
	assert.Equal(t, 0.5, cfg.GeocodeRateLimit)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing data path", func(t *testing.T) {
		t.Setenv("DATA_PATH", "")
		t.Setenv("AIRPORT_DATA", "airports.csv")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATA_PATH")
	})

	t.Run("data path outside allowed roots", func(t *testing.T) {
		t.Setenv("DATA_PATH", "/etc")
		t.Setenv("AIRPORT_DATA", "airports.csv")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outside the allowed directories")
	})

	t.Run("missing airport data", func(t *testing.T) {
		t.Setenv("DATA_PATH", dataDir(t))
		t.Setenv("AIRPORT_DATA", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AIRPORT_DATA")
	})

	t.Run("invalid duration", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CHUNK_PAUSE", "soon")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("negative rate limit", func(t *testing.T) {
		setRequired(t)
		t.Setenv("GEOCODE_RATE_LIMIT", "-1")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("non-positive rows per split", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ROWS_PER_SPLIT", "0")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ROWS_PER_SPLIT")
	})

	t.Run("kafka enabled without brokers", func(t *testing.T) {
		setRequired(t)
		t.Setenv("KAFKA_ENABLED", "true")
		t.Setenv("KAFKA_BROKERS", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "KAFKA_BROKERS")
	})
}
