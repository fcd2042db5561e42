package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uaswatch/uas-sightings-etl/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	processedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sighting := domain.EnrichedSighting{
		ID:    "uas-0011223344556677",
		City:  "Seattle",
		State: "WA",
		Fields: domain.ExtractedFields{
			AircraftType:    "C172",
			Color:           "RED",
			AltitudeFeet:    "1500",
			EvasiveAction:   domain.EvasiveYes,
			NotifyingAgency: "STATE POLICE",
			AirportCode:     "SEA",
		},
		ProcessedAt: processedAt,
	}

	msg, err := serializeToMessage(sighting)
	require.NoError(t, err)

	t.Run("key is the record id", func(t *testing.T) {
		assert.Equal(t, []byte("uas-0011223344556677"), msg.Key)
	})

	t.Run("value round-trips", func(t *testing.T) {
		var got domain.EnrichedSighting
		require.NoError(t, json.Unmarshal(msg.Value, &got))
		assert.Equal(t, sighting, got)
	})

	t.Run("routing headers", func(t *testing.T) {
		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "SEA", headers["airport_code"])
		assert.Equal(t, "2024-06-01T12:00:00Z", headers["processed_at"])
	})
}
