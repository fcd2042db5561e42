package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Sentinel values used where a field could not be extracted or resolved.
// Absence is always represented by one of these, never by a missing field.
const (
	Unknown      = "UNKNOWN"
	GeoTimeout   = "GEO_TIMEOUT"
	NoneReported = "NONE REPORTED"
	EvasiveYes   = "YES"
	EvasiveNo    = "NO"
)

// SightingRecord is one input row as handed over by the orchestrator after
// column discovery: the raw narrative plus optional city/state fields.
// Empty strings stand in for missing values. Never mutated.
type SightingRecord struct {
	Narrative string
	City      string
	State     string
}

// ExtractedFields is the structured output of the extraction engine for one
// record. AircraftType, AltitudeFeet, and AirportCode are "" when no pattern
// matched; the remaining fields carry their documented sentinels.
type ExtractedFields struct {
	AircraftType    string `json:"aircraft_type,omitempty"`
	Color           string `json:"color"`
	AltitudeFeet    string `json:"altitude_feet,omitempty"`
	EvasiveAction   string `json:"evasive_action"`
	NotifyingAgency string `json:"notifying_agency"`
	AirportCode     string `json:"airport_code,omitempty"`
}

// DefaultFields returns the all-sentinel bundle produced for records whose
// narrative is absent or unusable.
func DefaultFields() ExtractedFields {
	return ExtractedFields{
		Color:           Unknown,
		EvasiveAction:   EvasiveNo,
		NotifyingAgency: Unknown,
	}
}

// EnrichedSighting is the fully enriched representation of one record,
// serialized to the sink topic when publishing is enabled.
type EnrichedSighting struct {
	ID     string          `json:"id"`
	City   string          `json:"city,omitempty"`
	State  string          `json:"state,omitempty"`
	Fields ExtractedFields `json:"fields"`

	// Coordinates of the assigned airport, present only when the airport
	// resolved and its position passed the continental-US bounds check.
	AirportLat *float64 `json:"airport_lat,omitempty"`
	AirportLon *float64 `json:"airport_lon,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// NewEnrichedSighting builds the publishable form of a record. The ID is a
// deterministic hash of the record's identifying fields, so reprocessing the
// same row produces the same ID and downstream consumers can upsert
// idempotently.
func NewEnrichedSighting(rec SightingRecord, fields ExtractedFields) EnrichedSighting {
	return EnrichedSighting{
		ID:          generateID(rec, fields.AirportCode),
		City:        rec.City,
		State:       rec.State,
		Fields:      fields,
		ProcessedAt: clock.Now(),
	}
}

func generateID(rec SightingRecord, airport string) string {
	input := fmt.Sprintf("%s|%s|%s|%s", rec.Narrative, rec.City, rec.State, airport)
	hash := sha256.Sum256([]byte(input))
	return "uas-" + hex.EncodeToString(hash[:8])
}
