// Package domain models FAA UAS (drone) sighting report data and implements
// the narrative extraction engine.
//
// # Data Source
//
// Sighting reports originate from the FAA's quarterly UAS sighting report
// releases, published as CSV/Excel workbooks at
// https://www.faa.gov/uas/resources/public_records/uas_sightings_report.
// Each row carries a free-text narrative written in FAA incident shorthand
// (all caps, comma-delimited clauses) plus city and state columns.
//
// # Narrative Conventions
//
// Relative position fixes:
//
//	"<distance> <compass> <IATA>"  →  e.g. "5 NW LAX"
//	means 5 miles northwest of Los Angeles International. This is the most
//	reliable location signal in a narrative and always refers to the
//	sighting position, not a departure or destination airport.
//
// Aircraft type:
//
//	Usually appears after an advisory clause: "ADVISED, C172, REPORTED...".
//	Some narratives use an explicit "AIRCRAFT TYPE: B738" form, and a few
//	only name the manufacturer ("A CESSNA REPORTED...").
//
// Altitude:
//
//	Either feet with an optional thousands separator ("1,500 FEET", "500 FT")
//	or a flight level ("FL250" = 25,000 ft).
//
// Agency notification:
//
//	Narratives typically mention the FAA facility that was ADVISED before
//	naming the law-enforcement agency that was NOTIFIED, e.g.
//	"PHL TOWER ADVISED. STATE POLICE NOTIFIED." Scanning "<NAME> NOTIFIED"
//	matches from the end of the text and discarding FAA facility tokens
//	biases extraction toward the law-enforcement agency.
//
// Airport codes:
//
//	3-letter IATA codes, or 4-letter ICAO codes with the US "K" prefix
//	(resolved to IATA through an alias map). Common abbreviations that look
//	like codes (FBI, UAS, UTC, ...) are rejected through a blacklist, and
//	every surviving candidate must be a known US airport.
//
// # Sentinel Values
//
// Extraction never reports absence by omission. Fields that could not be
// mined carry defined sentinels: "" for aircraft type, altitude, and airport
// code; "UNKNOWN" for color and agency; "NONE REPORTED" when the narrative
// states no agency was notified; "NO" for the evasive-action flag. The
// geocode layer adds "GEO_TIMEOUT" for lookups that exhausted their retries.
//
// # Regex Safety
//
// Go's regexp package runs in time linear in the input, so pathological
// narratives cannot blow up matching cost. Input is still truncated to a
// configured maximum length before matching, which bounds total work on
// malformed rows and is logged at warning level.
package domain
