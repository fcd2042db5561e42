package domain

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ExtractorConfig holds the pattern catalogue driving the extraction engine.
// Patterns are configuration input, not part of the engine's contract: the
// defaults below encode the FAA narrative conventions, but callers may
// supply their own catalogue.
type ExtractorConfig struct {
	// MaxTextLength bounds the amount of narrative text fed to the regex
	// engine. Longer input is truncated (and logged at warning level).
	MaxTextLength int

	// AircraftPatterns are tried in order; the first match's capture group 1
	// wins. Order encodes precedence: structured forms before loose keyword
	// matches.
	AircraftPatterns []*regexp.Regexp

	// DronePattern gates color extraction: colors are only searched when the
	// narrative actually mentions a drone, so a color belonging to an
	// unrelated aircraft elsewhere in the text is not picked up.
	DronePattern *regexp.Regexp
	ColorPattern *regexp.Regexp

	// AltitudeFeetPattern is tried before FlightLevelPattern; flight-level
	// values are converted to feet (×100).
	AltitudeFeetPattern *regexp.Regexp
	FlightLevelPattern  *regexp.Regexp

	// Agency extraction inputs.
	NotNotifiedPhrases []string
	AgencyPattern      *regexp.Regexp
	FAAFacilities      []string
	AgencyLeadFiller   *regexp.Regexp
	AgencyTailFiller   *regexp.Regexp
	AgencyNoiseTokens  map[string]struct{}

	// Airport-code extraction inputs.
	AirportPatterns  []AirportPattern
	AirportBlacklist map[string]struct{}

	// StateAbbrev maps full state names (upper case) to 2-letter codes.
	StateAbbrev map[string]string
}

var (
	defaultAircraftPatterns = []*regexp.Regexp{
		regexp.MustCompile(`ADVISED,\s*([A-Z0-9]{2,6}),`),
		regexp.MustCompile(`AIRCRAFT TYPE[:\s]+([A-Z0-9]{2,6})\b`),
		regexp.MustCompile(`\b(CESSNA|BOEING|AIRBUS|PIPER|BEECH|CIRRUS|GULFSTREAM|EMBRAER)\b`),
	}

	defaultDronePattern = regexp.MustCompile(`(?i)\b(UAS|DRONE)\b`)
	defaultColorPattern = regexp.MustCompile(`(?i)\b(RED|BLACK|GREY|GRAY|WHITE|ORANGE|GREEN|BLUE|SILVER|YELLOW|BROWN|TAN|PINK|PURPLE|GOLD|BEIGE|MULTI[- ]COLOR)\b`)

	defaultAltitudeFeetPattern = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*)\s*(?:FEET|FT)\b`)
	defaultFlightLevelPattern  = regexp.MustCompile(`FL\s*(\d{2,3})\b`)
)

// DefaultExtractorConfig returns the stock FAA narrative catalogue.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxTextLength:       50000,
		AircraftPatterns:    defaultAircraftPatterns,
		DronePattern:        defaultDronePattern,
		ColorPattern:        defaultColorPattern,
		AltitudeFeetPattern: defaultAltitudeFeetPattern,
		FlightLevelPattern:  defaultFlightLevelPattern,
		NotNotifiedPhrases:  defaultNotNotifiedPhrases,
		AgencyPattern:       defaultAgencyPattern,
		FAAFacilities:       defaultFAAFacilities,
		AgencyLeadFiller:    defaultAgencyLeadFiller,
		AgencyTailFiller:    defaultAgencyTailFiller,
		AgencyNoiseTokens:   defaultAgencyNoiseTokens,
		AirportPatterns:     defaultAirportPatterns,
		AirportBlacklist:    defaultAirportBlacklist,
		StateAbbrev:         defaultStateAbbrev,
	}
}

// ExtractDetails mines aircraft type, drone color, altitude, and the
// evasive-action flag out of one narrative. Pure function of (text, cfg):
// an empty narrative yields the all-sentinel default bundle.
func ExtractDetails(text string, cfg ExtractorConfig, logger *slog.Logger) ExtractedFields {
	fields := DefaultFields()
	if text == "" {
		return fields
	}
	text = truncate(text, cfg, logger)

	for _, re := range cfg.AircraftPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			fields.AircraftType = m[1]
			break
		}
	}

	if cfg.DronePattern.MatchString(text) {
		if m := cfg.ColorPattern.FindStringSubmatch(text); m != nil {
			color := strings.ToUpper(m[1])
			color = strings.ReplaceAll(color, "MULTI-COLOR", "MULTI-COLORED")
			color = strings.ReplaceAll(color, "MULTI COLOR", "MULTI-COLORED")
			fields.Color = color
		}
	}

	if m := cfg.AltitudeFeetPattern.FindStringSubmatch(text); m != nil {
		fields.AltitudeFeet = strings.ReplaceAll(m[1], ",", "")
	} else if m := cfg.FlightLevelPattern.FindStringSubmatch(text); m != nil {
		if fl, err := strconv.Atoi(m[1]); err == nil {
			fields.AltitudeFeet = strconv.Itoa(fl * 100)
		}
	}

	// Two-substring heuristic, not a negation parser: misfires on unusual
	// word orders like a trailing "NO EVASIVE ACTION TAKEN" clause negating
	// an earlier mention. Known limitation, covered by tests.
	if strings.Contains(text, "EVASIVE ACTION") && !strings.Contains(text, "NO EVASIVE") {
		fields.EvasiveAction = EvasiveYes
	}

	return fields
}

// truncate bounds narrative length before any regex work. The cut point
// backs off to a rune boundary so a multi-byte character is never split.
func truncate(text string, cfg ExtractorConfig, logger *slog.Logger) string {
	if cfg.MaxTextLength <= 0 || len(text) <= cfg.MaxTextLength {
		return text
	}
	if logger != nil {
		logger.Warn("narrative truncated",
			"original_length", len(text),
			"max_length", cfg.MaxTextLength,
		)
	}
	cut := cfg.MaxTextLength
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
