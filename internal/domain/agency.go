package domain

import (
	"log/slog"
	"regexp"
	"strings"
)

var (
	defaultNotNotifiedPhrases = []string{
		"NOT REPORTED", "NO LEO", "NOT NOTIFIED", "NOTIFICATION NOT REPORTED", "LEOS NOT NOTIFIED",
	}

	// defaultAgencyPattern captures "<NAME> NOTIFIED" clauses,
	// e.g. "STATE POLICE NOTIFIED" → "STATE POLICE".
	defaultAgencyPattern = regexp.MustCompile(`([A-Z][A-Z\s]{2,40}?)\s+NOTIFIED`)

	// FAA facility tokens denote advisories ("PHL TOWER NOTIFIED"), not
	// law-enforcement notification, and are skipped.
	defaultFAAFacilities = []string{
		"ATCT", "TRACON", "APCH", "APPROACH", "TWR", "TOWER", "CENTER", "FSS", "ARTCC",
	}

	defaultAgencyLeadFiller = regexp.MustCompile(`^(LEO|THE|AND|ACTION|EVASIVE)\s+`)
	defaultAgencyTailFiller = regexp.MustCompile(`\s+(NO|NOT|TAKEN|REPORTED)\.?$`)

	defaultAgencyNoiseTokens = map[string]struct{}{
		"NO": {}, "WAS": {}, "WERE": {}, "ACTION": {}, "EVASIVE": {}, "WOC": {},
	}
)

// ExtractAgency pulls the notifying law-enforcement agency out of a
// narrative. Narratives often mention the FAA facility that was ADVISED
// before naming the agency that was NOTIFIED, so candidate matches are
// scanned in reverse document order: the last clean "<NAME> NOTIFIED"
// occurrence wins.
func ExtractAgency(text string, cfg ExtractorConfig, logger *slog.Logger) string {
	if text == "" {
		return Unknown
	}
	text = truncate(text, cfg, logger)

	upper := strings.ToUpper(text)
	for _, phrase := range cfg.NotNotifiedPhrases {
		if strings.Contains(upper, phrase) {
			return NoneReported
		}
	}

	matches := cfg.AgencyPattern.FindAllStringSubmatch(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		agency := strings.TrimSpace(matches[i][1])

		if containsAny(agency, cfg.FAAFacilities) {
			continue
		}

		agency = cfg.AgencyLeadFiller.ReplaceAllString(agency, "")
		agency = cfg.AgencyTailFiller.ReplaceAllString(agency, "")
		agency = strings.Trim(agency, ". ")

		if len(agency) < 2 {
			continue
		}
		if _, noise := cfg.AgencyNoiseTokens[agency]; noise {
			continue
		}
		return agency
	}

	return Unknown
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
