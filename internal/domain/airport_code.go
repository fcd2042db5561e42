package domain

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// Tier ranks competing airport-code pattern matches. Higher tiers encode
// more location-specific narrative forms.
type Tier int

const (
	TierLow Tier = iota + 1
	TierMedium
	TierHigh
	TierCritical
)

func (t Tier) String() string {
	switch t {
	case TierCritical:
		return "critical"
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	case TierLow:
		return "low"
	default:
		return "unknown"
	}
}

// AirportPattern is one entry of the airport-code catalogue: a pattern, the
// tier of any code it captures, and the index of the capture group holding
// the code.
type AirportPattern struct {
	Pattern *regexp.Regexp
	Tier    Tier
	Group   int
}

var defaultAirportPatterns = []AirportPattern{
	// Distance-and-bearing fix relative to a code ("5 NW LAX") is the most
	// specific sighting-location signal in a narrative.
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s+(N|S|E|W|NE|NW|SE|SW|NNE|NNW|SSE|SSW|ENE|ESE|WNW|WSW)\s+([A-Z]{3})\b`), TierCritical, 3},
	{regexp.MustCompile(`(?i)RUNWAY\s+\d+[LRC]?\s+([A-Z]{3})\b`), TierHigh, 1},
	{regexp.MustCompile(`(?i)\b(K[A-Z]{3})\b`), TierHigh, 1},
	{regexp.MustCompile(`(?i)\b([A-Z]{3})\s+(?:AIRPORT|ARPT|TWR|TOWER|ATCT)`), TierHigh, 1},
	{regexp.MustCompile(`(?i)\(([A-Z]{3})\)`), TierMedium, 1},
	{regexp.MustCompile(`(?i)\b([A-Z]{3})\s+(?:CLASS|AIRSPACE)`), TierMedium, 1},
	{regexp.MustCompile(`(?i)(?:NEAR|AT|OVER|BY|FROM)\s+([A-Z]{3})\b`), TierMedium, 1},
	// Route form ("PHL-BOS") usually names the departure airport, not the
	// sighting location, hence the bottom tier.
	{regexp.MustCompile(`(?i)([A-Z]{3})\s*-\s*[A-Z]`), TierLow, 1},
}

// defaultAirportBlacklist lists common narrative tokens that look like IATA
// codes but never are.
var defaultAirportBlacklist = map[string]struct{}{
	"FBI": {}, "FAA": {}, "TSA": {}, "DHS": {}, "LEO": {}, "ATC": {}, "VFR": {}, "IFR": {}, "UAS": {},
	"UFO": {}, "USA": {}, "UTC": {}, "EST": {}, "PST": {}, "MST": {}, "CST": {}, "EDT": {}, "PDT": {}, "MDT": {}, "CDT": {},
}

// AirportReference validates candidate codes against the reference dataset.
// Implemented by airports.Index.
type AirportReference interface {
	// IsUSAirport reports whether code is a known US IATA airport.
	IsUSAirport(code string) bool

	// IATAFromICAO resolves a 4-letter K-prefixed ICAO code to its IATA
	// alias, if one exists.
	IATAFromICAO(code string) (string, bool)
}

// CandidateMatch is one surviving airport-code pattern hit. Internal to a
// single extraction call.
type CandidateMatch struct {
	Code   string
	Tier   Tier
	Offset int
}

// ExtractAirportCode runs the tiered pattern catalogue over a narrative and
// returns the best surviving candidate, or "" when none survive.
func ExtractAirportCode(text string, cfg ExtractorConfig, ref AirportReference, logger *slog.Logger) string {
	candidates := AirportCodeCandidates(text, cfg, ref, logger)
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0].Code
}

// AirportCodeCandidates is the ranked-candidate pipeline behind
// ExtractAirportCode, exposed so callers can inspect the winning tier:
// collect every match of every pattern, filter by validity (ICAO aliasing,
// US-airport membership, blacklist), then rank by (tier, text offset), best
// first.
//
// Within a tier the later-appearing match wins: incident narratives tend to
// describe the sighting location more precisely the further they get from
// the opening departure/destination boilerplate.
func AirportCodeCandidates(text string, cfg ExtractorConfig, ref AirportReference, logger *slog.Logger) []CandidateMatch {
	if text == "" || ref == nil {
		return nil
	}
	text = truncate(text, cfg, logger)

	var candidates []CandidateMatch
	for _, ap := range cfg.AirportPatterns {
		for _, idx := range ap.Pattern.FindAllStringSubmatchIndex(text, -1) {
			start, end := idx[2*ap.Group], idx[2*ap.Group+1]
			if start < 0 {
				continue
			}
			code := strings.ToUpper(text[start:end])

			if len(code) == 4 && strings.HasPrefix(code, "K") {
				iata, ok := ref.IATAFromICAO(code)
				if !ok {
					continue
				}
				code = iata
			}

			if _, blocked := cfg.AirportBlacklist[code]; blocked {
				continue
			}
			if !ref.IsUSAirport(code) {
				continue
			}

			candidates = append(candidates, CandidateMatch{Code: code, Tier: ap.Tier, Offset: idx[0]})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Tier != candidates[j].Tier {
			return candidates[i].Tier > candidates[j].Tier
		}
		return candidates[i].Offset > candidates[j].Offset
	})
	return candidates
}
