package domain

import "strings"

// defaultStateAbbrev maps full US state names (plus a few legacy FAA
// abbreviations) to their 2-letter postal codes.
var defaultStateAbbrev = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR", "CALIFORNIA": "CA",
	"COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE", "FLORIDA": "FL", "GEORGIA": "GA",
	"HAWAII": "HI", "IDAHO": "ID", "ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA",
	"KANSAS": "KS", "KENTUCKY": "KY", "LOUISIANA": "LA", "MAINE": "ME", "MARYLAND": "MD",
	"MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN", "MISSISSIPPI": "MS", "MISSOURI": "MO",
	"MONTANA": "MT", "NEBRASKA": "NE", "NEVADA": "NV", "NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ",
	"NEW MEXICO": "NM", "NEW YORK": "NY", "NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND", "OHIO": "OH",
	"OKLAHOMA": "OK", "OREGON": "OR", "PENNSYLVANIA": "PA", "RHODE ISLAND": "RI", "SOUTH CAROLINA": "SC",
	"SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX", "UTAH": "UT", "VERMONT": "VT",
	"VIRGINIA": "VA", "WASHINGTON": "WA", "WEST VIRGINIA": "WV", "WISCONSIN": "WI", "WYOMING": "WY",
	"DISTRICT OF COLUMBIA": "DC", "CALIF": "CA", "PENN": "PA", "MASS": "MA", "MICH": "MI",
}

// NormalizeState maps a state value to its 2-letter form. Already-2-letter
// values pass through upper-cased; full names go through the lookup table;
// unrecognized values pass through unchanged. Best-effort normalization,
// not a validator.
func NormalizeState(state string, abbrev map[string]string) string {
	state = strings.ToUpper(strings.TrimSpace(state))
	if state == "" || len(state) == 2 {
		return state
	}
	if code, ok := abbrev[state]; ok {
		return code
	}
	return state
}

// missingValueTokens are the spellings of "no data" seen across FAA report
// vintages. StandardizeValue collapses all of them to the empty string so
// consolidation-time deduplication compares like with like.
var missingValueTokens = map[string]struct{}{
	"N/A": {}, "NA": {}, "UNKNOWN": {}, "NOT REPORTED": {}, "NONE": {}, "NULL": {}, "": {}, "UNREPORTED": {},
}

// StandardizeValue normalizes missing/unknown cell spellings to "".
func StandardizeValue(val string) string {
	if _, missing := missingValueTokens[strings.ToUpper(strings.TrimSpace(val))]; missing {
		return ""
	}
	return val
}
