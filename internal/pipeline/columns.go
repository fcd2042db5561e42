package pipeline

import "strings"

// Column discovery is heuristic: FAA report vintages disagree on column
// names, so the first header containing any keyword wins.
var (
	narrativeKeywords = []string{"summary", "narrative", "description", "remarks", "event"}
	cityKeywords      = []string{"city", "location", "town"}
	stateKeywords     = []string{"state", "province"}
	dateKeywords      = []string{"date", "event_date", "sighting_date", "occurred"}
)

// bestColumn returns the index of the first header matching any keyword
// (case-insensitive substring), or -1.
func bestColumn(header []string, keywords []string) int {
	for i, col := range header {
		lower := strings.ToLower(col)
		for _, key := range keywords {
			if strings.Contains(lower, key) {
				return i
			}
		}
	}
	return -1
}
