package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeState(t *testing.T) {
	abbrev := DefaultExtractorConfig().StateAbbrev

	tests := []struct {
		name  string
		state string
		want  string
	}{
		{"full name", "California", "CA"},
		{"full name upper", "PENNSYLVANIA", "PA"},
		{"two word name", "new york", "NY"},
		{"legacy abbreviation", "Calif", "CA"},
		{"postal code passthrough", "tx", "TX"},
		{"whitespace trimmed", "  Ohio  ", "OH"},
		{"unrecognized passthrough", "PUERTO RICO", "PUERTO RICO"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeState(tt.state, abbrev))
		})
	}
}

func TestStandardizeValue(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want string
	}{
		{"missing token", "N/A", ""},
		{"missing token lower", "unknown", ""},
		{"missing token padded", " none ", ""},
		{"empty stays empty", "", ""},
		{"real value untouched", "STATE POLICE", "STATE POLICE"},
		{"numeric value untouched", "1500", "1500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StandardizeValue(tt.val))
		})
	}
}
