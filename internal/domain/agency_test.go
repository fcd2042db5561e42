package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAgency(t *testing.T) {
	cfg := DefaultExtractorConfig()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "simple notification",
			text: "UAS SIGHTED BELOW FINAL. STATE POLICE NOTIFIED.",
			want: "STATE POLICE",
		},
		{
			name: "empty narrative",
			text: "",
			want: Unknown,
		},
		{
			name: "no notification clause",
			text: "UAS REPORTED OFF THE RIGHT WING AT 2,000 FEET.",
			want: Unknown,
		},
		{
			name: "explicit not notified",
			text: "PILOT REPORTED A DRONE. LEOS NOT NOTIFIED.",
			want: NoneReported,
		},
		{
			name: "notification not reported",
			text: "DRONE SIGHTED. NOTIFICATION NOT REPORTED.",
			want: NoneReported,
		},
		{
			name: "not-notified phrase is case-insensitive",
			text: "drone sighted, leos not notified",
			want: NoneReported,
		},
		{
			name: "faa facility advisory skipped",
			text: "PHL TOWER NOTIFIED. NO FURTHER INFO.",
			want: Unknown,
		},
		{
			name: "last clean match wins",
			text: "BOSTON TRACON NOTIFIED. MASSACHUSETTS STATE POLICE NOTIFIED.",
			want: "MASSACHUSETTS STATE POLICE",
		},
		{
			name: "lead filler stripped",
			text: "LEO SHERIFFS OFFICE NOTIFIED.",
			want: "SHERIFFS OFFICE",
		},
		{
			name: "noise token rejected",
			text: "WOC NOTIFIED.",
			want: Unknown,
		},
		{
			name: "single letter residue rejected",
			text: "THE A NOTIFIED.",
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAgency(tt.text, cfg, discardLogger()))
		})
	}
}
