package airports

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDataset = `"id","ident","type","name","latitude_deg","longitude_deg","iso_country","iata_code"
"1","KSEA","large_airport","Seattle Tacoma Intl","47.449","-122.309","US","SEA"
"2","KLAX","large_airport","Los Angeles Intl","33.9425","-118.408","US","LAX"
"3","KBFI","medium_airport","Boeing Field","47.53","-122.302","US","BFI"
"4","EGLL","large_airport","Heathrow","51.4706","-0.461941","GB","LHR"
"5","CYVR","large_airport","Vancouver Intl","49.1939","-123.184","CA","YVR"
"6","K0G7","small_airport","Finger Lakes Regional","42.8836","-76.7812","US",""
"7","KBAD","medium_airport","Barksdale AFB","32.5018","","US","BAD"
`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "airports.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleDataset), 0600))
	return path
}

func TestLoad(t *testing.T) {
	idx, err := Load(writeDataset(t))
	require.NoError(t, err)

	t.Run("keeps only us iata airports", func(t *testing.T) {
		assert.True(t, idx.IsUSAirport("SEA"))
		assert.True(t, idx.IsUSAirport("LAX"))
		assert.False(t, idx.IsUSAirport("LHR"), "non-US rows are dropped")
		assert.False(t, idx.IsUSAirport("YVR"))
		assert.False(t, idx.IsUSAirport("BAD"), "rows with unparseable coordinates are dropped")
	})

	t.Run("builds icao alias map", func(t *testing.T) {
		iata, ok := idx.IATAFromICAO("KSEA")
		require.True(t, ok)
		assert.Equal(t, "SEA", iata)

		_, ok = idx.IATAFromICAO("K0G7")
		assert.False(t, ok, "ICAO rows without an IATA code carry no alias")
	})

	t.Run("counts", func(t *testing.T) {
		assert.Equal(t, 3, idx.IATACount())
		assert.Equal(t, 3, idx.ICAOAliasCount())
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
		assert.Error(t, err)
	})

	t.Run("missing required columns", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.csv")
		require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0600))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing required columns")
	})
}

func TestCoordinates(t *testing.T) {
	idx, err := Load(writeDataset(t))
	require.NoError(t, err)

	t.Run("iata lookup", func(t *testing.T) {
		lat, lon, ok := idx.Coordinates("SEA")
		require.True(t, ok)
		assert.InDelta(t, 47.449, lat, 1e-6)
		assert.InDelta(t, -122.309, lon, 1e-6)
	})

	t.Run("icao fallback for alias-only codes", func(t *testing.T) {
		// 0G7 has no IATA entry, only the K-prefixed ICAO row.
		lat, _, ok := idx.Coordinates("0G7")
		require.True(t, ok)
		assert.InDelta(t, 42.8836, lat, 1e-6)
	})

	t.Run("sentinels never resolve", func(t *testing.T) {
		for _, code := range []string{"", "UNKNOWN", "GEO_TIMEOUT"} {
			_, _, ok := idx.Coordinates(code)
			assert.False(t, ok, code)
		}
	})
}

func TestNearest(t *testing.T) {
	idx, err := Load(writeDataset(t))
	require.NoError(t, err)

	t.Run("closest airport wins", func(t *testing.T) {
		// Downtown Seattle is closer to Boeing Field than to SeaTac.
		code, ok := idx.Nearest(47.6062, -122.3321)
		require.True(t, ok)
		assert.Equal(t, "BFI", code)

		code, ok = idx.Nearest(34.0, -118.3)
		require.True(t, ok)
		assert.Equal(t, "LAX", code)
	})

	t.Run("empty index", func(t *testing.T) {
		empty := NewIndex(nil, nil, nil)
		_, ok := empty.Nearest(47.0, -122.0)
		assert.False(t, ok)
	})
}

func TestInContinentalUS(t *testing.T) {
	assert.True(t, InContinentalUS(47.449, -122.309))
	assert.False(t, InContinentalUS(21.3187, -157.9224), "Honolulu is outside the box")
	assert.False(t, InContinentalUS(61.1744, -149.996), "Anchorage is outside the box")
	assert.False(t, InContinentalUS(51.4706, -0.461941))
}
