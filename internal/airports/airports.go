// Package airports is the read-only reference-data adapter: it loads an
// OurAirports-style CSV dataset, filters it to US airports, and exposes
// code lookups plus an ICAO→IATA alias map. The index is immutable after
// load and safe to share across concurrent resolution calls.
package airports

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Airport is one reference entity: a code, its country, and its position.
type Airport struct {
	Code    string
	Country string
	Lat     float64
	Lon     float64
}

// Index holds the US airport tables. IATA codes are 3 letters; ICAO codes
// are 4 letters with the US "K" radio prefix.
type Index struct {
	iata       map[string]Airport
	icao       map[string]Airport
	icaoToIATA map[string]string
}

// Continental-US coordinate bounds used to validate resolved airport
// positions before they are trusted for mapping.
const (
	lonMin = -125.0
	lonMax = -65.0
	latMin = 25.0
	latMax = 50.0
)

// NewIndex builds an index from already-loaded reference records. Records
// whose country is not "US" are dropped. ICAO records are keyed by their
// 4-letter code; the alias map covers airports carrying both code forms.
func NewIndex(iata []Airport, icao []Airport, aliases map[string]string) *Index {
	idx := &Index{
		iata:       make(map[string]Airport, len(iata)),
		icao:       make(map[string]Airport, len(icao)),
		icaoToIATA: make(map[string]string, len(aliases)),
	}
	for _, a := range iata {
		if a.Country == "US" && len(a.Code) == 3 {
			idx.iata[a.Code] = a
		}
	}
	for _, a := range icao {
		if a.Country == "US" && len(a.Code) == 4 {
			idx.icao[a.Code] = a
		}
	}
	for icaoCode, iataCode := range aliases {
		if strings.HasPrefix(icaoCode, "K") {
			idx.icaoToIATA[icaoCode] = iataCode
		}
	}
	return idx
}

// Load reads an OurAirports-style CSV dataset and builds the US index.
// Columns are discovered by header name so upstream column reordering does
// not break loading.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open airport dataset: %w", err)
	}
	defer f.Close()
	return load(f)
}

func load(r io.Reader) (*Index, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read airport dataset header: %w", err)
	}

	col := func(name string) int {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}
	identCol := col("ident")
	iataCol := col("iata_code")
	countryCol := col("iso_country")
	latCol := col("latitude_deg")
	lonCol := col("longitude_deg")
	if identCol < 0 || countryCol < 0 || latCol < 0 || lonCol < 0 {
		return nil, fmt.Errorf("airport dataset missing required columns, got header %v", header)
	}

	var iataRecs, icaoRecs []Airport
	aliases := make(map[string]string)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read airport dataset row: %w", err)
		}

		get := func(i int) string {
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		country := get(countryCol)
		if country != "US" {
			continue
		}
		lat, errLat := strconv.ParseFloat(get(latCol), 64)
		lon, errLon := strconv.ParseFloat(get(lonCol), 64)
		if errLat != nil || errLon != nil {
			continue
		}

		ident := strings.ToUpper(get(identCol))
		iataCode := strings.ToUpper(get(iataCol))

		if len(iataCode) == 3 {
			iataRecs = append(iataRecs, Airport{Code: iataCode, Country: country, Lat: lat, Lon: lon})
		}
		if len(ident) == 4 && strings.HasPrefix(ident, "K") {
			icaoRecs = append(icaoRecs, Airport{Code: ident, Country: country, Lat: lat, Lon: lon})
			if len(iataCode) == 3 {
				aliases[ident] = iataCode
			}
		}
	}

	return NewIndex(iataRecs, icaoRecs, aliases), nil
}

// IsUSAirport reports whether code is a known US IATA airport.
func (idx *Index) IsUSAirport(code string) bool {
	_, ok := idx.iata[code]
	return ok
}

// IATAFromICAO resolves a K-prefixed ICAO code to its IATA alias.
func (idx *Index) IATAFromICAO(code string) (string, bool) {
	iata, ok := idx.icaoToIATA[code]
	return iata, ok
}

// Coordinates returns the position of an airport code, trying the IATA
// table first and falling back to the K-prefixed ICAO form. Sentinel codes
// never resolve.
func (idx *Index) Coordinates(code string) (lat, lon float64, ok bool) {
	if code == "" || code == "UNKNOWN" || code == "GEO_TIMEOUT" {
		return 0, 0, false
	}
	if a, found := idx.iata[code]; found {
		return a.Lat, a.Lon, true
	}
	if a, found := idx.icao["K"+code]; found {
		return a.Lat, a.Lon, true
	}
	return 0, 0, false
}

// Nearest returns the US IATA airport closest to the given position by
// great-circle distance, or ok=false when the index is empty.
func (idx *Index) Nearest(lat, lon float64) (string, bool) {
	point := orb.Point{lon, lat}
	best := ""
	bestDist := 0.0
	for code, a := range idx.iata {
		d := geo.Distance(point, orb.Point{a.Lon, a.Lat})
		if best == "" || d < bestDist || (d == bestDist && code < best) {
			best = code
			bestDist = d
		}
	}
	return best, best != ""
}

// InContinentalUS reports whether a position falls inside the continental-US
// bounding box used to sanity-check resolved coordinates.
func InContinentalUS(lat, lon float64) bool {
	return lat >= latMin && lat <= latMax && lon >= lonMin && lon <= lonMax
}

// IATACount and ICAOAliasCount report table sizes for startup logging.
func (idx *Index) IATACount() int      { return len(idx.iata) }
func (idx *Index) ICAOAliasCount() int { return len(idx.icaoToIATA) }
