// Command gensample generates synthetic FAA-style sighting report fixtures
// for test suites and local runs. It writes a raw input CSV plus an expected
// extraction JSON produced by the actual domain package, so fixtures track
// real engine behavior.
//
// Usage:
//
//	go run ./cmd/gensample \
//	  -out data/sample/UAS_Sightings_2024_Q2.csv \
//	  -expected data/sample/expected_extractions.json \
//	  -rows 50
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/uaswatch/uas-sightings-etl/internal/domain"
)

var baseDate = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

// narrative templates cover the extraction paths: advisory aircraft clause,
// drone color, altitude forms, relative position fixes, ICAO codes, agency
// notification, and not-notified phrasings.
var templates = []struct {
	narrative string
	city      string
	state     string
}{
	{"UAS INCIDENT: ADVISED, C172, REPORTED A RED DRONE AT 1,500 FEET, 5 NW LAX. EVASIVE ACTION TAKEN. LOS ANGELES PD NOTIFIED.", "Los Angeles", "CA"},
	{"PILOT ADVISED, B738, WHITE UAS OBSERVED AT FL250 OVER PHX CLASS B AIRSPACE. NO EVASIVE ACTION. PHOENIX TRACON ADVISED. STATE POLICE NOTIFIED.", "Phoenix", "AZ"},
	{"DRONE SIGHTED NEAR KSEA AT 800 FT. SEATTLE TOWER ADVISED. NOTIFICATION NOT REPORTED.", "Seattle", "WA"},
	{"AIRCRAFT TYPE: PA28. BLACK AND SILVER UAS 3 SE BOS AT 2,000 FEET. BOSTON ATCT ADVISED. MASSACHUSETTS STATE POLICE NOTIFIED.", "Boston", "Massachusetts"},
	{"A CESSNA REPORTED A MULTI-COLOR DRONE OFF RUNWAY 27L ORD. CHICAGO PD NOTIFIED.", "Chicago", "IL"},
	{"UAS REPORTED BY A PILOT ON THE DEN-SLC ROUTE AT FL310. LEOS NOT NOTIFIED.", "", ""},
	{"GREEN DRONE HOVERING OVER CITY PARK. NO AIRCRAFT INVOLVED. SHERIFF NOTIFIED.", "Springfield", "IL"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the raw sighting CSV")
	expected := flag.String("expected", "", "output path for the expected extraction JSON")
	rows := flag.Int("rows", len(templates), "number of rows to generate (templates repeat)")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	// Fixed clock for reproducible ProcessedAt stamps in the fixture.
	domain.SetClock(clockwork.NewFakeClockAt(baseDate))
	defer domain.SetClock(nil)

	if err := os.MkdirAll(filepath.Dir(*out), 0o750); err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Date of Sighting", "Summary", "City", "State"}); err != nil {
		return err
	}

	cfg := domain.DefaultExtractorConfig()
	var extractions []domain.EnrichedSighting

	for i := 0; i < *rows; i++ {
		tpl := templates[i%len(templates)]
		date := baseDate.AddDate(0, 0, i).Format("2006-01-02")
		if err := w.Write([]string{date, tpl.narrative, tpl.city, tpl.state}); err != nil {
			return err
		}

		rec := domain.SightingRecord{Narrative: tpl.narrative, City: tpl.city, State: tpl.state}
		fields := domain.ExtractDetails(rec.Narrative, cfg, nil)
		fields.NotifyingAgency = domain.ExtractAgency(rec.Narrative, cfg, nil)
		extractions = append(extractions, domain.NewEnrichedSighting(rec, fields))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	fmt.Printf("wrote %d rows to %s\n", *rows, *out)

	if *expected == "" {
		return nil
	}
	data, err := json.MarshalIndent(extractions, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(*expected, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote expected extractions to %s\n", *expected)
	return nil
}
