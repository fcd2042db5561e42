// Command validate performs integrity checks over a run's durable
// artifacts: the geocode cache file (schema conformance) and the enriched
// output CSVs (enrichment columns present, sentinel discipline, coordinate
// bounds).
//
// Usage:
//
//	go run ./cmd/validate \
//	  -cache ~/FAA_UAS_Sightings/geocoding_cache.json \
//	  -enriched-dir ~/FAA_UAS_Sightings/Processed_Files
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/uaswatch/uas-sightings-etl/internal/geocode"
)

var requiredColumns = []string{
	"Acft_Type", "UAS_Color", "Alt_Ft", "Evasive", "LEO_Agency",
	"Assigned_Airport", "Airport_Longitude", "Airport_Latitude",
}

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func (p *phase) report() {
	if p.passed() {
		fmt.Printf("PASS %s\n", p.name)
		return
	}
	fmt.Printf("FAIL %s\n", p.name)
	for _, e := range p.errors {
		fmt.Printf("  - %s\n", e)
	}
}

func main() {
	cachePath := flag.String("cache", "", "path to the geocode cache JSON file")
	enrichedDir := flag.String("enriched-dir", "", "directory tree containing Enriched_*.csv files")
	flag.Parse()

	if *cachePath == "" && *enrichedDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	exitCode := 0
	if *cachePath != "" {
		p := validateCache(*cachePath)
		p.report()
		if !p.passed() {
			exitCode = 1
		}
	}
	if *enrichedDir != "" {
		p := validateEnriched(*enrichedDir)
		p.report()
		if !p.passed() {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func validateCache(path string) *phase {
	p := &phase{name: "geocode cache schema"}

	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read cache: %v", err)
		return p
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		p.errorf("cache is not valid JSON: %v", err)
		return p
	}
	if err := geocode.ValidateEntries(entries); err != nil {
		p.errorf("schema violation: %v", err)
		return p
	}
	fmt.Printf("  cache entries: %d\n", len(entries))
	return p
}

func validateEnriched(dir string) *phase {
	p := &phase{name: "enriched output integrity"}

	files, err := filepath.Glob(filepath.Join(dir, "*", "Enriched_*.csv"))
	if err != nil {
		p.errorf("list enriched files: %v", err)
		return p
	}
	if len(files) == 0 {
		p.errorf("no Enriched_*.csv files under %s", dir)
		return p
	}

	totalRows := 0
	for _, path := range files {
		rows, err := checkFile(p, path)
		if err != nil {
			p.errorf("%s: %v", filepath.Base(path), err)
			continue
		}
		totalRows += rows
	}
	fmt.Printf("  files: %d, rows: %d\n", len(files), totalRows)
	return p
}

func checkFile(p *phase, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("empty file")
	}

	header := records[0]
	cols := make(map[string]int, len(header))
	for i, col := range header {
		cols[col] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			p.errorf("%s: missing column %q", filepath.Base(path), required)
			return 0, nil
		}
	}

	lonCol, latCol := cols["Airport_Longitude"], cols["Airport_Latitude"]
	for n, row := range records[1:] {
		lon, lat := cellAt(row, lonCol), cellAt(row, latCol)
		if lon == "" || lat == "" {
			continue
		}
		lonV, errLon := strconv.ParseFloat(lon, 64)
		latV, errLat := strconv.ParseFloat(lat, 64)
		if errLon != nil || errLat != nil {
			p.errorf("%s row %d: non-numeric coordinates (%q, %q)", filepath.Base(path), n+2, lat, lon)
			continue
		}
		// Alaska/Hawaii airports legitimately fall outside the box; flag
		// only coordinates that cannot be a US airport at all.
		if latV < 15 || latV > 72 || lonV < -180 || lonV > -60 {
			p.errorf("%s row %d: coordinates outside US range (%.4f, %.4f)", filepath.Base(path), n+2, latV, lonV)
		}
	}
	return len(records) - 1, nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
