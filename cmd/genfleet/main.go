// Command genfleet generates deterministic mock fleet telemetry CSV
// fixtures in the vendor variants the normalizer accepts: one file keyed
// by vehicle_name with WKT positions and epoch-millisecond timestamps,
// and one keyed by vehicle_number with latitude/longitude columns and ISO
// timestamps. A small fraction of rows carry deliberately bad values to
// exercise the coercion and drop paths.
//
// Usage:
//
//	go run ./cmd/genfleet -out testdata -vehicles 4 -rows 200 -seed 1
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var baseTime = time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for fixture CSVs")
	vehicles := flag.Int("vehicles", 4, "number of vehicles per file")
	rows := flag.Int("rows", 200, "number of rows per file")
	seed := flag.Int64("seed", 1, "random seed for reproducible fixtures")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))

	wktPath := filepath.Join(*outDir, "fleet_wkt.csv")
	if err := writeWKTVariant(wktPath, rng, *vehicles, *rows); err != nil {
		return fmt.Errorf("writing %s: %w", wktPath, err)
	}
	log.Printf("wrote %s: %d rows", wktPath, *rows)

	latlonPath := filepath.Join(*outDir, "fleet_latlon.csv")
	if err := writeLatLonVariant(latlonPath, rng, *vehicles, *rows); err != nil {
		return fmt.Errorf("writing %s: %w", latlonPath, err)
	}
	log.Printf("wrote %s: %d rows", latlonPath, *rows)

	return nil
}

// writeWKTVariant emits the vehicle_name + position + epoch-ms shape.
func writeWKTVariant(path string, rng *rand.Rand, vehicles, rows int) error {
	return writeCSV(path, append([][]string{
		{"vehicle_name", "timestamp", "NOx", "O2", "position", "route"},
	}, wktRows(rng, vehicles, rows)...))
}

func wktRows(rng *rand.Rand, vehicles, rows int) [][]string {
	out := make([][]string, 0, rows)
	for i := 0; i < rows; i++ {
		v := rng.Intn(vehicles)
		ts := baseTime.Add(time.Duration(i) * 30 * time.Second)
		lat := -22.90 + rng.Float64()*0.1
		lon := -43.20 + rng.Float64()*0.1

		nox := fmt.Sprintf("%.2f", 20+rng.Float64()*80)
		position := fmt.Sprintf("POINT(%.5f %.5f)", lon, lat)
		switch {
		case i%37 == 0:
			nox = "sensor_fault" // degrades to missing, row dropped
		case i%53 == 0:
			position = "GARBAGE" // degrades to no position, row kept
		}

		out = append(out, []string{
			fmt.Sprintf("TRUCK_%02d", v+1),
			strconv.FormatInt(ts.UnixMilli(), 10),
			nox,
			fmt.Sprintf("%.2f", 8+rng.Float64()*8),
			position,
			fmt.Sprintf("R-%d", v%3+1),
		})
	}
	return out
}

// writeLatLonVariant emits the vehicle_number + latitude/longitude + ISO
// timestamp shape.
func writeLatLonVariant(path string, rng *rand.Rand, vehicles, rows int) error {
	records := [][]string{
		{"vehicle_number", "timestamp", "NOx", "O2", "latitude", "longitude"},
	}
	for i := 0; i < rows; i++ {
		v := rng.Intn(vehicles)
		ts := baseTime.Add(time.Duration(i) * 45 * time.Second)

		o2 := fmt.Sprintf("%.2f", 8+rng.Float64()*8)
		if i%41 == 0 {
			o2 = "" // missing O2 keeps the row
		}

		records = append(records, []string{
			strconv.Itoa(100 + v),
			ts.Format(time.RFC3339),
			fmt.Sprintf("%.2f", 20+rng.Float64()*80),
			o2,
			fmt.Sprintf("%.5f", -22.90+rng.Float64()*0.1),
			fmt.Sprintf("%.5f", -43.20+rng.Float64()*0.1),
		})
	}
	return writeCSV(path, records)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	return w.WriteAll(records)
}
