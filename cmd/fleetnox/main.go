// Command fleetnox analyzes fleet telemetry CSV exports offline: it
// normalizes the given files, applies optional date and vehicle filters,
// prints fleet-wide summary statistics and the per-vehicle ranking, and
// optionally writes the two CSV exports.
//
// Usage:
//
//	go run ./cmd/fleetnox \
//	  -threshold 50 \
//	  -start 2025-01-01 -end 2025-01-31 \
//	  -vehicles TRUCK_01,TRUCK_02 \
//	  -ranking-out vehicle_ranking.csv \
//	  -metrics-out global_metrics.csv \
//	  export1.csv export2.csv
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/fleet-nox-analytics/internal/config"
	"github.com/couchcryptid/fleet-nox-analytics/internal/domain"
	"github.com/couchcryptid/fleet-nox-analytics/internal/export"
	"github.com/couchcryptid/fleet-nox-analytics/internal/ingest"
	"github.com/couchcryptid/fleet-nox-analytics/internal/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	threshold := flag.Float64("threshold", 50, "NOx threshold for the exceedance ranking")
	start := flag.String("start", "", "inclusive start date (YYYY-MM-DD)")
	end := flag.String("end", "", "inclusive end date (YYYY-MM-DD)")
	vehicles := flag.String("vehicles", "", "comma-separated vehicle IDs to keep (empty keeps all)")
	rankingOut := flag.String("ranking-out", "", "path to write the ranking CSV")
	metricsOut := flag.String("metrics-out", "", "path to write the global metrics CSV")
	schemaPath := flag.String("schema", "", "optional YAML schema override file")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "missing input CSV paths")
		return 1
	}

	schema, err := config.LoadSchema(*schemaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	logger := observability.NewLogger("warn", "text")
	loader := ingest.NewLoader(schema, logger, observability.NewMetrics())

	sources := make([]ingest.Source, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		defer f.Close()
		sources = append(sources, ingest.Source{Name: path, Reader: f})
	}

	report, err := loader.LoadAll(sources)
	for _, fr := range report.Files {
		if fr.Failed() {
			fmt.Fprintf(os.Stderr, "SKIP %s: %v\n", fr.Name, fr.Err)
			continue
		}
		fmt.Printf("%s: %d rows, %d records, %d dropped\n", fr.Name, fr.Rows, fr.Records, fr.Dropped)
	}
	if errors.Is(err, ingest.ErrNoLoadableFiles) {
		fmt.Fprintln(os.Stderr, "FATAL: no input file could be loaded")
		return 1
	}

	dataset, err := applyFilters(report.Dataset, *start, *end, *vehicles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	stats, err := domain.ComputeSummary(dataset)
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL: no data after applying filters")
		return 1
	}

	fmt.Println()
	fmt.Printf("Records:      %d\n", stats.RecordCount)
	fmt.Printf("Vehicles:     %d\n", stats.VehicleCount)
	fmt.Printf("Mean NOx:     %.2f\n", stats.GlobalMeanNOx)
	fmt.Printf("Median NOx:   %.2f\n", stats.GlobalMedianNOx)

	ranking := domain.ComputeRanking(dataset, *threshold)
	fmt.Printf("\nRanking (NOx > %g):\n", *threshold)
	for _, row := range ranking {
		fmt.Printf("  %-20s mean=%8.2f median=%8.2f above=%5.1f%%\n",
			row.VehicleID, row.MeanNOx, row.MedianNOx, 100*row.FractionAboveThreshold)
	}

	if *rankingOut != "" {
		if err := writeCSV(*rankingOut, func(f *os.File) error {
			return export.WriteRankingCSV(f, ranking)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		fmt.Printf("\nwrote %s\n", *rankingOut)
	}
	if *metricsOut != "" {
		if err := writeCSV(*metricsOut, func(f *os.File) error {
			return export.WriteGlobalMetricsCSV(f, stats, *threshold)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		fmt.Printf("wrote %s\n", *metricsOut)
	}
	return 0
}

func applyFilters(dataset domain.FleetDataset, start, end, vehicles string) (domain.FleetDataset, error) {
	if start != "" || end != "" {
		startDate := time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
		endDate := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
		var err error
		if start != "" {
			if startDate, err = time.Parse("2006-01-02", start); err != nil {
				return domain.FleetDataset{}, fmt.Errorf("invalid -start: %w", err)
			}
		}
		if end != "" {
			if endDate, err = time.Parse("2006-01-02", end); err != nil {
				return domain.FleetDataset{}, fmt.Errorf("invalid -end: %w", err)
			}
		}
		dataset = domain.FilterByDateRange(dataset, startDate, endDate)
	}
	if vehicles != "" {
		dataset = domain.FilterByVehicles(dataset, strings.Split(vehicles, ","))
	}
	return dataset, nil
}

func writeCSV(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
