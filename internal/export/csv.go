// Package export renders analysis outputs as CSV for download by the
// presentation layer.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/fleet-nox-analytics/internal/domain"
)

// WriteRankingCSV writes the per-vehicle ranking table, one row per
// vehicle in the table's order.
func WriteRankingCSV(w io.Writer, rows []domain.RankingRow) error {
	cw := csv.NewWriter(w)

	header := []string{"vehicle_id", "mean_nox", "median_nox", "fraction_time_above_threshold"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write ranking header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.VehicleID,
			formatFloat(row.MeanNOx),
			formatFloat(row.MedianNOx),
			formatFloat(row.FractionAboveThreshold),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write ranking row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteGlobalMetricsCSV writes the fleet-wide summary as a single-row CSV,
// with the ranking threshold appended so the export is self-describing.
func WriteGlobalMetricsCSV(w io.Writer, stats domain.SummaryStats, threshold float64) error {
	cw := csv.NewWriter(w)

	header := []string{"global_mean_nox", "global_median_nox", "n_vehicles", "n_records", "threshold_nox"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write metrics header: %w", err)
	}

	record := []string{
		formatFloat(stats.GlobalMeanNOx),
		formatFloat(stats.GlobalMedianNOx),
		strconv.Itoa(stats.VehicleCount),
		strconv.Itoa(stats.RecordCount),
		formatFloat(threshold),
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("write metrics row: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
