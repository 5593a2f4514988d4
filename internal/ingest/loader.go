package ingest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/fleet-nox-analytics/internal/domain"
	"github.com/couchcryptid/fleet-nox-analytics/internal/observability"
)

// ErrNoLoadableFiles is returned when every input file fails to load.
// Individual file failures are isolated; only a fully failed batch is
// terminal.
var ErrNoLoadableFiles = errors.New("no input file could be loaded")

// Source is one named CSV input, typically an uploaded file or a path on
// disk.
type Source struct {
	Name   string
	Reader io.Reader
}

// FileResult describes the outcome of loading one source.
type FileResult struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Records int    `json:"records"`
	Dropped int    `json:"dropped"`
	Err     error  `json:"-"`
}

// Failed reports whether the source was rejected entirely.
func (r FileResult) Failed() bool { return r.Err != nil }

// LoadReport is the outcome of a batch load: one result per source plus
// the concatenated dataset built from the sources that succeeded.
type LoadReport struct {
	Files   []FileResult
	Dataset domain.FleetDataset
}

// Loader normalizes CSV sources into fleet datasets.
type Loader struct {
	schema  domain.Schema
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLoader creates a Loader using the given column schema.
func NewLoader(schema domain.Schema, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{schema: schema, logger: logger, metrics: metrics}
}

// LoadAll normalizes each source independently and concatenates the
// results in input order. A schema or read error in one source is
// recorded against that source without aborting its siblings. LoadAll
// returns ErrNoLoadableFiles when not a single source loads; the report
// still carries the per-file errors in that case.
func (l *Loader) LoadAll(sources []Source) (LoadReport, error) {
	report := LoadReport{Files: make([]FileResult, 0, len(sources))}

	var records []domain.CanonicalRecord
	loaded := 0
	for _, src := range sources {
		recs, result := l.loadOne(src)
		report.Files = append(report.Files, result)
		if result.Failed() {
			l.metrics.FilesFailed.Inc()
			l.logger.Warn("file rejected", "file", src.Name, "error", result.Err)
			continue
		}
		l.metrics.FilesLoaded.Inc()
		l.logger.Info("file loaded",
			"file", src.Name,
			"rows", result.Rows,
			"records", result.Records,
			"dropped", result.Dropped,
		)
		records = append(records, recs...)
		loaded++
	}

	if loaded == 0 {
		return report, ErrNoLoadableFiles
	}

	report.Dataset = domain.NewFleetDataset(records)
	l.metrics.DatasetRecords.Observe(float64(len(records)))
	return report, nil
}

func (l *Loader) loadOne(src Source) ([]domain.CanonicalRecord, FileResult) {
	result := FileResult{Name: src.Name}

	start := time.Now()
	table, err := ReadTable(src.Reader)
	if err != nil {
		result.Err = fmt.Errorf("%s: %w", src.Name, err)
		return nil, result
	}
	result.Rows = len(table.Rows)

	records, err := domain.Normalize(table, l.schema)
	l.metrics.NormalizeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		result.Err = fmt.Errorf("%s: %w", src.Name, err)
		return nil, result
	}

	result.Records = len(records)
	result.Dropped = result.Rows - result.Records
	l.metrics.RowsNormalized.Add(float64(result.Records))
	l.metrics.RowsDropped.Add(float64(result.Dropped))
	return records, result
}
