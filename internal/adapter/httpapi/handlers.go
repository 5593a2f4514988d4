package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/couchcryptid/fleet-nox-analytics/internal/domain"
	"github.com/couchcryptid/fleet-nox-analytics/internal/export"
	"github.com/couchcryptid/fleet-nox-analytics/internal/ingest"
	"github.com/couchcryptid/fleet-nox-analytics/internal/session"
)

const dateLayout = "2006-01-02"

// fileReport is the JSON shape of one file's load outcome.
type fileReport struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Records int    `json:"records"`
	Dropped int    `json:"dropped"`
	Error   string `json:"error,omitempty"`
}

func fileReports(results []ingest.FileResult) []fileReport {
	reports := make([]fileReport, len(results))
	for i, r := range results {
		reports[i] = fileReport{
			Name:    r.Name,
			Rows:    r.Rows,
			Records: r.Records,
			Dropped: r.Dropped,
		}
		if r.Err != nil {
			reports[i].Error = r.Err.Error()
		}
	}
	return reports
}

// handleCreateSession accepts a multipart upload of one or more CSV files
// under the "files" field, normalizes them, and opens a session over the
// combined dataset. Per-file failures are reported without failing the
// upload; only a batch where nothing loads is rejected.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parse upload: %v", err))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded under field \"files\"")
		return
	}

	sources := make([]ingest.Source, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("open %s: %v", fh.Filename, err))
			return
		}
		defer f.Close()
		sources = append(sources, ingest.Source{Name: fh.Filename, Reader: f})
	}

	report, err := s.loader.LoadAll(sources)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": err.Error(),
			"files": fileReports(report.Files),
		})
		return
	}

	sess := s.store.Create(report.Dataset, report.Files)
	spanStart, spanEnd := sess.Dataset.TimeSpan()
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"loaded_at":  sess.Dataset.LoadedAt,
		"n_records":  sess.Dataset.Len(),
		"vehicles":   sess.Dataset.Vehicles(),
		"span_start": spanStart,
		"span_end":   spanEnd,
		"files":      fileReports(sess.Files),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.store.Delete(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	dataset, ok := s.filteredDataset(w, r)
	if !ok {
		return
	}

	stats, err := domain.ComputeSummary(dataset)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyDataset) {
			writeError(w, http.StatusUnprocessableEntity, "no data after applying filters")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	dataset, ok := s.filteredDataset(w, r)
	if !ok {
		return
	}
	threshold, err := s.threshold(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := domain.ComputeRanking(dataset, threshold)
	writeJSON(w, http.StatusOK, map[string]any{
		"threshold_nox": threshold,
		"ranking":       rows,
	})
}

func (s *Server) handleRankingCSV(w http.ResponseWriter, r *http.Request) {
	dataset, ok := s.filteredDataset(w, r)
	if !ok {
		return
	}
	threshold, err := s.threshold(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := domain.ComputeRanking(dataset, threshold)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="vehicle_ranking.csv"`)
	if err := export.WriteRankingCSV(w, rows); err != nil {
		s.logger.Error("write ranking csv", "error", err)
	}
}

func (s *Server) handleGlobalMetricsCSV(w http.ResponseWriter, r *http.Request) {
	dataset, ok := s.filteredDataset(w, r)
	if !ok {
		return
	}
	threshold, err := s.threshold(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := domain.ComputeSummary(dataset)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyDataset) {
			writeError(w, http.StatusUnprocessableEntity, "no data after applying filters")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="global_metrics.csv"`)
	if err := export.WriteGlobalMetricsCSV(w, stats, threshold); err != nil {
		s.logger.Error("write metrics csv", "error", err)
	}
}

// handleRecords returns the filtered canonical records themselves; chart
// rendering happens entirely client-side.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	dataset, ok := s.filteredDataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"n_records": dataset.Len(),
		"records":   dataset.Records,
	})
}

func (s *Server) handleVehicleMeans(w http.ResponseWriter, r *http.Request) {
	dataset, ok := s.filteredDataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, domain.MeanNOxByVehicle(dataset))
}

func (s *Server) handleHourlyMeans(w http.ResponseWriter, r *http.Request) {
	dataset, ok := s.filteredDataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, domain.MeanNOxByHour(dataset))
}

// handlePlayback steps the session's playback cursor by the "advance"
// parameter (default 0) and returns the resulting time window. The
// window width defaults to the configured playback window.
func (s *Server) handlePlayback(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	width := s.cfg.PlaybackWindow
	if v := r.URL.Query().Get("width"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid width %q", v))
			return
		}
		width = d
	}

	advance := 0
	if v := r.URL.Query().Get("advance"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid advance %q", v))
			return
		}
		advance = n
	}

	writeJSON(w, http.StatusOK, sess.Playback(width, advance))
}

// session resolves the request's session or writes a 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

// filteredDataset resolves the session and applies the request's optional
// date-range and vehicle filters to its dataset.
func (s *Server) filteredDataset(w http.ResponseWriter, r *http.Request) (domain.FleetDataset, bool) {
	sess, ok := s.session(w, r)
	if !ok {
		return domain.FleetDataset{}, false
	}

	dataset := sess.Dataset
	q := r.URL.Query()

	startStr, endStr := q.Get("start"), q.Get("end")
	if startStr != "" || endStr != "" {
		start, end, err := parseDateRange(startStr, endStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return domain.FleetDataset{}, false
		}
		dataset = domain.FilterByDateRange(dataset, start, end)
	}

	if v := q.Get("vehicles"); v != "" {
		dataset = domain.FilterByVehicles(dataset, strings.Split(v, ","))
	}
	return dataset, true
}

// parseDateRange parses inclusive date bounds, leaving an absent bound
// open.
func parseDateRange(startStr, endStr string) (start, end time.Time, err error) {
	start = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

	if startStr != "" {
		start, err = time.Parse(dateLayout, startStr)
		if err != nil {
			return start, end, fmt.Errorf("invalid start date %q, want YYYY-MM-DD", startStr)
		}
	}
	if endStr != "" {
		end, err = time.Parse(dateLayout, endStr)
		if err != nil {
			return start, end, fmt.Errorf("invalid end date %q, want YYYY-MM-DD", endStr)
		}
	}
	return start, end, nil
}

func (s *Server) threshold(r *http.Request) (float64, error) {
	v := r.URL.Query().Get("threshold")
	if v == "" {
		return s.cfg.DefaultNOxThreshold, nil
	}
	threshold, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid threshold %q", v)
	}
	return threshold, nil
}
