package web

import (
	"net/http"
	"os"
	"strconv"

	"github.com/sidhushesank/ethical-dowry-analyser/internal/core"
)

// SummaryResponse is the JSON form of the dashboard summary.
type SummaryResponse struct {
	Dataset        string        `json:"dataset"`
	Total          int           `json:"total"`
	Open           int           `json:"open"`
	Closed         int           `json:"closed"`
	RegionsCovered int           `json:"regions_covered"`
	Trend          TrendResponse `json:"trend"`
}

// TrendResponse holds the aligned per-year series.
type TrendResponse struct {
	Years  []int `json:"years"`
	Total  []int `json:"total"`
	Open   []int `json:"open"`
	Closed []int `json:"closed"`
}

// handleAPISummary returns the summary of the caller's active dataset.
func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	sum := core.Summarize(snap.ds)
	writeJSON(w, r, http.StatusOK, SummaryResponse{
		Dataset:        snap.name,
		Total:          sum.Total,
		Open:           sum.Open,
		Closed:         sum.Closed,
		RegionsCovered: sum.RegionsCovered,
		Trend: TrendResponse{
			Years:  sum.Trend.Years,
			Total:  sum.Trend.Total,
			Open:   sum.Trend.Open,
			Closed: sum.Trend.Closed,
		},
	})
}

// HotspotsResponse lists mapped points and regions without coordinates.
type HotspotsResponse struct {
	Points   []core.Hotspot `json:"points"`
	Unmapped []RegionCount  `json:"unmapped"`
}

// RegionCount is a region with its case count.
type RegionCount struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// handleAPIHotspots returns hotspot points for the active dataset.
func (s *Server) handleAPIHotspots(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	m := core.Hotspots(snap.ds)
	resp := HotspotsResponse{
		Points:   m.Points,
		Unmapped: make([]RegionCount, len(m.Unmapped)),
	}
	if resp.Points == nil {
		resp.Points = []core.Hotspot{}
	}
	for i, b := range m.Unmapped {
		resp.Unmapped[i] = RegionCount{Region: b.Label, Count: b.Value}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// Activity listing bounds.
const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// handleAPIActivity lists recent activity, newest first.
func (s *Server) handleAPIActivity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxActivityLimit {
			s.respondError(w, r, &core.InvalidParameterError{Name: "limit", Value: raw, Err: err}, 0)
			return
		}
		limit = n
	}

	entries, err := s.activity.Recent(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []core.ActivityEntry{}
	}
	writeJSON(w, r, http.StatusOK, entries)
}

// handleUploadQueueStatus returns the current state of the upload limiter.
func (s *Server) handleUploadQueueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.uploads.Limiter().Status())
}

// HealthResponse reports process health.
type HealthResponse struct {
	Status        string                   `json:"status"`
	SampleDataset bool                     `json:"sample_dataset"`
	Uploads       core.UploadLimiterStatus `json:"uploads"`
}

// handleHealth reports "ok", or "degraded" when the sample dataset is missing.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Uploads: s.uploads.Limiter().Status(),
	}
	if _, err := os.Stat(s.resolver.DefaultPath); err == nil {
		resp.SampleDataset = true
	} else {
		resp.Status = "degraded"
	}
	writeJSON(w, r, http.StatusOK, resp)
}
