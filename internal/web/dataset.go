package web

import (
	"net/http"

	"github.com/sidhushesank/ethical-dowry-analyser/internal/core"
)

// snapshot is the dataset a request works from. Every view rendered for one
// request is derived from the same snapshot.
type snapshot struct {
	ds     *core.Dataset
	marker string
	name   string
}

// loadSnapshot reads the session marker once and loads the active dataset.
func (s *Server) loadSnapshot(r *http.Request) (*snapshot, error) {
	marker := s.activeMarker(r)
	ds, err := s.loader.Load(r.Context(), s.resolver.Resolve(marker))
	if err != nil {
		return nil, err
	}
	return &snapshot{ds: ds, marker: marker, name: s.resolver.DisplayName(marker)}, nil
}

// criteriaFrom reads the filter query parameters.
func criteriaFrom(r *http.Request) core.FilterCriteria {
	q := r.URL.Query()
	return core.FilterCriteria{
		Region:   q.Get("region"),
		Year:     q.Get("year"),
		CaseType: q.Get("case_type"),
		Status:   q.Get("status"),
	}.Normalize()
}
