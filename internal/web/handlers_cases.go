package web

import (
	"bytes"
	"net/http"

	"github.com/sidhushesank/ethical-dowry-analyser/internal/core"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/web/templates"
)

// handleCases renders one page of the filtered cases table. The dropdown
// options always come from the unfiltered dataset.
func (s *Server) handleCases(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	criteria := criteriaFrom(r)
	raw := r.URL.Query().Get("page")
	page, err := core.ParsePage(raw)
	if err != nil {
		reqLogger(r).Debug("invalid page parameter, using 1", "page", raw, "error", err)
		page = 1
	}

	result, err := core.Query(snap.ds, criteria, page)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	s.render(w, r, http.StatusOK, templates.Cases(
		s.page(r, templates.NavCases, "Cases", snap.name),
		templates.CasesView{
			Columns:  snap.ds.Columns,
			Criteria: criteria,
			Options:  core.Options(snap.ds),
			Result:   result,
		},
	))
}

// handleDownload sends the filtered dataset as a CSV attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	// Build the file first so a bad filter still gets an error page.
	var buf bytes.Buffer
	if err := core.Export(&buf, snap.ds, criteriaFrom(r)); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	s.record(r, core.ActivityEntry{
		Action:   core.ActionDownload,
		Username: s.currentUser(r),
		Dataset:  snap.name,
	})

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+core.ExportFilename)
	if _, err := w.Write(buf.Bytes()); err != nil {
		reqLogger(r).Warn("write export", "error", err)
	}
}
