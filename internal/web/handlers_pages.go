package web

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"golang.org/x/sync/errgroup"

	"github.com/sidhushesank/ethical-dowry-analyser/internal/charts"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/core"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/web/templates"
)

// render writes a component with the given status.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		reqLogger(r).Error("render page", "path", r.URL.Path, "error", err)
	}
}

// chartURI turns a rendered chart into a data URI. An empty series yields ""
// so the page can show a placeholder.
func chartURI(png []byte, err error) (string, error) {
	if errors.Is(err, charts.ErrNoData) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return charts.DataURI(png), nil
}

// handleDashboard shows the summary cards and the year trend.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	summary := core.Summarize(snap.ds)
	trend, err := chartURI(s.charts.Trend("Cases per year", summary.Trend))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.render(w, r, http.StatusOK, templates.Dashboard(
		s.page(r, templates.NavDashboard, "Dashboard", snap.name),
		templates.DashboardView{Summary: summary, TrendChart: trend},
	))
}

// handleTrends shows cases per year and the case type distribution.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	data := core.BuildCharts(core.Summarize(snap.ds), snap.ds)
	view := templates.TrendsView{YearBars: data.YearBars, CaseTypes: data.CaseTypes}

	// Both charts read the same immutable snapshot.
	var g errgroup.Group
	g.Go(func() (err error) {
		view.YearChart, err = chartURI(s.charts.Bar("Cases by year", data.YearBars))
		return err
	})
	g.Go(func() (err error) {
		view.CaseTypeChart, err = chartURI(s.charts.Pie("Case types", data.CaseTypes))
		return err
	})
	if err := g.Wait(); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.render(w, r, http.StatusOK, templates.Trends(s.page(r, templates.NavTrends, "Trends", snap.name), view))
}

// handleHotspots ranks regions by case count.
func (s *Server) handleHotspots(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	regions := core.CountBy(snap.ds, func(c core.CaseRecord) string { return c.Region })
	chart, err := chartURI(s.charts.Bar("Cases by region", regions))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.render(w, r, http.StatusOK, templates.Hotspots(
		s.page(r, templates.NavHotspots, "Hotspots", snap.name),
		templates.HotspotsView{RegionChart: chart, Regions: regions},
	))
}

// handleHotspotsMap places region counts on a map.
func (s *Server) handleHotspotsMap(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.render(w, r, http.StatusOK, templates.HotspotsMap(
		s.page(r, templates.NavMap, "Hotspot map", snap.name),
		core.Hotspots(snap.ds),
	))
}
