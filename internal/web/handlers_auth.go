package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sidhushesank/ethical-dowry-analyser/internal/auth"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/core"
	mw "github.com/sidhushesank/ethical-dowry-analyser/internal/web/middleware"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/web/templates"
)

// handleLoginForm renders the sign-in page, or skips it for signed-in users.
func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	next := mw.SafeRedirect(r.URL.Query().Get("next"), "")
	if s.signedIn(r) {
		http.Redirect(w, r, mw.SafeRedirect(next, "/"), http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, templates.Login(templates.LoginView{Next: next}))
}

// handleLogin checks credentials, renews the session token and redirects to
// the page that required login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	next := mw.SafeRedirect(r.PostFormValue("next"), "")

	id, err := s.auth.Authenticate(r.Context(), username, password)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			status = statusFor(err)
			reqLogger(r).Error("authentication failed", "error", err)
		} else {
			reqLogger(r).Warn("login rejected", "username", username)
		}
		view := templates.LoginView{
			Username: username,
			Next:     next,
			Error:    core.MapError(err).Message,
		}
		s.render(w, r, status, templates.Login(view))
		return
	}

	if err := s.sessions.RenewToken(r.Context()); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.sessions.Put(r.Context(), sessionUser, id.Username)
	s.sessions.Put(r.Context(), sessionRole, id.Role)

	s.record(r, core.ActivityEntry{Action: core.ActionLogin, Username: id.Username})
	reqLogger(r).Info("user signed in", "username", id.Username, "role", id.Role)

	http.Redirect(w, r, mw.SafeRedirect(next, "/"), http.StatusSeeOther)
}

// handleLogout ends the session, including any uploaded dataset selection.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if user := s.currentUser(r); user != "" {
		s.record(r, core.ActivityEntry{Action: core.ActionLogout, Username: user})
	}
	if err := s.sessions.Destroy(r.Context()); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// record writes an activity entry. Failures are logged and never fail the request.
func (s *Server) record(r *http.Request, e core.ActivityEntry) {
	if err := s.activity.Record(r.Context(), e); err != nil {
		reqLogger(r).Warn("failed to record activity", "action", e.Action, "error", err)
	}
}
