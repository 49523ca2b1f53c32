package web

import (
	"net/http"

	"github.com/sidhushesank/ethical-dowry-analyser/internal/auth"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/web/templates"
)

// Session keys.
const (
	sessionUser    = "user"
	sessionRole    = "role"
	sessionDataset = "uploaded_csv"
	sessionFlash   = "flash"
)

// signedIn reports whether the request carries a signed-in session.
func (s *Server) signedIn(r *http.Request) bool {
	return s.sessions.GetString(r.Context(), sessionUser) != ""
}

// currentUser returns the signed-in username.
func (s *Server) currentUser(r *http.Request) string {
	return s.sessions.GetString(r.Context(), sessionUser)
}

// identity returns the signed-in user and role.
func (s *Server) identity(r *http.Request) auth.Identity {
	ctx := r.Context()
	return auth.Identity{
		Username: s.sessions.GetString(ctx, sessionUser),
		Role:     s.sessions.GetString(ctx, sessionRole),
	}
}

// isAdmin reports whether the session user has the admin role.
func (s *Server) isAdmin(r *http.Request) bool {
	return s.identity(r).IsAdmin()
}

// activeMarker returns the session's upload marker; empty selects the sample.
func (s *Server) activeMarker(r *http.Request) string {
	return s.sessions.GetString(r.Context(), sessionDataset)
}

func (s *Server) setFlash(r *http.Request, msg string) {
	s.sessions.Put(r.Context(), sessionFlash, msg)
}

// page builds the shared page fields and consumes any pending flash message.
func (s *Server) page(r *http.Request, nav, title, dataset string) templates.Page {
	id := s.identity(r)
	return templates.Page{
		Title:   title,
		Nav:     nav,
		User:    id.Username,
		Role:    id.Role,
		Flash:   s.sessions.PopString(r.Context(), sessionFlash),
		Dataset: dataset,
	}
}
