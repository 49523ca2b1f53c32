package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sidhushesank/ethical-dowry-analyser/internal/core"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/logging"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/web/templates"
)

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and headers.
const multipartOverhead = 1 << 20

// recentActivityLimit is the number of entries shown to admins under the
// upload form.
const recentActivityLimit = 10

// resetFlash is shown after returning to the sample dataset.
const resetFlash = "Data reset to default sample dataset."

// handleUploadForm renders the upload form.
func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	s.renderUpload(w, r, http.StatusOK, nil)
}

// renderUpload renders the upload page, optionally with an error.
func (s *Server) renderUpload(w http.ResponseWriter, r *http.Request, status int, uploadErr error) {
	marker := s.activeMarker(r)
	view := templates.UploadView{
		MaxSize:  s.uploads.MaxSize(),
		CanReset: !s.resolver.IsDefault(marker),
	}
	if uploadErr != nil {
		msg := core.MapError(uploadErr)
		view.Error = &msg
	}

	// Activity names other users and their addresses.
	if s.isAdmin(r) {
		activity, err := s.activity.Recent(r.Context(), recentActivityLimit)
		if err != nil {
			reqLogger(r).Warn("failed to list activity", "error", err)
		}
		view.Activity = activity
	}

	s.render(w, r, status, templates.Upload(
		s.page(r, templates.NavUpload, "Upload", s.resolver.DisplayName(marker)),
		view,
	))
}

// handleUpload stores an uploaded CSV and makes it the session's active
// dataset. Rejected files are never stored and leave the selection unchanged.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploads.MaxSize()+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile):
			err = core.ErrEmptyFilename
		case errors.As(err, &maxErr):
			err = fmt.Errorf("upload form: %w", core.ErrFileTooLarge)
		default:
			reqLogger(r).Warn("unreadable upload form", "error", err)
			s.renderUpload(w, r, http.StatusBadRequest, err)
			return
		}
		s.rejectUpload(w, r, err)
		return
	}
	defer file.Close()

	log := logging.WithFields(r.Context(), "file", header.Filename, "size", header.Size)

	stored, err := s.uploads.Save(r.Context(), header.Filename, file)
	if err != nil {
		s.rejectUpload(w, r, err)
		return
	}

	s.sessions.Put(r.Context(), sessionDataset, stored.StoredName)
	s.setFlash(r, fmt.Sprintf("Uploaded %s (%s rows).", stored.Name, templates.FormatCount(stored.Rows)))
	s.record(r, core.ActivityEntry{
		Action:   core.ActionUpload,
		Username: s.currentUser(r),
		Dataset:  stored.Name,
		Rows:     stored.Rows,
	})

	log.Info("upload stored",
		"stored_name", stored.StoredName,
		"rows", stored.Rows,
		"bytes", stored.Bytes,
		"duration_ms", stored.Duration.Milliseconds(),
	)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// rejectUpload logs a refused upload and re-renders the form with the reason.
func (s *Server) rejectUpload(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		reqLogger(r).Error("upload failed", "error", err)
	} else {
		reqLogger(r).Warn("upload rejected", "error", err, "code", core.MapError(err).Code)
	}
	s.renderUpload(w, r, status, err)
}

// handleReset clears the session's upload so the sample dataset is used again.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	marker := s.activeMarker(r)
	s.sessions.Remove(r.Context(), sessionDataset)
	s.setFlash(r, resetFlash)

	s.record(r, core.ActivityEntry{
		Action:   core.ActionReset,
		Username: s.currentUser(r),
		Dataset:  s.resolver.DisplayName(marker),
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
