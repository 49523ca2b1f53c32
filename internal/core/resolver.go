package core

import (
	"path/filepath"
	"strings"
)

// SampleDisplayName is shown when no upload is active.
const SampleDisplayName = "Sample Dataset"

// Resolver maps a session's upload marker to a dataset identifier.
// It performs no I/O; the Loader reports missing files.
type Resolver struct {
	UploadDir   string
	DefaultPath string
}

// NewResolver creates a Resolver for the given upload directory and default dataset.
func NewResolver(uploadDir, defaultPath string) *Resolver {
	return &Resolver{UploadDir: uploadDir, DefaultPath: defaultPath}
}

// Resolve returns the uploads-directory path for marker, or the default
// dataset path when marker is empty.
func (r *Resolver) Resolve(marker string) string {
	if marker == "" {
		return r.DefaultPath
	}
	// Markers are written by the upload store, but a tampered store must not
	// escape the upload directory.
	return filepath.Join(r.UploadDir, filepath.Base(marker))
}

// IsDefault reports whether marker selects the bundled sample.
func (r *Resolver) IsDefault(marker string) bool {
	return marker == ""
}

// DisplayName returns the name shown to users for marker: the original
// upload filename (stored-name prefix removed) or SampleDisplayName.
func (r *Resolver) DisplayName(marker string) string {
	if marker == "" {
		return SampleDisplayName
	}
	return OriginalName(filepath.Base(marker))
}

// OriginalName strips the "<uuid>_" prefix added by UploadStore.
func OriginalName(stored string) string {
	prefix, rest, ok := strings.Cut(stored, "_")
	if ok && len(prefix) == uuidLen && rest != "" {
		return rest
	}
	return stored
}

// uuidLen is the length of a canonical textual UUID.
const uuidLen = 36
