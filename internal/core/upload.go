package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxUploadSize is the default cap on stored upload size (16MB).
const DefaultMaxUploadSize int64 = 16 * 1024 * 1024

// AllowedExtension is the only accepted upload extension (compared case-insensitively).
const AllowedExtension = "csv"

// StoredUpload describes a file accepted by UploadStore.
type StoredUpload struct {
	Name       string // sanitized original filename
	StoredName string // session marker: "<uuid>_<Name>"
	Path       string
	Bytes      int64
	Rows       int
	Duration   time.Duration
}

// UploadStore validates and stores uploaded datasets in a directory.
type UploadStore struct {
	dir     string
	maxSize int64
	loader  *Loader
	limiter *UploadLimiter
}

// NewUploadStore creates the upload directory if needed.
func NewUploadStore(dir string, maxSize int64, loader *Loader, limiter *UploadLimiter) (*UploadStore, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	if loader == nil {
		loader = NewLoader(0)
	}
	if limiter == nil {
		limiter = NewUploadLimiter(DefaultMaxConcurrentUploads, DefaultMaxWaitTime)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &UploadStore{dir: dir, maxSize: maxSize, loader: loader, limiter: limiter}, nil
}

// Dir returns the upload directory.
func (s *UploadStore) Dir() string { return s.dir }

// MaxSize returns the upload size cap in bytes.
func (s *UploadStore) MaxSize() int64 { return s.maxSize }

// Limiter returns the store's concurrency limiter.
func (s *UploadStore) Limiter() *UploadLimiter { return s.limiter }

// Save checks and stores an uploaded CSV. The stored file is parsed once with
// the Loader; a file that fails schema validation is removed and the error is
// returned unchanged.
func (s *UploadStore) Save(ctx context.Context, filename string, r io.Reader) (*StoredUpload, error) {
	start := time.Now()

	if strings.TrimSpace(filename) == "" {
		return nil, ErrEmptyFilename
	}
	if !AllowedFile(filename) {
		return nil, ErrNotCSV
	}
	name := SanitizeFilename(filename)
	if name == "" || !AllowedFile(name) {
		return nil, ErrInvalidFilename
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	stored := uuid.NewString() + "_" + name
	path := filepath.Join(s.dir, stored)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create upload: %w", err)
	}

	keep := false
	defer func() {
		f.Close()
		if !keep {
			if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
				slog.Warn("failed to remove rejected upload", "path", path, "error", rmErr)
			}
		}
	}()

	lr := newLimitedReader(r, s.maxSize)
	n, err := io.Copy(f, lr)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if n == 0 {
		return nil, &SchemaError{Identifier: name, Missing: RequiredColumns, Err: fmt.Errorf("empty file")}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}
	ds, err := s.loader.Parse(ctx, name, f)
	if err != nil {
		return nil, err
	}

	keep = true
	return &StoredUpload{
		Name:       name,
		StoredName: stored,
		Path:       path,
		Bytes:      n,
		Rows:       ds.Len(),
		Duration:   time.Since(start),
	}, nil
}

// AllowedFile reports whether filename has a .csv extension (case-insensitive).
func AllowedFile(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	return strings.EqualFold(filename[i+1:], AllowedExtension)
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	stripNonASCII       = runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	}))
)

// SanitizeFilename reduces filename to a safe ASCII basename:
// compatibility-decomposed, non-ASCII dropped, path separators and whitespace
// runs turned into underscores, anything outside [A-Za-z0-9_.-] removed, and
// leading or trailing dots and underscores trimmed. It returns "" when nothing
// usable remains.
func SanitizeFilename(filename string) string {
	t := transform.Chain(norm.NFKD, stripNonASCII)
	ascii, _, err := transform.String(t, filename)
	if err != nil {
		return ""
	}

	ascii = strings.NewReplacer("/", " ", "\\", " ").Replace(ascii)
	ascii = strings.Join(strings.Fields(ascii), "_")
	ascii = unsafeFilenameChars.ReplaceAllString(ascii, "")
	return strings.Trim(ascii, "._")
}
