package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T, maxSize int64) *UploadStore {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewUploadStore(dir, maxSize, NewLoader(0), NewUploadLimiter(2, time.Second))
	if err != nil {
		t.Fatalf("NewUploadStore() error = %v", err)
	}
	return s
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestAllowedFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"cases.csv", true},
		{"CASES.CSV", true},
		{"archive.tar.Csv", true},
		{"cases.xlsx", false},
		{"cases", false},
		{"csv", false},
		{"cases.csv.exe", false},
		{".csv", true},
	}
	for _, tt := range tests {
		if got := AllowedFile(tt.name); got != tt.want {
			t.Errorf("AllowedFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cases.csv", "cases.csv"},
		{"My Cases 2021.csv", "My_Cases_2021.csv"},
		{"../../etc/passwd", "etc_passwd"},
		{`C:\Users\me\data.csv`, "C_Users_me_data.csv"},
		{"résumé.csv", "resume.csv"},
		{"ｆｕｌｌｗｉｄｔｈ.csv", "fullwidth.csv"},
		{"a$b%c.csv", "abc.csv"},
		{"__.hidden.csv", "hidden.csv"},
		{"日本語", ""},
		{"...", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUploadStore_Save(t *testing.T) {
	s := newTestStore(t, 0)

	up, err := s.Save(context.Background(), "My Cases.csv", strings.NewReader(exampleCSV))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if up.Name != "My_Cases.csv" {
		t.Errorf("Name = %q, want %q", up.Name, "My_Cases.csv")
	}
	if !strings.HasSuffix(up.StoredName, "_My_Cases.csv") {
		t.Errorf("StoredName = %q, want <uuid>_My_Cases.csv", up.StoredName)
	}
	if OriginalName(up.StoredName) != up.Name {
		t.Errorf("OriginalName(%q) = %q, want %q", up.StoredName, OriginalName(up.StoredName), up.Name)
	}
	if up.Rows != 3 {
		t.Errorf("Rows = %d, want 3", up.Rows)
	}
	if up.Bytes != int64(len(exampleCSV)) {
		t.Errorf("Bytes = %d, want %d", up.Bytes, len(exampleCSV))
	}

	data, err := os.ReadFile(up.Path)
	if err != nil {
		t.Fatalf("stored file: %v", err)
	}
	if string(data) != exampleCSV {
		t.Errorf("stored content = %q, want %q", data, exampleCSV)
	}

	// The stored marker resolves back to the same file.
	r := NewResolver(s.Dir(), "unused.csv")
	if got := r.Resolve(up.StoredName); got != up.Path {
		t.Errorf("Resolve(StoredName) = %q, want %q", got, up.Path)
	}
}

func TestUploadStore_Save_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		maxSize  int64
		wantErr  error
		wantCode string
	}{
		{
			name:     "empty filename",
			filename: "",
			content:  exampleCSV,
			wantErr:  ErrEmptyFilename,
			wantCode: "FILE005",
		},
		{
			name:     "wrong extension",
			filename: "cases.xlsx",
			content:  exampleCSV,
			wantErr:  ErrNotCSV,
			wantCode: "FILE003",
		},
		{
			name:     "nothing usable in name",
			filename: "日本.csv",
			content:  exampleCSV,
			wantErr:  ErrInvalidFilename,
			wantCode: "FILE004",
		},
		{
			name:     "too large",
			filename: "big.csv",
			content:  generatedCSV(50),
			maxSize:  100,
			wantErr:  ErrFileTooLarge,
			wantCode: "FILE001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, tt.maxSize)
			_, err := s.Save(context.Background(), tt.filename, strings.NewReader(tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Save() error = %v, want %v", err, tt.wantErr)
			}
			if got := MapError(err).Code; got != tt.wantCode {
				t.Errorf("MapError code = %s, want %s", got, tt.wantCode)
			}
			if left := dirEntries(t, s.Dir()); len(left) != 0 {
				t.Errorf("upload dir not empty after reject: %v", left)
			}
		})
	}
}

func TestUploadStore_Save_SchemaErrorRemovesFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing columns", "region,year\nDelhi,2020\n"},
		{"bad year", "region,year,case_type,status\nDelhi,soon,P,Open\n"},
		{"empty file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, 0)
			_, err := s.Save(context.Background(), "cases.csv", strings.NewReader(tt.content))
			if !IsSchema(err) {
				t.Fatalf("Save() error = %v, want SchemaError", err)
			}
			if left := dirEntries(t, s.Dir()); len(left) != 0 {
				t.Errorf("upload dir not empty after schema error: %v", left)
			}
		})
	}
}

func TestUploadStore_Save_Busy(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	limiter := NewUploadLimiter(1, 20*time.Millisecond)
	s, err := NewUploadStore(dir, 0, nil, limiter)
	if err != nil {
		t.Fatal(err)
	}

	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire() = false")
	}
	defer limiter.Release()

	_, err = s.Save(context.Background(), "cases.csv", strings.NewReader(exampleCSV))
	if !errors.Is(err, ErrTooManyUploads) {
		t.Fatalf("Save() error = %v, want ErrTooManyUploads", err)
	}
	if got := MapError(err).Code; got != "UPL001" {
		t.Errorf("MapError code = %s, want UPL001", got)
	}
}

func TestNewUploadStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "uploads")
	s, err := NewUploadStore(dir, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewUploadStore() error = %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("upload dir not created: %v", err)
	}
	if s.MaxSize() != DefaultMaxUploadSize {
		t.Errorf("MaxSize() = %d, want %d", s.MaxSize(), DefaultMaxUploadSize)
	}
}
