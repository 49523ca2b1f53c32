package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.csv")
	if err := os.WriteFile(path, []byte(exampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	ds, err := NewLoader(0).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ds.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ds.Len())
	}
	if ds.Name != path {
		t.Errorf("Name = %q, want %q", ds.Name, path)
	}
	first := ds.Records[0]
	if first.Region != "Delhi" || first.Year != 2020 || !first.HasYear || first.CaseType != "Physical" || first.Status != "Open" {
		t.Errorf("first record = %+v", first)
	}
	if first.Line != 2 {
		t.Errorf("first record Line = %d, want 2", first.Line)
	}
}

func TestLoader_NotFound(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") },
		},
		{
			name: "directory",
			path: func(t *testing.T) string { return t.TempDir() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(0).Load(context.Background(), tt.path(t))
			if !IsNotFound(err) {
				t.Fatalf("Load() error = %v, want NotFoundError", err)
			}
			if got := MapError(err).Code; got != "DATA001" {
				t.Errorf("MapError code = %s, want DATA001", got)
			}
		})
	}
}

func TestLoader_Parse_Schema(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantMissing []string
		wantLine    int
		wantCode    string
	}{
		{
			name:        "empty input",
			input:       "",
			wantMissing: RequiredColumns,
			wantCode:    "VAL001",
		},
		{
			name:        "missing status and year",
			input:       "region,case_type\nDelhi,Physical\n",
			wantMissing: []string{ColYear, ColStatus},
			wantCode:    "VAL001",
		},
		{
			name:     "non-integer year",
			input:    "region,year,case_type,status\nDelhi,2020,P,Open\nDelhi,twenty,P,Open\n",
			wantLine: 3,
			wantCode: "VAL002",
		},
		{
			name:     "fractional year",
			input:    "region,year,case_type,status\nDelhi,2020.5,P,Open\n",
			wantLine: 2,
			wantCode: "VAL002",
		},
		{
			name:     "unterminated quote",
			input:    "region,year,case_type,status\n\"Delhi,2020,P,Open\n",
			wantCode: "FILE002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(0).Parse(context.Background(), "in.csv", strings.NewReader(tt.input))
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("Parse() error = %v, want *SchemaError", err)
			}
			if tt.wantMissing != nil {
				if diff := cmp.Diff(tt.wantMissing, se.Missing); diff != "" {
					t.Errorf("Missing mismatch (-want +got):\n%s", diff)
				}
			}
			if se.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", se.Line, tt.wantLine)
			}
			if got := MapError(err).Code; got != tt.wantCode {
				t.Errorf("MapError code = %s, want %s (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestLoader_Parse_Headers(t *testing.T) {
	input := "\xEF\xBB\xBF Region , YEAR,Case_Type,Status,notes\nDelhi,2020.0,Physical,Open,first\n"
	ds, err := NewLoader(0).Parse(context.Background(), "bom.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	wantCols := []string{"Region", "YEAR", "Case_Type", "Status", "notes"}
	if diff := cmp.Diff(wantCols, ds.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
	r := ds.Records[0]
	if r.Region != "Delhi" || r.Year != 2020 {
		t.Errorf("record = %+v", r)
	}
	if diff := cmp.Diff([]Field{{Name: "notes", Value: "first"}}, ds.Extras(r)); diff != "" {
		t.Errorf("Extras mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Parse_RaggedRows(t *testing.T) {
	input := "region,year,case_type,status,notes\nDelhi,2020\nMumbai,2021,Mental,Closed,x,extra\n"
	ds, err := NewLoader(0).Parse(context.Background(), "ragged.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ds.Len())
	}

	short := ds.Records[0]
	if len(short.Cells) != 5 {
		t.Errorf("short row cells = %d, want padded to 5", len(short.Cells))
	}
	if short.CaseType != "" || short.Status != "" {
		t.Errorf("short row = %+v, want empty case_type and status", short)
	}

	long := ds.Records[1]
	if len(long.Cells) != 5 {
		t.Errorf("long row cells = %d, want truncated to 5", len(long.Cells))
	}
}

func TestLoader_Parse_InvalidUTF8(t *testing.T) {
	input := "region,year,case_type,status\nDel\x80hi,2020,P,Open\n"
	ds, err := NewLoader(0).Parse(context.Background(), "latin.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := ds.Records[0].Region; got != "Del?hi" {
		t.Errorf("Region = %q, want %q", got, "Del?hi")
	}
}

func TestLoader_Parse_MaxSize(t *testing.T) {
	input := generatedCSV(100)
	_, err := NewLoader(64).Parse(context.Background(), "big.csv", strings.NewReader(input))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("Parse() error = %v, want ErrFileTooLarge", err)
	}
}

func TestLoader_Parse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(0).Parse(ctx, "x.csv", strings.NewReader(exampleCSV))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Parse() error = %v, want context.Canceled", err)
	}
}
