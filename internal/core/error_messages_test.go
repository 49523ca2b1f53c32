package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name: "nil error returns empty",
		},
		{
			name:        "missing dataset",
			err:         &NotFoundError{Identifier: "uploads/x.csv", Err: errors.New("no such file or directory")},
			wantCode:    "DATA001",
			wantMessage: "The active dataset could not be opened",
		},
		{
			name:        "unknown route",
			err:         fmt.Errorf("page not found: %s", "/nope"),
			wantCode:    "DATA002",
			wantMessage: "Page not found",
		},
		{
			name:        "missing columns",
			err:         &SchemaError{Identifier: "a.csv", Missing: []string{"status"}},
			wantCode:    "VAL001",
			wantMessage: "Required column is missing from CSV",
		},
		{
			name:        "bad year",
			err:         &SchemaError{Identifier: "a.csv", Line: 4, Column: ColYear, Value: "n/a"},
			wantCode:    "VAL002",
			wantMessage: "A year value is not a whole number",
		},
		{
			name:        "filter on absent column",
			err:         &SchemaError{Identifier: "a.csv", Column: ColStatus},
			wantCode:    "VAL003",
			wantMessage: "A filter refers to a column the dataset does not have",
		},
		{
			name:        "bad page",
			err:         &InvalidParameterError{Name: "page", Value: "x"},
			wantCode:    "VAL004",
			wantMessage: "A request parameter could not be understood",
		},
		{
			name:        "wrapped file too large",
			err:         fmt.Errorf("store upload: %w", ErrFileTooLarge),
			wantCode:    "FILE001",
			wantMessage: "File exceeds maximum size limit",
		},
		{
			name:        "malformed csv",
			err:         &SchemaError{Identifier: "a.csv", Err: errors.New("invalid csv: bare quote")},
			wantCode:    "FILE002",
			wantMessage: "File is not a valid CSV",
		},
		{
			name:        "wrong extension",
			err:         ErrNotCSV,
			wantCode:    "FILE003",
			wantMessage: "Invalid file type, only CSV allowed",
		},
		{
			name:        "cancelled",
			err:         context.Canceled,
			wantCode:    "UPL002",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("RATE LIMIT exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrEmptyFilename)
	want := "No file was selected (Code: FILE005). Please select a CSV file to upload"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"known error", ErrInvalidFilename, true},
		{"unknown error", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", &NotFoundError{Identifier: "x"})
	if !IsNotFound(wrapped) || IsSchema(wrapped) || IsInvalidParameter(wrapped) {
		t.Errorf("helpers misclassify %v", wrapped)
	}

	cause := errors.New("bare quote")
	se := &SchemaError{Identifier: "x", Err: cause}
	if !errors.Is(se, cause) {
		t.Error("SchemaError does not unwrap to its cause")
	}
}
