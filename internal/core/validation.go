package core

// validation.go checks CSV input before records are built.
//
// Validation happens at two levels:
//  1. Header validation: the required columns must be present
//  2. Cell validation: typed columns (year) must parse
//
// Everything else is passthrough text and is never validated.

import (
	"strconv"
	"strings"
)

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a HeaderIndex from a header row. The first occurrence
// of a duplicated name wins.
func MakeHeaderIndex(headers []string) HeaderIndex {
	idx := make(HeaderIndex, len(headers))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	return idx
}

// ValidateHeaders checks that every required column is present and returns
// the header index. The returned error is a *SchemaError listing all missing
// columns.
func ValidateHeaders(identifier string, headers []string) (HeaderIndex, error) {
	idx := MakeHeaderIndex(headers)

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return nil, &SchemaError{Identifier: identifier, Missing: missing}
	}
	return idx, nil
}

// parseYear parses a year cell. Empty cells are reported as absent.
// Values like "2020.0" (written by spreadsheet tools) are accepted when the
// fractional part is zero.
func parseYear(raw string) (year int, ok bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	if y, err := strconv.Atoi(raw); err == nil {
		return y, true, nil
	}
	if whole, frac, found := strings.Cut(raw, "."); found && strings.Trim(frac, "0") == "" {
		if y, err := strconv.Atoi(whole); err == nil {
			return y, true, nil
		}
	}
	return 0, false, strconv.ErrSyntax
}

// cell returns the trimmed value at pos, or "" when the row is short.
func cell(row []string, pos int) string {
	if pos < 0 || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}
