package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ContextCheckInterval is how often (in rows) parsing checks for cancellation.
var ContextCheckInterval = 100

// Loader reads CSV datasets into memory.
type Loader struct {
	// MaxSize caps the number of bytes read from a source (0 = unlimited).
	MaxSize int64
}

// NewLoader creates a Loader with the given size cap.
func NewLoader(maxSize int64) *Loader {
	return &Loader{MaxSize: maxSize}
}

// Load opens the file at identifier and parses it.
// Returns *NotFoundError if the file cannot be opened and *SchemaError if the
// content is not a valid case dataset.
func (l *Loader) Load(ctx context.Context, identifier string) (*Dataset, error) {
	f, err := os.Open(identifier)
	if err != nil {
		return nil, &NotFoundError{Identifier: identifier, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &NotFoundError{Identifier: identifier, Err: err}
	}
	if info.IsDir() {
		return nil, &NotFoundError{Identifier: identifier, Err: errors.New("is a directory")}
	}

	return l.Parse(ctx, identifier, f)
}

// Parse reads a dataset from r. name is used in errors and as Dataset.Name.
func (l *Loader) Parse(ctx context.Context, name string, r io.Reader) (*Dataset, error) {
	var src io.Reader = r
	if l.MaxSize > 0 {
		src = newLimitedReader(r, l.MaxSize)
	}

	cr := csv.NewReader(wrapForParsing(src))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &SchemaError{Identifier: name, Missing: RequiredColumns, Err: errors.New("empty file")}
	}
	if err != nil {
		return nil, readError(name, err)
	}

	idx, err := ValidateHeaders(name, header)
	if err != nil {
		return nil, err
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	posRegion := idx[ColRegion]
	posYear := idx[ColYear]
	posCaseType := idx[ColCaseType]
	posStatus := idx[ColStatus]

	var records []CaseRecord
	for n := 0; ; n++ {
		if n%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(name, err)
		}
		line, _ := cr.FieldPos(0)

		cells := make([]string, len(columns))
		copy(cells, row)

		year, hasYear, err := parseYear(cell(row, posYear))
		if err != nil {
			return nil, &SchemaError{
				Identifier: name,
				Line:       line,
				Column:     ColYear,
				Value:      cell(row, posYear),
			}
		}

		records = append(records, CaseRecord{
			Region:   cell(row, posRegion),
			Year:     year,
			HasYear:  hasYear,
			CaseType: cell(row, posCaseType),
			Status:   cell(row, posStatus),
			Cells:    cells,
			Line:     line,
		})
	}

	return NewDataset(name, columns, records), nil
}

// readError classifies a read failure. Size overruns keep their sentinel;
// everything else is a malformed CSV.
func readError(name string, err error) error {
	if errors.Is(err, ErrFileTooLarge) {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return &SchemaError{Identifier: name, Err: fmt.Errorf("invalid csv: %w", err)}
}
