package core

import (
	"strconv"
	"strings"
)

// Required column names. Header matching is case-insensitive.
const (
	ColRegion   = "region"
	ColYear     = "year"
	ColCaseType = "case_type"
	ColStatus   = "status"
)

// RequiredColumns lists the columns every dataset must carry.
var RequiredColumns = []string{ColRegion, ColYear, ColCaseType, ColStatus}

// PageSize is the fixed number of rows per page in the cases table.
const PageSize = 10

// Status values recognised by the aggregation engine (compared case-insensitively).
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Field is a passthrough column value.
type Field struct {
	Name  string
	Value string
}

// CaseRecord is one row of a dataset.
// Text fields are empty when the cell is missing; HasYear is false when the
// year cell is missing.
type CaseRecord struct {
	Region   string
	Year     int
	HasYear  bool
	CaseType string
	Status   string

	// Cells holds the raw row in dataset column order.
	Cells []string
	// Line is the 1-based line number in the source file.
	Line int
}

// YearString returns the year as text, or "" when the year is missing.
func (r CaseRecord) YearString() string {
	if !r.HasYear {
		return ""
	}
	return strconv.Itoa(r.Year)
}

// IsOpen reports whether the status is "open" (case-insensitive).
func (r CaseRecord) IsOpen() bool {
	return strings.EqualFold(r.Status, StatusOpen)
}

// IsClosed reports whether the status is "closed" (case-insensitive).
func (r CaseRecord) IsClosed() bool {
	return strings.EqualFold(r.Status, StatusClosed)
}

// Dataset is an immutable in-memory table of case records.
type Dataset struct {
	// Name identifies the source (file path or upload name).
	Name string
	// Columns lists the header in original order, as written in the file.
	Columns []string
	Records []CaseRecord

	// index maps lowercase column name to position in Columns.
	index map[string]int
}

// NewDataset builds a dataset from a header and records. Record cells must be
// aligned to columns.
func NewDataset(name string, columns []string, records []CaseRecord) *Dataset {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		key := strings.ToLower(strings.TrimSpace(c))
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return &Dataset{
		Name:    name,
		Columns: columns,
		Records: records,
		index:   idx,
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// HasColumn reports whether the dataset carries the named column.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[strings.ToLower(name)]
	return ok
}

// Extras returns the passthrough (non-required) columns of a record in
// dataset column order.
func (d *Dataset) Extras(r CaseRecord) []Field {
	var out []Field
	for i, col := range d.Columns {
		if isRequiredColumn(col) {
			continue
		}
		val := ""
		if i < len(r.Cells) {
			val = r.Cells[i]
		}
		out = append(out, Field{Name: col, Value: val})
	}
	return out
}

func isRequiredColumn(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range RequiredColumns {
		if name == c {
			return true
		}
	}
	return false
}

// FilterCriteria holds the optional case-insensitive predicates applied by
// Filter, Query and Export. Empty fields impose no constraint.
type FilterCriteria struct {
	Region   string // substring
	Year     string // exact match against the stringified year
	CaseType string // substring
	Status   string // substring
}

// IsEmpty reports whether no filter is set.
func (f FilterCriteria) IsEmpty() bool {
	return f.Region == "" && f.Year == "" && f.CaseType == "" && f.Status == ""
}

// Normalize trims surrounding whitespace from every field.
func (f FilterCriteria) Normalize() FilterCriteria {
	return FilterCriteria{
		Region:   strings.TrimSpace(f.Region),
		Year:     strings.TrimSpace(f.Year),
		CaseType: strings.TrimSpace(f.CaseType),
		Status:   strings.TrimSpace(f.Status),
	}
}

// Trend is a year-indexed breakdown. All slices share the same length and
// ascending year order.
type Trend struct {
	Years  []int
	Total  []int
	Open   []int
	Closed []int
}

// Labels returns the years as text labels.
func (t Trend) Labels() []string {
	labels := make([]string, len(t.Years))
	for i, y := range t.Years {
		labels[i] = strconv.Itoa(y)
	}
	return labels
}

// Summary is the aggregate view of a dataset.
type Summary struct {
	Total          int
	Open           int
	Closed         int
	RegionsCovered int
	Trend          Trend
}

// PageResult is one page of a filtered dataset.
type PageResult struct {
	Rows       []CaseRecord
	Page       int
	PageSize   int
	TotalRows  int
	TotalPages int
}

// HasPrev reports whether a previous page exists.
func (p PageResult) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a following page exists.
func (p PageResult) HasNext() bool {
	return p.Page < p.TotalPages
}

// FilterOptions holds the distinct values offered by the filter dropdowns.
type FilterOptions struct {
	Regions   []string
	Years     []string
	CaseTypes []string
	Statuses  []string
}
