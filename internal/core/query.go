package core

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// Filter returns the records matching every non-empty criterion, in dataset
// order. Region, case type and status match as case-insensitive substrings;
// year must equal the record's year text exactly. A record with a missing
// field never matches a non-empty criterion on that field.
//
// A criterion on a column the dataset does not carry is a *SchemaError.
func Filter(ds *Dataset, criteria FilterCriteria) ([]CaseRecord, error) {
	if ds == nil {
		return nil, nil
	}
	f := criteria.Normalize()
	if err := checkFilterColumns(ds, f); err != nil {
		return nil, err
	}
	if f.IsEmpty() {
		return ds.Records, nil
	}

	region := strings.ToLower(f.Region)
	caseType := strings.ToLower(f.CaseType)
	status := strings.ToLower(f.Status)

	out := make([]CaseRecord, 0, len(ds.Records))
	for _, r := range ds.Records {
		if !containsFold(r.Region, region) {
			continue
		}
		if f.Year != "" && (!r.HasYear || r.YearString() != f.Year) {
			continue
		}
		if !containsFold(r.CaseType, caseType) {
			continue
		}
		if !containsFold(r.Status, status) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// containsFold reports whether value contains the lowercase needle.
// An empty needle always matches; an empty value never matches a non-empty needle.
func containsFold(value, needle string) bool {
	if needle == "" {
		return true
	}
	if value == "" {
		return false
	}
	return strings.Contains(strings.ToLower(value), needle)
}

func checkFilterColumns(ds *Dataset, f FilterCriteria) error {
	checks := []struct {
		col string
		set bool
	}{
		{ColRegion, f.Region != ""},
		{ColYear, f.Year != ""},
		{ColCaseType, f.CaseType != ""},
		{ColStatus, f.Status != ""},
	}
	for _, c := range checks {
		if c.set && !ds.HasColumn(c.col) {
			return &SchemaError{Identifier: ds.Name, Column: c.col}
		}
	}
	return nil
}

// Query filters ds and returns the requested 1-indexed page.
// Pages past the end yield no rows; page must be >= 1.
func Query(ds *Dataset, criteria FilterCriteria, page int) (PageResult, error) {
	if page < 1 {
		return PageResult{}, &InvalidParameterError{
			Name:  "page",
			Value: strconv.Itoa(page),
			Err:   errPageNotPositive,
		}
	}

	rows, err := Filter(ds, criteria)
	if err != nil {
		return PageResult{}, err
	}

	res := PageResult{
		Page:       page,
		PageSize:   PageSize,
		TotalRows:  len(rows),
		TotalPages: (len(rows) + PageSize - 1) / PageSize,
	}

	start := (page - 1) * PageSize
	if start >= len(rows) {
		res.Rows = []CaseRecord{}
		return res, nil
	}
	end := min(start+PageSize, len(rows))
	res.Rows = rows[start:end]
	return res, nil
}

var errPageNotPositive = errors.New("must be a positive integer")

// ParsePage parses the page query parameter. Empty input means page 1.
func ParsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &InvalidParameterError{Name: "page", Value: raw, Err: errPageNotPositive}
	}
	if n < 1 {
		return 0, &InvalidParameterError{Name: "page", Value: raw, Err: errPageNotPositive}
	}
	return n, nil
}

// Options returns the distinct, sorted, non-missing values of each filterable
// column over the whole (unfiltered) dataset. Years sort numerically.
func Options(ds *Dataset) FilterOptions {
	var (
		regions   = make(map[string]struct{})
		years     = make(map[int]struct{})
		caseTypes = make(map[string]struct{})
		statuses  = make(map[string]struct{})
	)
	if ds != nil {
		for _, r := range ds.Records {
			addNonEmpty(regions, r.Region)
			addNonEmpty(caseTypes, r.CaseType)
			addNonEmpty(statuses, r.Status)
			if r.HasYear {
				years[r.Year] = struct{}{}
			}
		}
	}

	yearList := make([]int, 0, len(years))
	for y := range years {
		yearList = append(yearList, y)
	}
	sort.Ints(yearList)
	yearText := make([]string, len(yearList))
	for i, y := range yearList {
		yearText[i] = strconv.Itoa(y)
	}

	return FilterOptions{
		Regions:   sortedKeys(regions),
		Years:     yearText,
		CaseTypes: sortedKeys(caseTypes),
		Statuses:  sortedKeys(statuses),
	}
}

func addNonEmpty(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
