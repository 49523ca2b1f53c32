package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExport_Example(t *testing.T) {
	ds := parseCSV(t, exampleCSV)

	var buf bytes.Buffer
	if err := Export(&buf, ds, FilterCriteria{Region: "delhi"}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	want := "region,year,case_type,status\nDelhi,2020,Physical,Open\nDelhi,2021,Physical,Open\n"
	if got := buf.String(); got != want {
		t.Errorf("Export() =\n%s\nwant\n%s", got, want)
	}
}

func TestExport_KeepsColumnOrderAndPassthrough(t *testing.T) {
	ds := parseCSV(t, `case_id,status,Region,notes,year,case_type
7,Open,Delhi,"said ""no""",2020,Physical
8,Closed,Pune,,2021,Mental
`)

	var buf bytes.Buffer
	if err := Export(&buf, ds, FilterCriteria{Status: "open"}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	want := [][]string{
		{"case_id", "status", "Region", "notes", "year", "case_type"},
		{"7", "Open", "Delhi", `said "no"`, "2020", "Physical"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestExport_EqualsConcatenatedPages(t *testing.T) {
	ds := parseCSV(t, generatedCSV(47))
	criteria := []FilterCriteria{
		{},
		{Region: "a"},
		{Status: "OPEN"},
		{Year: "2018"},
		{Region: "zzz"},
	}

	for _, f := range criteria {
		t.Run(fmt.Sprintf("%+v", f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Export(&buf, ds, f); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			exported, err := csv.NewReader(&buf).ReadAll()
			if err != nil {
				t.Fatalf("reading export: %v", err)
			}
			exported = exported[1:]

			first, err := Query(ds, f, 1)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			paged := [][]string{}
			for p := 1; p <= first.TotalPages; p++ {
				res, err := Query(ds, f, p)
				if err != nil {
					t.Fatalf("Query(page=%d) error = %v", p, err)
				}
				for _, r := range res.Rows {
					paged = append(paged, r.Cells)
				}
			}

			if len(exported) == 0 && len(paged) == 0 {
				return
			}
			if diff := cmp.Diff(paged, exported); diff != "" {
				t.Errorf("export differs from pages (-pages +export):\n%s", diff)
			}
		})
	}
}

func TestExport_MissingColumn(t *testing.T) {
	ds := NewDataset("partial", []string{"region"}, nil)
	err := Export(&strings.Builder{}, ds, FilterCriteria{Year: "2020"})
	if !IsSchema(err) {
		t.Errorf("Export() error = %v, want SchemaError", err)
	}
}
