package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"
	"testing"
)

// ============================================================================
// Parsing Benchmarks
// ============================================================================

func benchDataset(b *testing.B, rows int) *Dataset {
	b.Helper()
	ds, err := NewLoader(0).Parse(context.Background(), "bench.csv", strings.NewReader(generatedCSV(rows)))
	if err != nil {
		b.Fatalf("Parse() error = %v", err)
	}
	return ds
}

// BenchmarkParse benchmarks loading a typical upload.
func BenchmarkParse(b *testing.B) {
	data := generatedCSV(100)
	l := NewLoader(0)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := l.Parse(context.Background(), "bench.csv", strings.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParse_Large benchmarks loading a large district-level export.
func BenchmarkParse_Large(b *testing.B) {
	data := generatedCSV(10000)
	l := NewLoader(0)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := l.Parse(context.Background(), "bench.csv", strings.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParse_Sanitized compares raw csv reading with the BOM and UTF-8
// wrappers applied by the loader.
func BenchmarkParse_Sanitized(b *testing.B) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, generatedCSV(1000)...)

	b.Run("Raw", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			r := csv.NewReader(bytes.NewReader(data))
			for {
				if _, err := r.Read(); err == io.EOF {
					break
				}
			}
		}
	})

	b.Run("Wrapped", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			r := csv.NewReader(wrapForParsing(bytes.NewReader(data)))
			for {
				if _, err := r.Read(); err == io.EOF {
					break
				}
			}
		}
	})
}

// ============================================================================
// Aggregation and Query Benchmarks
// ============================================================================

func BenchmarkSummarize(b *testing.B) {
	ds := benchDataset(b, 10000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Summarize(ds)
	}
}

func BenchmarkCountBy(b *testing.B) {
	ds := benchDataset(b, 10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CountBy(ds, func(r CaseRecord) string { return r.Region })
	}
}

func BenchmarkQuery(b *testing.B) {
	ds := benchDataset(b, 10000)
	tests := []struct {
		name     string
		criteria FilterCriteria
	}{
		{"no filter", FilterCriteria{}},
		{"region", FilterCriteria{Region: "del"}},
		{"all fields", FilterCriteria{Region: "mum", Year: "2018", CaseType: "phys", Status: "open"}},
	}

	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Query(ds, tt.criteria, 3); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkExport(b *testing.B) {
	ds := benchDataset(b, 10000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := Export(io.Discard, ds, FilterCriteria{Status: "closed"}); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Parallel Benchmarks
// ============================================================================

// BenchmarkSummarizeParallel checks that concurrent requests can share one
// dataset snapshot.
func BenchmarkSummarizeParallel(b *testing.B) {
	ds := benchDataset(b, 5000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			Summarize(ds)
		}
	})
}

func BenchmarkHotspotsParallel(b *testing.B) {
	ds := benchDataset(b, 5000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			Hotspots(ds)
		}
	})
}
