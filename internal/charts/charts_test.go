package charts

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/sidhushesank/ethical-dowry-analyser/internal/core"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func checkPNG(t *testing.T, data []byte, wantW, wantH int) {
	t.Helper()
	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatalf("output is not a PNG (first bytes %q)", data[:min(8, len(data))])
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if cfg.Width != wantW || cfg.Height != wantH {
		t.Errorf("image size = %dx%d, want %dx%d", cfg.Width, cfg.Height, wantW, wantH)
	}
}

func TestRenderer_Bar(t *testing.T) {
	r := NewRenderer(400, 300)
	tests := []struct {
		name string
		bars []core.Bar
	}{
		{"single bar", []core.Bar{{Label: "2020", Value: 3}}},
		{"several bars", []core.Bar{{Label: "Delhi", Value: 12}, {Label: "Mumbai", Value: 7}, {Label: "Pune", Value: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Bar("Cases", tt.bars)
			if err != nil {
				t.Fatalf("Bar() error = %v", err)
			}
			checkPNG(t, out, 400, 300)
		})
	}
}

func TestRenderer_Pie(t *testing.T) {
	var r Renderer
	out, err := r.Pie("Case types", []core.Bar{{Label: "Physical", Value: 5}, {Label: "Mental", Value: 2}})
	if err != nil {
		t.Fatalf("Pie() error = %v", err)
	}
	checkPNG(t, out, DefaultWidth, DefaultHeight)
}

func TestRenderer_Trend(t *testing.T) {
	r := NewRenderer(500, 300)
	tests := []struct {
		name  string
		trend core.Trend
	}{
		{
			name:  "one year",
			trend: core.Trend{Years: []int{2021}, Total: []int{4}, Open: []int{3}, Closed: []int{1}},
		},
		{
			name: "several years",
			trend: core.Trend{
				Years:  []int{2019, 2020, 2021},
				Total:  []int{10, 22, 17},
				Open:   []int{4, 9, 12},
				Closed: []int{6, 13, 5},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Trend("Trend", tt.trend)
			if err != nil {
				t.Fatalf("Trend() error = %v", err)
			}
			checkPNG(t, out, 500, 300)
		})
	}
}

func TestRenderer_NoData(t *testing.T) {
	var r Renderer
	if _, err := r.Bar("x", nil); !errors.Is(err, ErrNoData) {
		t.Errorf("Bar(nil) error = %v, want ErrNoData", err)
	}
	if _, err := r.Pie("x", []core.Bar{{Label: "zero", Value: 0}}); !errors.Is(err, ErrNoData) {
		t.Errorf("Pie(zero) error = %v, want ErrNoData", err)
	}
	if _, err := r.Trend("x", core.Trend{}); !errors.Is(err, ErrNoData) {
		t.Errorf("Trend(empty) error = %v, want ErrNoData", err)
	}
	misaligned := core.Trend{Years: []int{2020, 2021}, Total: []int{1, 2}, Open: []int{1}, Closed: []int{0, 1}}
	if _, err := r.Trend("x", misaligned); !errors.Is(err, ErrNoData) {
		t.Errorf("Trend(misaligned) error = %v, want ErrNoData", err)
	}
}

func TestNiceStepAndTicks(t *testing.T) {
	tests := []struct {
		maxVal   int
		wantStep int
		wantTop  float64
	}{
		{0, 1, 1},
		{3, 1, 3},
		{6, 2, 6},
		{7, 2, 8},
		{23, 5, 25},
		{100, 20, 100},
		{1234, 500, 1500},
	}
	for _, tt := range tests {
		if got := niceStep(tt.maxVal); got != tt.wantStep {
			t.Errorf("niceStep(%d) = %d, want %d", tt.maxVal, got, tt.wantStep)
		}
		if got := axisMax(tt.maxVal); got != tt.wantTop {
			t.Errorf("axisMax(%d) = %v, want %v", tt.maxVal, got, tt.wantTop)
		}
		ticks := countTicks(tt.maxVal)
		if last := ticks[len(ticks)-1].Value; last != tt.wantTop {
			t.Errorf("countTicks(%d) last = %v, want %v", tt.maxVal, last, tt.wantTop)
		}
	}
}

func TestDataURI(t *testing.T) {
	got := DataURI([]byte("abc"))
	if !strings.HasPrefix(got, "data:image/png;base64,") || !strings.HasSuffix(got, "YWJj") {
		t.Errorf("DataURI() = %q", got)
	}
}
