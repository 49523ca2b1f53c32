// Package charts renders dashboard series to PNG images.
package charts

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/sidhushesank/ethical-dowry-analyser/internal/core"
)

// ErrNoData is returned when a series has nothing to draw.
var ErrNoData = errors.New("no data to chart")

// Default image size in pixels.
const (
	DefaultWidth  = 720
	DefaultHeight = 400
)

// palette cycles through bar and slice colours.
var palette = []drawing.Color{
	drawing.ColorFromHex("8e2c48"),
	drawing.ColorFromHex("d9822b"),
	drawing.ColorFromHex("2b6cb0"),
	drawing.ColorFromHex("2f855a"),
	drawing.ColorFromHex("6b46c1"),
	drawing.ColorFromHex("b7791f"),
	drawing.ColorFromHex("319795"),
	drawing.ColorFromHex("c53030"),
}

var (
	colorTotal  = drawing.ColorFromHex("2b6cb0")
	colorOpen   = drawing.ColorFromHex("c53030")
	colorClosed = drawing.ColorFromHex("2f855a")
)

// Renderer draws charts at a fixed size. The zero value uses the defaults.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer returns a Renderer of the given size.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{Width: width, Height: height}
}

func (r *Renderer) size() (int, int) {
	w, h := r.Width, r.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// Bar renders a vertical bar chart.
func (r *Renderer) Bar(title string, bars []core.Bar) ([]byte, error) {
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	w, h := r.size()

	values := make([]chart.Value, len(bars))
	maxVal := 0
	for i, b := range bars {
		c := palette[i%len(palette)]
		values[i] = chart.Value{
			Label: b.Label,
			Value: float64(b.Value),
			Style: chart.Style{FillColor: c, StrokeColor: c},
		}
		maxVal = max(maxVal, b.Value)
	}

	barWidth := (w - 80) / (len(bars) * 2)
	barWidth = min(max(barWidth, 8), 60)

	bc := chart.BarChart{
		Title:      title,
		Width:      w,
		Height:     h,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: axisMax(maxVal)},
			Ticks: countTicks(maxVal),
		},
		Bars: values,
	}
	return render(bc.Render)
}

// Pie renders a pie chart. Zero-valued slices are skipped.
func (r *Renderer) Pie(title string, slices []core.Bar) ([]byte, error) {
	values := make([]chart.Value, 0, len(slices))
	for _, s := range slices {
		if s.Value <= 0 {
			continue
		}
		c := palette[len(values)%len(palette)]
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", s.Label, s.Value),
			Value: float64(s.Value),
			Style: chart.Style{FillColor: c, StrokeColor: drawing.ColorWhite},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}
	w, h := r.size()

	pc := chart.PieChart{
		Title:  title,
		Width:  w,
		Height: h,
		Values: values,
	}
	return render(pc.Render)
}

// Trend renders total, open and closed cases per year as lines.
func (r *Renderer) Trend(title string, t core.Trend) ([]byte, error) {
	n := len(t.Years)
	if n == 0 || len(t.Total) != n || len(t.Open) != n || len(t.Closed) != n {
		return nil, ErrNoData
	}
	w, h := r.size()

	xs := make([]float64, n)
	ticks := make([]chart.Tick, n)
	maxVal := 0
	for i, y := range t.Years {
		xs[i] = float64(y)
		ticks[i] = chart.Tick{Value: float64(y), Label: strconv.Itoa(y)}
		maxVal = max(maxVal, t.Total[i], t.Open[i], t.Closed[i])
	}

	// Axis ticks set the x range, so a single year gets unlabelled ticks on
	// either side to keep the range non-empty.
	xMin, xMax := xs[0], xs[n-1]
	if xMin == xMax {
		xMin, xMax = xMin-1, xMax+1
		ticks = []chart.Tick{{Value: xMin}, ticks[0], {Value: xMax}}
	}

	series := []chart.Series{
		line("Total", xs, t.Total, colorTotal),
		line("Open", xs, t.Open, colorOpen),
		line("Closed", xs, t.Closed, colorClosed),
	}

	ch := chart.Chart{
		Title:      title,
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Year",
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  "Cases",
			Range: &chart.ContinuousRange{Min: 0, Max: axisMax(maxVal)},
			Ticks: countTicks(maxVal),
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return render(ch.Render)
}

func line(name string, xs []float64, ys []int, c drawing.Color) chart.ContinuousSeries {
	yv := make([]float64, len(ys))
	for i, v := range ys {
		yv[i] = float64(v)
	}
	return chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: yv,
		Style: chart.Style{
			StrokeColor: c,
			StrokeWidth: 2,
			DotColor:    c,
			DotWidth:    3,
		},
	}
}

// axisMax leaves headroom above the largest count and never returns zero.
func axisMax(maxVal int) float64 {
	if maxVal <= 0 {
		return 1
	}
	return float64(niceStep(maxVal) * int(math.Ceil(float64(maxVal)/float64(niceStep(maxVal)))))
}

// countTicks returns integer ticks from 0 to axisMax.
func countTicks(maxVal int) []chart.Tick {
	top := int(axisMax(maxVal))
	step := niceStep(maxVal)
	ticks := make([]chart.Tick, 0, top/step+1)
	for v := 0; v <= top; v += step {
		ticks = append(ticks, chart.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	return ticks
}

// niceStep picks a 1, 2 or 5 times power-of-ten step giving at most ~6 ticks.
func niceStep(maxVal int) int {
	if maxVal <= 5 {
		return 1
	}
	raw := float64(maxVal) / 5
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * mag; step >= raw {
			return int(step)
		}
	}
	return int(10 * mag)
}

func render(fn func(chart.RendererProvider, io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI encodes a PNG as a data URI for inline <img> tags.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
