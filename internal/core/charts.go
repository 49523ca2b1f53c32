package core

import (
	"sort"
	"strconv"
	"strings"
)

// Bar is one labelled value of a bar or pie series.
type Bar struct {
	Label string
	Value int
}

// ChartData holds the numeric series behind the dashboard charts.
type ChartData struct {
	YearBars  []Bar // total cases per year, ascending year
	CaseTypes []Bar // cases per case type, descending count
	Regions   []Bar // cases per region, descending count
	Trend     Trend
}

// BuildCharts derives chart series from a summary and its dataset.
func BuildCharts(s Summary, ds *Dataset) ChartData {
	bars := make([]Bar, len(s.Trend.Years))
	for i, y := range s.Trend.Years {
		bars[i] = Bar{Label: strconv.Itoa(y), Value: s.Trend.Total[i]}
	}
	return ChartData{
		YearBars:  bars,
		CaseTypes: CountBy(ds, func(r CaseRecord) string { return r.CaseType }),
		Regions:   CountBy(ds, func(r CaseRecord) string { return r.Region }),
		Trend:     s.Trend,
	}
}

// CountBy counts records per non-empty key, ordered by descending count and
// then ascending label so equal counts render in a stable order.
func CountBy(ds *Dataset, key func(CaseRecord) string) []Bar {
	counts := make(map[string]int)
	if ds != nil {
		for _, r := range ds.Records {
			if k := key(r); k != "" {
				counts[k]++
			}
		}
	}
	out := make([]Bar, 0, len(counts))
	for k, v := range counts {
		out = append(out, Bar{Label: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Severity bands for hotspot markers.
const (
	SeverityHigh     = "high"
	SeverityElevated = "elevated"
	SeverityModerate = "moderate"
	SeverityLow      = "low"
)

// Hotspot is a region count placed on the map.
type Hotspot struct {
	Region   string  `json:"region"`
	Count    int     `json:"count"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Severity string  `json:"severity"`
}

// HotspotMap splits region counts into mapped points and regions without
// known coordinates.
type HotspotMap struct {
	Points   []Hotspot `json:"points"`
	Unmapped []Bar     `json:"-"`
}

type coord struct{ lat, lon float64 }

// regionCoords holds approximate centres for Indian states, union
// territories and major cities. Keys are lowercase.
var regionCoords = map[string]coord{
	"andhra pradesh":    {15.91, 79.74},
	"arunachal pradesh": {28.22, 94.73},
	"assam":             {26.20, 92.94},
	"bihar":             {25.10, 85.31},
	"chhattisgarh":      {21.28, 81.87},
	"goa":               {15.30, 74.12},
	"gujarat":           {22.26, 71.19},
	"haryana":           {29.06, 76.09},
	"himachal pradesh":  {31.10, 77.17},
	"jharkhand":         {23.61, 85.28},
	"karnataka":         {15.32, 75.71},
	"kerala":            {10.85, 76.27},
	"madhya pradesh":    {22.97, 78.66},
	"maharashtra":       {19.75, 75.71},
	"manipur":           {24.66, 93.91},
	"meghalaya":         {25.47, 91.37},
	"mizoram":           {23.16, 92.94},
	"nagaland":          {26.16, 94.56},
	"odisha":            {20.95, 85.10},
	"punjab":            {31.15, 75.34},
	"rajasthan":         {27.02, 74.22},
	"sikkim":            {27.53, 88.51},
	"tamil nadu":        {11.13, 78.66},
	"telangana":         {18.11, 79.02},
	"tripura":           {23.94, 91.99},
	"uttar pradesh":     {26.85, 80.95},
	"uttarakhand":       {30.07, 79.02},
	"west bengal":       {22.99, 87.85},
	"delhi":             {28.70, 77.10},
	"new delhi":         {28.61, 77.21},
	"jammu and kashmir": {33.78, 76.58},
	"ladakh":            {34.15, 77.58},
	"puducherry":        {11.94, 79.81},
	"chandigarh":        {30.73, 76.78},
	"mumbai":            {19.08, 72.88},
	"kolkata":           {22.57, 88.36},
	"chennai":           {13.08, 80.27},
	"bengaluru":         {12.97, 77.59},
	"bangalore":         {12.97, 77.59},
	"hyderabad":         {17.39, 78.49},
	"ahmedabad":         {23.02, 72.57},
	"pune":              {18.52, 73.86},
	"jaipur":            {26.91, 75.79},
	"lucknow":           {26.85, 80.95},
	"patna":             {25.59, 85.14},
	"bhopal":            {23.26, 77.41},
}

// Hotspots joins region counts with the built-in coordinate table. Matching
// is case-insensitive; points keep the descending-count order of CountBy.
func Hotspots(ds *Dataset) HotspotMap {
	counts := CountBy(ds, func(r CaseRecord) string { return r.Region })
	maxCount := 0
	if len(counts) > 0 {
		maxCount = counts[0].Value
	}

	hm := HotspotMap{Points: []Hotspot{}, Unmapped: []Bar{}}
	for _, b := range counts {
		c, ok := regionCoords[strings.ToLower(b.Label)]
		if !ok {
			hm.Unmapped = append(hm.Unmapped, b)
			continue
		}
		hm.Points = append(hm.Points, Hotspot{
			Region:   b.Label,
			Count:    b.Value,
			Lat:      c.lat,
			Lon:      c.lon,
			Severity: severity(b.Value, maxCount),
		})
	}
	return hm
}

// severity bands a count relative to the busiest region.
func severity(count, maxCount int) string {
	if maxCount <= 0 {
		return SeverityLow
	}
	ratio := float64(count) / float64(maxCount)
	switch {
	case ratio >= 0.75:
		return SeverityHigh
	case ratio >= 0.5:
		return SeverityElevated
	case ratio >= 0.25:
		return SeverityModerate
	default:
		return SeverityLow
	}
}
