// Package templates holds the dashboard's templ components. The *_templ.go
// files are generated from the .templ sources with `templ generate`.
package templates

import (
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sidhushesank/ethical-dowry-analyser/internal/core"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders a count with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// percent formats part/total as a whole percentage.
func percent(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return strconv.Itoa(part*100/total) + "%"
}

// FormatBytes renders a byte count using binary units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	value := float64(n) / float64(div)
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d %cB", int64(value), "KMGT"[exp])
	}
	return fmt.Sprintf("%.1f %cB", value, "KMGT"[exp])
}

// withQuery returns path with the non-empty params encoded.
func withQuery(path string, params url.Values) string {
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			if v != "" {
				q.Add(k, v)
			}
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func filterParams(c core.FilterCriteria) url.Values {
	return url.Values{
		"region":    {c.Region},
		"year":      {c.Year},
		"case_type": {c.CaseType},
		"status":    {c.Status},
	}
}

// PageURL returns the cases URL for page with the filters preserved.
func PageURL(c core.FilterCriteria, page int) string {
	params := filterParams(c)
	params.Set("page", strconv.Itoa(page))
	return withQuery("/cases", params)
}

// downloadURL returns the CSV export URL for the current filters.
func downloadURL(c core.FilterCriteria) string {
	return withQuery("/cases/download", filterParams(c))
}

func httpStatusTitle(status int) string {
	switch {
	case status == 404:
		return "Not found"
	case status == 429:
		return "Slow down"
	case status >= 500:
		return "Something went wrong"
	default:
		return "Request could not be completed"
	}
}
