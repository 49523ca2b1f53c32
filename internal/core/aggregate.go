package core

import "sort"

// Summarize computes the aggregate summary of a dataset.
//
// Open and closed are exact case-insensitive status matches; other statuses
// count only toward Total. The open and closed trend series are reindexed onto
// the years of the total series with zero fill so all three can be zipped
// positionally. Records without a year are left out of the trend.
func Summarize(ds *Dataset) Summary {
	var s Summary
	if ds.Len() == 0 {
		s.Trend = Trend{Years: []int{}, Total: []int{}, Open: []int{}, Closed: []int{}}
		return s
	}

	regions := make(map[string]struct{})
	total := make(map[int]int)
	open := make(map[int]int)
	closed := make(map[int]int)

	for _, r := range ds.Records {
		s.Total++
		isOpen, isClosed := r.IsOpen(), r.IsClosed()
		if isOpen {
			s.Open++
		}
		if isClosed {
			s.Closed++
		}
		if r.Region != "" {
			regions[r.Region] = struct{}{}
		}
		if !r.HasYear {
			continue
		}
		total[r.Year]++
		if isOpen {
			open[r.Year]++
		}
		if isClosed {
			closed[r.Year]++
		}
	}
	s.RegionsCovered = len(regions)

	years := make([]int, 0, len(total))
	for y := range total {
		years = append(years, y)
	}
	sort.Ints(years)

	s.Trend = Trend{
		Years:  years,
		Total:  make([]int, len(years)),
		Open:   make([]int, len(years)),
		Closed: make([]int, len(years)),
	}
	for i, y := range years {
		s.Trend.Total[i] = total[y]
		s.Trend.Open[i] = open[y]
		s.Trend.Closed[i] = closed[y]
	}
	return s
}
