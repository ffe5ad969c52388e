package reach

import (
	"math"
	"sort"
)

// Point is an (index, value) pair of a histogram.
type Point struct {
	Index int `json:"index"`
	Value int `json:"value"`
}

// Summary describes a histogram's values. Statistics are taken over the
// histogram entries themselves, one sample per neighborhood size.
type Summary struct {
	Entries int     `json:"entries"`
	Total   int     `json:"total"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"std_dev"`
	YMax    Point   `json:"y_max"`
	YMin    Point   `json:"y_min"`
	XMax    Point   `json:"x_max"`
	XMin    Point   `json:"x_min"`
}

// Summarize computes summary statistics of h. An empty histogram yields the
// zero Summary.
func Summarize(h Histogram) Summary {
	if len(h) == 0 {
		return Summary{}
	}

	s := Summary{
		Entries: len(h),
		Total:   h.Total(),
		YMax:    Point{Index: 0, Value: h[0]},
		YMin:    Point{Index: 0, Value: h[0]},
		XMax:    Point{Index: len(h) - 1, Value: h[len(h)-1]},
		XMin:    Point{Index: 0, Value: h[0]},
	}

	// Ties keep the first index.
	for i, v := range h {
		if v > s.YMax.Value {
			s.YMax = Point{Index: i, Value: v}
		}
		if v < s.YMin.Value {
			s.YMin = Point{Index: i, Value: v}
		}
	}

	n := float64(len(h))
	s.Mean = float64(s.Total) / n

	var sq float64
	for _, v := range h {
		d := float64(v) - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / n)

	sorted := make([]int, len(h))
	copy(sorted, h)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		s.Median = float64(sorted[mid])
	} else {
		s.Median = float64(sorted[mid-1]+sorted[mid]) / 2
	}
	return s
}
