package reach

import (
	"strconv"

	"github.com/efebarandurmaz/reach/internal/graph"
)

// Histogram maps a neighborhood size (the index) to the number of companies
// with that size. Its length is the largest observed size plus one.
type Histogram []int

// Add records one company whose neighborhood size is count.
func (h *Histogram) Add(count int) {
	h.addN(count, 1)
}

func (h *Histogram) addN(count, n int) {
	if count >= len(*h) {
		grown := make(Histogram, count+1)
		copy(grown, *h)
		*h = grown
	}
	(*h)[count] += n
}

// Merge folds other into h.
func (h *Histogram) Merge(other Histogram) {
	for count, n := range other {
		if n > 0 {
			h.addN(count, n)
		}
	}
}

// Total returns the number of companies recorded.
func (h Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// Max returns the largest observed neighborhood size, or -1 when empty.
func (h Histogram) Max() int {
	return len(h) - 1
}

// Lines renders one integer per entry in index order.
func (h Histogram) Lines() []string {
	lines := make([]string, len(h))
	for i, n := range h {
		lines[i] = strconv.Itoa(n)
	}
	return lines
}

// BuildDistribution counts the hopLimit neighborhood of every company in g
// and returns the histogram of those counts. An empty graph yields an empty
// histogram.
func BuildDistribution(g *graph.Graph, hopLimit int, filter Filter) Histogram {
	hist := Histogram{}
	for _, c := range g.Companies() {
		hist.Add(CountNeighbors(g, hopLimit, c, filter))
	}
	return hist
}
