package reach

import "github.com/efebarandurmaz/reach/internal/graph"

type queued struct {
	company graph.Company
	depth   int
}

// CountNeighbors returns how many distinct companies are reachable from start
// within hopLimit hops, following only relationships allowed by filter.
//
// The walk is breadth-first. start is never counted. A company found at depth
// hopLimit is counted but not expanded. A company absent from g has no
// relationships, so its count is 0.
func CountNeighbors(g *graph.Graph, hopLimit int, start graph.Company, filter Filter) int {
	if hopLimit <= 0 {
		return 0
	}

	visited := map[graph.Company]struct{}{start: {}}
	queue := []queued{{company: start}}
	count := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= hopLimit {
			continue
		}
		for _, rel := range g.Relationships(cur.company) {
			if !filter.Allows(rel.Kind) {
				continue
			}
			if _, seen := visited[rel.Head]; seen {
				continue
			}
			visited[rel.Head] = struct{}{}
			queue = append(queue, queued{company: rel.Head, depth: cur.depth + 1})
			count++
		}
	}
	return count
}
