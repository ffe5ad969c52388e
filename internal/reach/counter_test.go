package reach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efebarandurmaz/reach/internal/graph"
)

var (
	companyA = graph.Company{Name: "A", Domain: "a.com"}
	companyB = graph.Company{Name: "B", Domain: "b.com"}
	companyC = graph.Company{Name: "C", Domain: "c.com"}
	companyD = graph.Company{Name: "D", Domain: "d.com"}
)

func buildGraph(t testing.TB, rels ...graph.Relationship) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	for _, r := range rels {
		require.NoError(t, b.Add(r))
	}
	return b.Build()
}

func rel(id string, tail, head graph.Company, kind graph.Kind) graph.Relationship {
	return graph.Relationship{ID: id, Tail: tail, Head: head, Kind: kind, UpdatedAt: "2021-04-01"}
}

// chain is A -customer-> B -supplier-> C -partner-> D.
func chain(t testing.TB) *graph.Graph {
	return buildGraph(t,
		rel("1", companyA, companyB, graph.KindCustomer),
		rel("2", companyB, companyC, graph.KindSupplier),
		rel("3", companyC, companyD, graph.KindPartner),
	)
}

func TestCountNeighbors_HopLimits(t *testing.T) {
	g := chain(t)

	tests := []struct {
		name  string
		start graph.Company
		hops  int
		want  int
	}{
		{"zero hops", companyA, 0, 0},
		{"negative hops", companyA, -1, 0},
		{"one hop from end", companyA, 1, 1},
		{"two hops from end", companyA, 2, 2},
		{"three hops reaches all", companyA, 3, 3},
		{"beyond diameter", companyA, 10, 3},
		{"one hop from middle", companyB, 1, 2},
		{"two hops from middle", companyB, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountNeighbors(g, tt.hops, tt.start, AllKinds()))
		})
	}
}

func TestCountNeighbors_Filter(t *testing.T) {
	g := chain(t)

	// Customer edges are stored as supplier edges from the other side, so a
	// customer-only walk from B cannot go back to A.
	assert.Equal(t, 0, CountNeighbors(g, 3, companyB, KindsOf(graph.KindCustomer)))
	assert.Equal(t, 1, CountNeighbors(g, 3, companyA, KindsOf(graph.KindCustomer)))
	assert.Equal(t, 2, CountNeighbors(g, 3, companyA, KindsOf(graph.KindCustomer, graph.KindSupplier)))
	assert.Equal(t, 1, CountNeighbors(g, 3, companyD, KindsOf(graph.KindPartner)))
	assert.Equal(t, 0, CountNeighbors(g, 3, companyA, KindsOf()))
}

func TestCountNeighbors_NoDoubleCounting(t *testing.T) {
	// A reaches C both directly and through B.
	g := buildGraph(t,
		rel("1", companyA, companyB, graph.KindPartner),
		rel("2", companyB, companyC, graph.KindPartner),
		rel("3", companyA, companyC, graph.KindCompetitor),
		rel("4", companyA, companyB, graph.KindCustomer),
	)

	assert.Equal(t, 2, CountNeighbors(g, 1, companyA, AllKinds()))
	assert.Equal(t, 2, CountNeighbors(g, 5, companyA, AllKinds()))
}

func TestCountNeighbors_StartNotCounted(t *testing.T) {
	g := buildGraph(t, rel("1", companyA, companyB, graph.KindPartner))
	// A -> B -> A: the return to A must not count.
	assert.Equal(t, 1, CountNeighbors(g, 2, companyA, AllKinds()))
}

func TestCountNeighbors_MissingStart(t *testing.T) {
	g := chain(t)
	missing := graph.Company{Name: "Z", Domain: "z.com"}
	assert.Equal(t, 0, CountNeighbors(g, 3, missing, AllKinds()))
	assert.Equal(t, 0, CountNeighbors(nil, 3, missing, AllKinds()))
}
