// Package reach computes bounded-hop neighborhood sizes over a company graph
// and aggregates them into degree distributions.
package reach

import (
	"sort"
	"strings"

	"github.com/efebarandurmaz/reach/internal/graph"
)

// Filter decides which relationship kinds a traversal may follow.
//
// The zero value allows every known kind. Unknown relationships are never
// followed unless a restricted filter names graph.KindUnknown explicitly.
type Filter struct {
	restricted bool
	kinds      map[graph.Kind]struct{}
}

// AllKinds returns a filter that follows every known kind.
func AllKinds() Filter {
	return Filter{}
}

// KindsOf returns a filter restricted to the given kinds. With no kinds it
// follows nothing.
func KindsOf(kinds ...graph.Kind) Filter {
	f := Filter{restricted: true, kinds: make(map[graph.Kind]struct{}, len(kinds))}
	for _, k := range kinds {
		f.kinds[k] = struct{}{}
	}
	return f
}

// Allows reports whether relationships of kind k are traversable.
func (f Filter) Allows(k graph.Kind) bool {
	if !f.restricted {
		return k.IsKnown()
	}
	_, ok := f.kinds[k]
	return ok
}

// Kinds returns the allowed kinds in stable order.
func (f Filter) Kinds() []graph.Kind {
	if !f.restricted {
		return graph.Known()
	}
	out := make([]graph.Kind, 0, len(f.kinds))
	for k := range f.kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (f Filter) String() string {
	if !f.restricted {
		return "all"
	}
	names := make([]string, 0, len(f.kinds))
	for _, k := range f.Kinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ",")
}
