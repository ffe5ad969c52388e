package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidRelationship is returned for relationships with missing endpoints.
	ErrInvalidRelationship = errors.New("invalid relationship")
	// ErrGraphBuilt is returned when adding to a builder that has been frozen.
	ErrGraphBuilt = errors.New("graph already built")
)

// Graph is an adjacency list of companies to their outgoing relationships.
//
// Every company referenced by a stored relationship has an entry, and every
// stored relationship has its reciprocal stored under the head company. Both
// invariants are established by Builder; a Graph is never mutated after Build
// and is safe for concurrent readers.
type Graph struct {
	adj     map[Company][]Relationship
	records []Relationship // forward relationships, in insertion order
}

// Relationships returns the outgoing relationships of c in stored order.
// A company that is not in the graph has none.
func (g *Graph) Relationships(c Company) []Relationship {
	if g == nil {
		return nil
	}
	return g.adj[c]
}

// Has reports whether c is a key of the graph.
func (g *Graph) Has(c Company) bool {
	if g == nil {
		return false
	}
	_, ok := g.adj[c]
	return ok
}

// Len returns the number of companies.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.adj)
}

// EdgeCount returns the number of stored directed relationships, mirrors included.
func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return 2 * len(g.records)
}

// Records returns the forward relationships the graph was built from.
func (g *Graph) Records() []Relationship {
	if g == nil {
		return nil
	}
	return g.records
}

// Companies returns every key sorted by domain, then name.
func (g *Graph) Companies() []Company {
	if g == nil {
		return nil
	}
	out := make([]Company, 0, len(g.adj))
	for c := range g.adj {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Domain != out[j].Domain {
			return out[i].Domain < out[j].Domain
		}
		return out[i].Name < out[j].Name
	})
	return out
}

type graphJSON struct {
	Relationships []Relationship `json:"relationships"`
}

// MarshalJSON encodes the forward relationships only; mirrors are derived.
func (g *Graph) MarshalJSON() ([]byte, error) {
	recs := g.Records()
	if recs == nil {
		recs = []Relationship{}
	}
	return json.Marshal(graphJSON{Relationships: recs})
}

// UnmarshalJSON rebuilds the graph through a Builder.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var raw graphJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b := NewBuilder()
	for _, r := range raw.Relationships {
		if err := b.Add(r); err != nil {
			return fmt.Errorf("relationship %s: %w", r.ID, err)
		}
	}
	*g = *b.Build()
	return nil
}

// Builder constructs a Graph, adding each relationship with its reciprocal.
type Builder struct {
	g     *Graph
	built bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{g: &Graph{adj: make(map[Company][]Relationship)}}
}

// Add stores r under r.Tail and its reciprocal under r.Head.
func (b *Builder) Add(r Relationship) error {
	if b.built {
		return ErrGraphBuilt
	}
	if !r.Kind.IsKnown() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}
	if r.Tail.Name == "" || r.Head.Name == "" {
		return fmt.Errorf("%w: empty company name", ErrInvalidRelationship)
	}
	b.g.adj[r.Tail] = append(b.g.adj[r.Tail], r)
	b.g.adj[r.Head] = append(b.g.adj[r.Head], r.Reciprocal())
	b.g.records = append(b.g.records, r)
	return nil
}

// Len returns the number of forward relationships added so far.
func (b *Builder) Len() int {
	return len(b.g.records)
}

// Build freezes the builder and returns the graph.
func (b *Builder) Build() *Graph {
	b.built = true
	return b.g
}
