package graph

import "fmt"

// ReciprocalSuffix is appended to a relationship ID to form its mirror's ID.
const ReciprocalSuffix = "-RECI"

// Company identifies a business entity. It is comparable and used as a map key.
type Company struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

func (c Company) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Domain)
}

// Relationship is a directed, typed edge from Tail to Head.
type Relationship struct {
	ID        string  `json:"id"`
	Tail      Company `json:"tail"`
	Head      Company `json:"head"`
	Kind      Kind    `json:"kind"`
	UpdatedAt string  `json:"updated_at"`
}

// Reciprocal returns the same relationship observed from Head.
func (r Relationship) Reciprocal() Relationship {
	return Relationship{
		ID:        r.ID + ReciprocalSuffix,
		Tail:      r.Head,
		Head:      r.Tail,
		Kind:      r.Kind.Reciprocal(),
		UpdatedAt: r.UpdatedAt,
	}
}
