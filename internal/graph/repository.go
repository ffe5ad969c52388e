package graph

import "context"

// Repository provides external storage for a company graph.
type Repository interface {
	// StoreGraph persists every forward relationship of g.
	StoreGraph(ctx context.Context, g *Graph) error
	// LoadGraph rebuilds the full graph from storage.
	LoadGraph(ctx context.Context) (*Graph, error)
	// QueryNeighbors returns the heads of c's relationships whose kind is in kinds.
	// An empty kinds list matches every known kind.
	QueryNeighbors(ctx context.Context, c Company, kinds []Kind) ([]Company, error)
	// Close releases resources.
	Close(ctx context.Context) error
}
