package neo4j

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/efebarandurmaz/reach/internal/graph"
	"github.com/efebarandurmaz/reach/internal/observability"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const storeBatchSize = 500

// Relationships are keyed by id and kind, so records that share an id but
// differ in kind stay distinct edges.
const mergeRelationships = "UNWIND $rows AS row " +
	"MERGE (a:Company {name: row.tail_name, domain: row.tail_domain}) " +
	"MERGE (b:Company {name: row.head_name, domain: row.head_domain}) " +
	"MERGE (a)-[r:RELATES {id: row.id, kind: row.kind}]->(b) " +
	"SET r.updated_at = row.updated_at"

// Neo4jRepository implements graph.Repository using Neo4j.
type Neo4jRepository struct {
	driver neo4j.DriverWithContext
	logger *slog.Logger
}

// NewNeo4j creates a Neo4j-backed repository.
func NewNeo4j(ctx context.Context, uri, username, password string) (*Neo4jRepository, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	return &Neo4jRepository{driver: driver, logger: slog.Default()}, nil
}

// StoreGraph merges companies and forward relationships in batches.
// Mirrors are not stored; LoadGraph regenerates them.
func (r *Neo4jRepository) StoreGraph(ctx context.Context, g *graph.Graph) (err error) {
	ctx, span := observability.StartStoreSpan(ctx, "store", g.Len())
	defer func() {
		observability.RecordError(span, err)
		span.End()
	}()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	rows := relationshipRows(g.Records())
	for start := 0; start < len(rows); start += storeBatchSize {
		end := min(start+storeBatchSize, len(rows))
		batch := rows[start:end]
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, mergeRelationships, map[string]any{"rows": batch})
			return nil, err
		})
		if err != nil {
			return fmt.Errorf("store relationships %d-%d: %w", start, end, err)
		}
		r.logger.Debug("stored relationship batch", "from", start, "to", end)
	}
	return nil
}

// LoadGraph reads every stored relationship and rebuilds the graph.
func (r *Neo4jRepository) LoadGraph(ctx context.Context) (g *graph.Graph, err error) {
	ctx, span := observability.StartStoreSpan(ctx, "load", 0)
	defer func() {
		observability.RecordError(span, err)
		span.End()
	}()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx,
			"MATCH (a:Company)-[r:RELATES]->(b:Company) "+
				"RETURN r.id AS id, a.name AS tail_name, a.domain AS tail_domain, "+
				"b.name AS head_name, b.domain AS head_domain, r.kind AS kind, r.updated_at AS updated_at "+
				"ORDER BY id",
			nil)
		if err != nil {
			return nil, err
		}

		b := graph.NewBuilder()
		for records.Next(ctx) {
			rel := relationshipFromRecord(records.Record())
			if err := b.Add(rel); err != nil {
				r.logger.Warn("skipping stored relationship", "id", rel.ID, "error", err)
			}
		}
		if err := records.Err(); err != nil {
			return nil, err
		}
		return b.Build(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	return result.(*graph.Graph), nil
}

// QueryNeighbors returns companies one hop from c, following stored edges in
// either direction so that mirrored kinds are honored.
func (r *Neo4jRepository) QueryNeighbors(ctx context.Context, c graph.Company, kinds []graph.Kind) ([]graph.Company, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	if len(kinds) == 0 {
		kinds = graph.Known()
	}
	// A stored (b)-[kind]->(a) is seen from a as the reciprocal kind.
	outgoing := make([]string, 0, len(kinds))
	incoming := make([]string, 0, len(kinds))
	for _, k := range kinds {
		outgoing = append(outgoing, string(k))
		incoming = append(incoming, string(k.Reciprocal()))
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx,
			"MATCH (a:Company {name: $name, domain: $domain}) "+
				"CALL { "+
				"  WITH a MATCH (a)-[r:RELATES]->(n:Company) WHERE r.kind IN $outgoing RETURN n "+
				"  UNION "+
				"  WITH a MATCH (a)<-[r:RELATES]-(n:Company) WHERE r.kind IN $incoming RETURN n "+
				"} "+
				"RETURN DISTINCT n.name AS name, n.domain AS domain ORDER BY domain, name",
			map[string]any{
				"name":     c.Name,
				"domain":   c.Domain,
				"outgoing": outgoing,
				"incoming": incoming,
			})
		if err != nil {
			return nil, err
		}
		var out []graph.Company
		for records.Next(ctx) {
			rec := records.Record()
			out = append(out, graph.Company{
				Name:   stringValue(rec, "name"),
				Domain: stringValue(rec, "domain"),
			})
		}
		return out, records.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query neighbors of %s: %w", c, err)
	}
	return result.([]graph.Company), nil
}

// Ping verifies the database is reachable.
func (r *Neo4jRepository) Ping(ctx context.Context) error {
	return r.driver.VerifyConnectivity(ctx)
}

func (r *Neo4jRepository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// relationshipRows flattens relationships into Cypher parameter maps.
func relationshipRows(rels []graph.Relationship) []map[string]any {
	rows := make([]map[string]any, 0, len(rels))
	for _, rel := range rels {
		rows = append(rows, map[string]any{
			"id":          rel.ID,
			"tail_name":   rel.Tail.Name,
			"tail_domain": rel.Tail.Domain,
			"head_name":   rel.Head.Name,
			"head_domain": rel.Head.Domain,
			"kind":        string(rel.Kind),
			"updated_at":  rel.UpdatedAt,
		})
	}
	return rows
}

func relationshipFromRecord(rec *neo4j.Record) graph.Relationship {
	return graph.Relationship{
		ID:        stringValue(rec, "id"),
		Tail:      graph.Company{Name: stringValue(rec, "tail_name"), Domain: stringValue(rec, "tail_domain")},
		Head:      graph.Company{Name: stringValue(rec, "head_name"), Domain: stringValue(rec, "head_domain")},
		Kind:      graph.Kind(stringValue(rec, "kind")),
		UpdatedAt: stringValue(rec, "updated_at"),
	}
}

func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

var _ graph.Repository = (*Neo4jRepository)(nil)
