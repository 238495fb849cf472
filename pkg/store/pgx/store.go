// Package pgx persists knowledge graph snapshots in PostgreSQL, using
// pgvector for embedding similarity search.
package pgx

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/finsight-ai/finsight/pkg/kg"
	"github.com/finsight-ai/finsight/pkg/logger"
	"github.com/finsight-ai/finsight/pkg/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// Store implements store.GraphStore on PostgreSQL. Writes are serialized
// with a mutex.
type Store struct {
	conn   pgxIConn
	dbLock sync.Mutex
}

var _ store.GraphStore = (*Store)(nil)

// NewStore creates a Store over an existing connection or pool.
func NewStore(conn pgxIConn) *Store {
	return &Store{conn: conn}
}

// Migrate applies the embedded schema migrations against the database at
// databaseURL.
func Migrate(databaseURL string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("graph store migrations applied")
	return nil
}

// SaveGraph replaces the stored snapshot for the given graph id in one
// transaction.
func (s *Store) SaveGraph(ctx context.Context, id string, snapshot kg.Snapshot) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin graph save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM graph_edges WHERE graph_id = $1", id); err != nil {
		return fmt.Errorf("failed to clear graph edges: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM graph_nodes WHERE graph_id = $1", id); err != nil {
		return fmt.Errorf("failed to clear graph nodes: %w", err)
	}

	for _, node := range snapshot.Nodes {
		metadata, err := json.Marshal(orEmptyMap(node.Metadata))
		if err != nil {
			return fmt.Errorf("failed to encode node metadata: %w", err)
		}
		var embedding *pgvector.Vector
		if len(node.Embedding) > 0 {
			v := pgvector.NewVector(node.Embedding)
			embedding = &v
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO graph_nodes (graph_id, node_id, node_type, metadata, source, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, node.ID, node.Type, metadata, node.Source, embedding,
		)
		if err != nil {
			return fmt.Errorf("failed to save node %s: %w", node.ID, err)
		}
	}

	for _, edge := range snapshot.Edges {
		metadata, err := json.Marshal(orEmptyMap(edge.Metadata))
		if err != nil {
			return fmt.Errorf("failed to encode edge metadata: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO graph_edges (graph_id, source, target, edge_type, weight, metadata)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, edge.Source, edge.Target, edge.Type, edge.Weight, metadata,
		)
		if err != nil {
			return fmt.Errorf("failed to save edge %s->%s: %w", edge.Source, edge.Target, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit graph save: %w", err)
	}
	return nil
}

// LoadGraph returns the stored snapshot for the given graph id.
func (s *Store) LoadGraph(ctx context.Context, id string) (kg.Snapshot, error) {
	var snapshot kg.Snapshot

	rows, err := s.conn.Query(ctx, `
		SELECT node_id, node_type, metadata, source, embedding
		FROM graph_nodes WHERE graph_id = $1 ORDER BY node_id`, id)
	if err != nil {
		return snapshot, fmt.Errorf("failed to load graph nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			node      kg.Node
			metadata  []byte
			embedding *pgvector.Vector
		)
		if err := rows.Scan(&node.ID, &node.Type, &metadata, &node.Source, &embedding); err != nil {
			return snapshot, fmt.Errorf("failed to scan graph node: %w", err)
		}
		if err := json.Unmarshal(metadata, &node.Metadata); err != nil {
			return snapshot, fmt.Errorf("failed to decode node metadata: %w", err)
		}
		if len(node.Metadata) == 0 {
			node.Metadata = map[string]string{}
		}
		if embedding != nil {
			node.Embedding = embedding.Slice()
		}
		snapshot.Nodes = append(snapshot.Nodes, node)
	}
	if err := rows.Err(); err != nil {
		return snapshot, fmt.Errorf("failed to read graph nodes: %w", err)
	}
	if len(snapshot.Nodes) == 0 {
		return snapshot, store.ErrNotFound
	}

	edgeRows, err := s.conn.Query(ctx, `
		SELECT source, target, edge_type, weight, metadata
		FROM graph_edges WHERE graph_id = $1 ORDER BY source, target, edge_type`, id)
	if err != nil {
		return snapshot, fmt.Errorf("failed to load graph edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var (
			edge     kg.Edge
			metadata []byte
		)
		if err := edgeRows.Scan(&edge.Source, &edge.Target, &edge.Type, &edge.Weight, &metadata); err != nil {
			return snapshot, fmt.Errorf("failed to scan graph edge: %w", err)
		}
		if err := json.Unmarshal(metadata, &edge.Metadata); err != nil {
			return snapshot, fmt.Errorf("failed to decode edge metadata: %w", err)
		}
		if len(edge.Metadata) == 0 {
			edge.Metadata = map[string]string{}
		}
		snapshot.Edges = append(snapshot.Edges, edge)
	}
	if err := edgeRows.Err(); err != nil {
		return snapshot, fmt.Errorf("failed to read graph edges: %w", err)
	}

	return snapshot, nil
}

// SimilarEntities returns up to limit embedded nodes of the graph ordered by
// cosine distance to the given embedding.
func (s *Store) SimilarEntities(ctx context.Context, id string, embedding []float32, limit int) ([]kg.Node, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.conn.Query(ctx, `
		SELECT node_id, node_type, metadata, source
		FROM graph_nodes
		WHERE graph_id = $1 AND embedding IS NOT NULL
		ORDER BY embedding <=> $2
		LIMIT $3`,
		id, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar entities: %w", err)
	}
	defer rows.Close()

	var nodes []kg.Node
	for rows.Next() {
		var (
			node     kg.Node
			metadata []byte
		)
		if err := rows.Scan(&node.ID, &node.Type, &metadata, &node.Source); err != nil {
			return nil, fmt.Errorf("failed to scan similar entity: %w", err)
		}
		if err := json.Unmarshal(metadata, &node.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode node metadata: %w", err)
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
