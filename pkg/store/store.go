package store

import (
	"context"
	"errors"

	"github.com/finsight-ai/finsight/pkg/kg"
)

// ErrNotFound is returned when a named graph does not exist in the store.
var ErrNotFound = errors.New("graph not found")

// GraphStore persists knowledge graph snapshots and supports embedding-based
// entity lookup without loading the whole graph.
type GraphStore interface {
	// SaveGraph replaces the stored snapshot for the given graph id.
	SaveGraph(ctx context.Context, id string, snapshot kg.Snapshot) error
	// LoadGraph returns the stored snapshot, or ErrNotFound.
	LoadGraph(ctx context.Context, id string) (kg.Snapshot, error)
	// SimilarEntities returns up to limit stored nodes ordered by cosine
	// distance to the given embedding.
	SimilarEntities(ctx context.Context, id string, embedding []float32, limit int) ([]kg.Node, error)
}
