package kg

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/finsight-ai/finsight/internal/util"
	"github.com/finsight-ai/finsight/pkg/ai"
	"github.com/finsight-ai/finsight/pkg/logger"
)

// Chunks shorter than this carry too little context for reliable extraction
// and are skipped.
const minChunkChars = 100

// Document is one input text for graph construction.
type Document struct {
	ID     string
	Ticker string
	Text   string
}

// BuildStats summarizes one Build run.
type BuildStats struct {
	Documents     int `json:"documents"`
	Chunks        int `json:"chunks"`
	SkippedChunks int `json:"skipped_chunks"`
	FailedChunks  int `json:"failed_chunks"`
	Nodes         int `json:"nodes"`
	Edges         int `json:"edges"`
}

// Builder drives the document-to-graph pipeline: chunking, parallel
// extraction, merging into the shared graph, and node embedding.
type Builder struct {
	client    ai.Client
	chunker   *Chunker
	extractor *Extractor

	parallelMax int
	maxRetries  int
}

// NewBuilderParams contains configuration options for creating a new Builder.
type NewBuilderParams struct {
	Client    ai.Client
	Chunker   *Chunker
	Extractor *Extractor

	// ParallelExtractions bounds concurrent extraction calls.
	ParallelExtractions int
	// MaxRetries bounds extraction attempts per chunk before the chunk is
	// dropped.
	MaxRetries int
}

// NewBuilder creates a Builder.
func NewBuilder(params NewBuilderParams) *Builder {
	parallelMax := params.ParallelExtractions
	if parallelMax <= 0 {
		parallelMax = 4
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Builder{
		client:      params.Client,
		chunker:     params.Chunker,
		extractor:   params.Extractor,
		parallelMax: parallelMax,
		maxRetries:  maxRetries,
	}
}

// Build processes documents into the graph. Chunks are extracted in parallel
// up to the configured limit; each extraction is retried before the chunk is
// dropped, so a single bad chunk never fails the run. After merging, nodes
// that gained no embedding yet are embedded in batch.
//
// The graph grows monotonically: repeated builds over overlapping corpora
// merge into existing nodes and edges instead of duplicating them.
func (b *Builder) Build(ctx context.Context, g *Graph, docs []Document) (*BuildStats, error) {
	stats := &BuildStats{Documents: len(docs)}

	type chunkJob struct {
		chunk  Chunk
		ticker string
	}
	var jobs []chunkJob
	for _, doc := range docs {
		chunks, err := b.chunker.Split(doc.ID, doc.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to chunk document %s: %w", doc.ID, err)
		}
		for _, chunk := range chunks {
			if len(chunk.Text) < minChunkChars {
				logger.Debug("skipping short chunk", "chunk", chunk.ID, "document", doc.ID, "length", len(chunk.Text))
				stats.SkippedChunks++
				continue
			}
			jobs = append(jobs, chunkJob{chunk: chunk, ticker: doc.Ticker})
		}
	}
	stats.Chunks = len(jobs)

	mergeMu := sync.Mutex{}
	failed := 0

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.parallelMax)
	for _, job := range jobs {
		j := job
		eg.Go(func() error {
			select {
			case <-gCtx.Done():
				return nil
			default:
				extraction, err := util.RetryWithContext(gCtx, b.maxRetries, func(ctx context.Context) (Extraction, error) {
					return b.extractor.Extract(ctx, j.chunk, j.ticker)
				})
				if err != nil {
					if gCtx.Err() != nil {
						return gCtx.Err()
					}
					logger.Warn("extraction failed, dropping chunk",
						"chunk", j.chunk.ID, "document", j.chunk.DocumentID, "error", err)
					mergeMu.Lock()
					failed++
					mergeMu.Unlock()
					return nil
				}

				mergeMu.Lock()
				for _, node := range extraction.Nodes {
					g.AddNode(node)
				}
				for _, edge := range extraction.Edges {
					g.AddEdge(edge)
				}
				mergeMu.Unlock()
				return nil
			}
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	stats.FailedChunks = failed

	if err := b.embedMissing(ctx, g); err != nil {
		return nil, err
	}

	stats.Nodes = g.NodeCount()
	stats.Edges = g.EdgeCount()
	return stats, nil
}

// embedMissing computes embeddings for nodes that have none yet. Node text
// combines type, identity, and metadata so structurally similar entities land
// close in vector space.
func (b *Builder) embedMissing(ctx context.Context, g *Graph) error {
	var pending []Node
	for _, node := range g.Nodes() {
		if len(node.Embedding) == 0 {
			pending = append(pending, node)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	const batchSize = 64
	for start := 0; start < len(pending); start += batchSize {
		end := util.Min(start+batchSize, len(pending))
		batch := pending[start:end]

		texts := make([]string, 0, len(batch))
		for _, node := range batch {
			texts = append(texts, embeddingText(node))
		}

		vectors, err := b.client.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed graph nodes: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding batch size mismatch: got %d want %d", len(vectors), len(batch))
		}
		for i, node := range batch {
			g.SetEmbedding(node.ID, vectors[i])
		}
	}
	return nil
}

func embeddingText(n Node) string {
	var b strings.Builder
	if n.Type != "" {
		b.WriteString(n.Type)
		b.WriteString(": ")
	}
	b.WriteString(n.ID)

	if len(n.Metadata) > 0 {
		keys := make([]string, 0, len(n.Metadata))
		for k := range n.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "; %s=%s", k, n.Metadata[k])
		}
	}
	return b.String()
}
