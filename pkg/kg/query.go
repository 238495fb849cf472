package kg

import (
	"context"
	"fmt"
	"sort"

	"github.com/finsight-ai/finsight/pkg/ai"
	"github.com/finsight-ai/finsight/pkg/logger"
)

const (
	defaultTopK     = 5
	defaultMaxDepth = 3
)

// NoRelevantEntitiesAnswer is returned when the graph holds nothing the
// question can anchor to.
const NoRelevantEntitiesAnswer = "No relevant entities found in the knowledge graph."

// QueryOptions control subgraph selection for a single query.
type QueryOptions struct {
	// TopK is the number of seed entities selected by embedding similarity.
	TopK int
	// MaxDepth is the hop radius of the context subgraph around the seeds.
	MaxDepth int
}

// QueryOption configures a single query.
type QueryOption func(*QueryOptions)

// WithTopK overrides the number of seed entities.
func WithTopK(k int) QueryOption {
	return func(o *QueryOptions) {
		if k > 0 {
			o.TopK = k
		}
	}
}

// WithMaxDepth overrides the subgraph hop radius.
func WithMaxDepth(depth int) QueryOption {
	return func(o *QueryOptions) {
		if depth >= 0 {
			o.MaxDepth = depth
		}
	}
}

// QueryResult is the answer to a graph query plus the context it was
// grounded on: the seed entities and the serialized subgraph handed to the
// model.
type QueryResult struct {
	Query        string   `json:"query"`
	Answer       string   `json:"answer"`
	Entities     []string `json:"entities"`
	Subgraph     string   `json:"subgraph,omitempty"`
	ContextNodes int      `json:"context_nodes"`
	ContextEdges int      `json:"context_edges"`
}

// QueryEngine answers natural language questions from the knowledge graph:
// it ranks entities by embedding similarity to the question, expands a
// bounded-depth subgraph around the best matches, and has the model answer
// from that context alone.
type QueryEngine struct {
	client ai.Client
	graph  *Graph
}

// NewQueryEngineParams contains configuration options for creating a new
// QueryEngine.
type NewQueryEngineParams struct {
	Client ai.Client
	Graph  *Graph
}

// NewQueryEngine creates a QueryEngine over the given graph.
func NewQueryEngine(params NewQueryEngineParams) *QueryEngine {
	return &QueryEngine{
		client: params.Client,
		graph:  params.Graph,
	}
}

type scoredNode struct {
	id    string
	score float64
}

// Query answers a question from the graph. Defaults: five seed entities,
// three hops of context. Nodes without embeddings never become seeds but can
// still enter the context through expansion.
func (q *QueryEngine) Query(ctx context.Context, question string, opts ...QueryOption) (*QueryResult, error) {
	options := QueryOptions{
		TopK:     defaultTopK,
		MaxDepth: defaultMaxDepth,
	}
	for _, o := range opts {
		o(&options)
	}

	seeds, err := q.relevantEntities(ctx, question, options.TopK)
	if err != nil {
		return nil, err
	}
	if len(seeds) == 0 {
		return &QueryResult{
			Query:    question,
			Answer:   NoRelevantEntitiesAnswer,
			Entities: []string{},
		}, nil
	}

	reached := q.graph.Neighborhood(seeds, options.MaxDepth)
	ids := make([]string, 0, len(reached))
	for id := range reached {
		ids = append(ids, id)
	}
	sub := q.graph.Subgraph(ids)

	logger.Debug("graph query context assembled",
		"seeds", len(seeds), "nodes", sub.NodeCount(), "edges", sub.EdgeCount())

	subgraph := sub.Describe()
	systemPrompt := fmt.Sprintf(ai.GraphAnswerPrompt, subgraph)
	answer, err := q.client.Complete(ctx, question, ai.WithSystemPrompts(systemPrompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate graph answer: %w", err)
	}

	return &QueryResult{
		Query:        question,
		Answer:       answer,
		Entities:     seeds,
		Subgraph:     subgraph,
		ContextNodes: sub.NodeCount(),
		ContextEdges: sub.EdgeCount(),
	}, nil
}

// relevantEntities embeds the question and ranks embedded graph nodes by
// cosine similarity, returning up to topK identities, best first.
func (q *QueryEngine) relevantEntities(ctx context.Context, question string, topK int) ([]string, error) {
	nodes := q.graph.Nodes()
	if len(nodes) == 0 {
		return nil, nil
	}

	questionVec, err := q.client.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	var scored []scoredNode
	for _, node := range nodes {
		if len(node.Embedding) == 0 {
			continue
		}
		scored = append(scored, scoredNode{
			id:    node.ID,
			score: CosineSimilarity(questionVec, node.Embedding),
		})
	}
	if len(scored) == 0 {
		return nil, nil
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].id < scored[j].id
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	seeds := make([]string, 0, topK)
	for _, s := range scored[:topK] {
		seeds = append(seeds, s.id)
	}
	return seeds, nil
}
