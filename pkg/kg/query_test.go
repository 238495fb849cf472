package kg

import (
	"context"
	"strings"
	"testing"

	"github.com/finsight-ai/finsight/pkg/ai"
)

// queryTestGraph builds a chain AAPL -> B -> C -> D -> E where only AAPL
// carries an embedding aligned with the question vector.
func queryTestGraph() *Graph {
	g := NewGraph()
	chain := []string{"AAPL", "B", "C", "D", "E"}
	for i := 0; i < len(chain)-1; i++ {
		g.AddEdge(Edge{Source: chain[i], Target: chain[i+1], Type: RelMentioned})
	}
	g.SetEmbedding("AAPL", []float32{1, 0, 0})
	return g
}

func TestQueryBuildsBoundedContext(t *testing.T) {
	var captured string
	client := &fakeClient{
		completeFn: func(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
			options := ai.GenerateOptions{}
			for _, o := range opts {
				o(&options)
			}
			captured = strings.Join(options.SystemPrompts, "\n")
			return "Apple is the anchor entity.", nil
		},
	}
	q := NewQueryEngine(NewQueryEngineParams{Client: client, Graph: queryTestGraph()})

	res, err := q.Query(context.Background(), "What do we know about Apple?", WithMaxDepth(2))
	if err != nil {
		t.Fatal(err)
	}

	if res.Query != "What do we know about Apple?" {
		t.Errorf("query not echoed: got %q", res.Query)
	}
	if res.Answer != "Apple is the anchor entity." {
		t.Errorf("answer: got %q", res.Answer)
	}
	if len(res.Entities) != 1 || res.Entities[0] != "AAPL" {
		t.Errorf("seeds: got %v", res.Entities)
	}
	// Depth 2 from AAPL reaches B and C but not D or E.
	if res.ContextNodes != 3 {
		t.Errorf("context nodes: got %d want 3", res.ContextNodes)
	}
	for _, want := range []string{"AAPL mentioned B", "B mentioned C"} {
		if !strings.Contains(captured, want) {
			t.Errorf("context missing %q:\n%s", want, captured)
		}
	}
	if strings.Contains(captured, "C mentioned D") {
		t.Errorf("context leaked beyond depth bound:\n%s", captured)
	}
	// The grounding context is carried in the result, not just the prompt.
	for _, want := range []string{"AAPL mentioned B", "B mentioned C"} {
		if !strings.Contains(res.Subgraph, want) {
			t.Errorf("result subgraph missing %q:\n%s", want, res.Subgraph)
		}
	}
	if strings.Contains(res.Subgraph, "C mentioned D") {
		t.Errorf("result subgraph leaked beyond depth bound:\n%s", res.Subgraph)
	}
}

func TestQueryEmptyGraph(t *testing.T) {
	client := &fakeClient{}
	q := NewQueryEngine(NewQueryEngineParams{Client: client, Graph: NewGraph()})

	res, err := q.Query(context.Background(), "Anything?")
	if err != nil {
		t.Fatal(err)
	}
	if res.Answer != NoRelevantEntitiesAnswer {
		t.Errorf("answer: got %q", res.Answer)
	}
	if res.Query != "Anything?" {
		t.Errorf("query not echoed: got %q", res.Query)
	}
	if res.Subgraph != "" {
		t.Errorf("expected empty subgraph, got %q", res.Subgraph)
	}
}

func TestQuerySkipsNodesWithoutEmbeddings(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "NO VECTOR", Type: TypeCompany})

	client := &fakeClient{}
	q := NewQueryEngine(NewQueryEngineParams{Client: client, Graph: g})

	res, err := q.Query(context.Background(), "Anything?")
	if err != nil {
		t.Fatal(err)
	}
	if res.Answer != NoRelevantEntitiesAnswer {
		t.Errorf("nodes without embeddings must not seed queries, got %q", res.Answer)
	}
}

func TestQueryTopKLimitsSeeds(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"A", "B", "C", "D"} {
		g.AddNode(Node{ID: id, Type: TypeCompany})
		g.SetEmbedding(id, []float32{1, 0, 0})
	}

	client := &fakeClient{
		completeFn: func(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
			return "ok", nil
		},
	}
	q := NewQueryEngine(NewQueryEngineParams{Client: client, Graph: g})

	res, err := q.Query(context.Background(), "Anything?", WithTopK(2))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entities) != 2 {
		t.Errorf("expected 2 seeds, got %v", res.Entities)
	}
}
