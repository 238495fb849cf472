package kg

import (
	"math"
	"testing"
)

func starGraph() *Graph {
	g := NewGraph()
	for _, leaf := range []string{"A", "B", "C", "D"} {
		g.AddEdge(Edge{Source: "HUB", Target: leaf, Type: RelMentioned})
	}
	return g
}

func TestDegreeCentrality(t *testing.T) {
	g := starGraph()
	scores := g.DegreeCentrality()

	if got := scores["HUB"]; got != 1.0 {
		t.Errorf("hub degree centrality: got %v want 1.0", got)
	}
	if got := scores["A"]; got != 0.25 {
		t.Errorf("leaf degree centrality: got %v want 0.25", got)
	}
}

func TestDegreeCentralitySingleNode(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "ONLY"})

	if got := g.DegreeCentrality()["ONLY"]; got != 0 {
		t.Errorf("single-node degree centrality: got %v want 0", got)
	}
}

func TestPageRankSumsToOne(t *testing.T) {
	g := starGraph()
	scores := g.PageRank()

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	if math.Abs(sum-1.0) > 1e-4 {
		t.Errorf("pagerank scores should sum to 1, got %v", sum)
	}
}

func TestPageRankSinkCollectsRank(t *testing.T) {
	g := NewGraph()
	g.AddEdge(Edge{Source: "A", Target: "SINK", Type: RelMentioned})
	g.AddEdge(Edge{Source: "B", Target: "SINK", Type: RelMentioned})
	g.AddEdge(Edge{Source: "C", Target: "SINK", Type: RelMentioned})

	scores := g.PageRank()
	if scores["SINK"] <= scores["A"] {
		t.Errorf("sink should outrank sources: sink=%v a=%v", scores["SINK"], scores["A"])
	}
}

func TestPageRankEmptyGraph(t *testing.T) {
	if got := NewGraph().PageRank(); len(got) != 0 {
		t.Errorf("expected empty scores, got %v", got)
	}
}

func TestBetweennessCentralityPath(t *testing.T) {
	g := NewGraph()
	// A -> B -> C: all shortest paths through B.
	g.AddEdge(Edge{Source: "A", Target: "B", Type: RelMentioned})
	g.AddEdge(Edge{Source: "B", Target: "C", Type: RelMentioned})

	scores := g.BetweennessCentrality()
	if scores["B"] <= 0 {
		t.Errorf("middle node should have positive betweenness, got %v", scores["B"])
	}
	if scores["A"] != 0 || scores["C"] != 0 {
		t.Errorf("endpoints should have zero betweenness: a=%v c=%v", scores["A"], scores["C"])
	}
	// Directed 3-node path has exactly one pair routed through B,
	// normalized by (n-1)(n-2) = 2.
	if math.Abs(scores["B"]-0.5) > 1e-9 {
		t.Errorf("betweenness of B: got %v want 0.5", scores["B"])
	}
}

func TestBetweennessCentralityTinyGraph(t *testing.T) {
	g := NewGraph()
	g.AddEdge(Edge{Source: "A", Target: "B", Type: RelMentioned})

	for id, score := range g.BetweennessCentrality() {
		if score != 0 {
			t.Errorf("two-node graph should have zero betweenness, %s=%v", id, score)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 0, 1}, b: []float32{1, 0, 1}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "mismatched lengths", a: []float32{1, 0}, b: []float32{1}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v want %v", got, tt.want)
			}
		})
	}
}
