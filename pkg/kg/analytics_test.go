package kg

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAnalyzeKnownEntity(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "AAPL", Type: TypeCompany})
	g.AddEdge(Edge{Source: "QUALCOMM", Target: "AAPL", Type: RelSupplier, Weight: 0.9})
	g.AddEdge(Edge{Source: "AAPL", Target: "VISION PRO", Type: RelMentioned, Weight: 0.7})

	a := g.Analyze("AAPL")
	if !a.Found {
		t.Fatal("expected entity to be found")
	}
	if a.Type != TypeCompany {
		t.Errorf("type: got %q", a.Type)
	}
	if len(a.Relationships.Incoming) != 1 || a.Relationships.Incoming[0].Entity != "QUALCOMM" {
		t.Errorf("incoming: got %+v", a.Relationships.Incoming)
	}
	if len(a.Relationships.Outgoing) != 1 || a.Relationships.Outgoing[0].Entity != "VISION PRO" {
		t.Errorf("outgoing: got %+v", a.Relationships.Outgoing)
	}
	if a.TotalConnections == nil || *a.TotalConnections != 2 {
		t.Errorf("total connections: got %v", a.TotalConnections)
	}
	if a.Centrality == nil {
		t.Fatal("expected centrality scores")
	}
	if a.Centrality.Degree <= 0 {
		t.Errorf("degree centrality should be positive, got %v", a.Centrality.Degree)
	}
	if a.Centrality.PageRank <= 0 {
		t.Errorf("pagerank should be positive, got %v", a.Centrality.PageRank)
	}
}

func TestAnalyzeUnknownEntity(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "AAPL", Type: TypeCompany})

	a := g.Analyze("UNKNOWN CORP")
	if a.Found {
		t.Fatal("expected entity to be reported as not found")
	}
	if a.Relationships != nil || a.Centrality != nil || a.TotalConnections != nil {
		t.Error("not-found analysis must carry no structural fields")
	}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "total_connections") {
		t.Errorf("not-found analysis must not serialize total_connections: %s", data)
	}
}
