package kg

import (
	"encoding/json"
	"os"
)

// Snapshot is the portable JSON form of a graph: flat node and edge lists.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Snapshot captures the graph as flat node and edge lists, deterministically
// ordered.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{
		Nodes: g.Nodes(),
		Edges: g.Edges(),
	}
}

// FromSnapshot rebuilds a graph from a snapshot.
func FromSnapshot(s Snapshot) *Graph {
	g := NewGraph()
	for _, n := range s.Nodes {
		g.AddNode(n)
	}
	for _, e := range s.Edges {
		g.AddEdge(e)
	}
	return g
}

// SaveFile writes the graph snapshot to path as JSON.
func (g *Graph) SaveFile(path string) error {
	data, err := json.MarshalIndent(g.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadFile reads a graph snapshot from a JSON file.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return FromSnapshot(s), nil
}
