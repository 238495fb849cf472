package kg

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Entity types extracted from filings. Extraction may introduce further
// types; these are the ones the prompts ask for.
const (
	TypeCompany  = "COMPANY"
	TypeProduct  = "PRODUCT"
	TypePerson   = "PERSON"
	TypeLocation = "LOCATION"
	TypeMetric   = "METRIC"
)

// Relationship types. Extraction may introduce further types; "mentioned"
// is the weakest signal and used when no stronger type applies.
const (
	RelPartnership = "partnership"
	RelAcquisition = "acquisition"
	RelSupplier    = "supplier"
	RelCustomer    = "customer"
	RelCompetitor  = "competitor"
	RelInvestment  = "investment"
	RelMentioned   = "mentioned"
)

// Node is an entity in the knowledge graph. Identity is the ID (name or
// ticker); re-extraction of the same identity merges attributes instead of
// duplicating the node.
type Node struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Source    string            `json:"source,omitempty"`
	Embedding []float32         `json:"embedding,omitempty"`
}

// Edge is a typed, weighted, directed relationship between two entities.
type Edge struct {
	Source   string            `json:"source"`
	Target   string            `json:"target"`
	Type     string            `json:"type"`
	Weight   float64           `json:"weight"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type edgeKey struct {
	source string
	target string
	relTyp string
}

// Graph is a directed attributed graph of entities and relationships built
// from a document corpus. It grows monotonically as documents are processed
// and is never automatically pruned.
//
// Edge identity is (source, target, type): re-observing the same triple
// overwrites weight and merges metadata (last write wins) rather than
// creating a parallel edge. Multiple edges of different types between the
// same ordered pair coexist.
//
// All exported methods are safe for concurrent use.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	edges map[edgeKey]*Edge
	out   map[string]map[string]bool
	in    map[string]map[string]bool
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		edges: make(map[edgeKey]*Edge),
		out:   make(map[string]map[string]bool),
		in:    make(map[string]map[string]bool),
	}
}

// AddNode inserts or merges a node. Type and metadata follow last-write-wins;
// provenance (Source) is preserved from the first insertion unless the
// existing node carried no source yet. An existing embedding is kept when the
// incoming node has none.
func (g *Graph) AddNode(n Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addNodeLocked(n)
}

func (g *Graph) addNodeLocked(n Node) {
	if n.ID == "" {
		return
	}
	existing, ok := g.nodes[n.ID]
	if !ok {
		c := n
		if c.Metadata == nil {
			c.Metadata = map[string]string{}
		}
		g.nodes[n.ID] = &c
		return
	}

	if n.Type != "" {
		existing.Type = n.Type
	}
	for k, v := range n.Metadata {
		existing.Metadata[k] = v
	}
	if existing.Source == "" {
		existing.Source = n.Source
	}
	if len(n.Embedding) > 0 {
		existing.Embedding = n.Embedding
	}
}

// AddEdge inserts or updates a directed edge. Endpoint nodes are created
// implicitly when absent. Re-observation of the same (source, target, type)
// overwrites the weight and merges metadata.
func (g *Graph) AddEdge(e Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addEdgeLocked(e)
}

func (g *Graph) addEdgeLocked(e Edge) {
	if e.Source == "" || e.Target == "" {
		return
	}
	if e.Weight <= 0 {
		e.Weight = 1.0
	}
	if _, ok := g.nodes[e.Source]; !ok {
		g.addNodeLocked(Node{ID: e.Source})
	}
	if _, ok := g.nodes[e.Target]; !ok {
		g.addNodeLocked(Node{ID: e.Target})
	}

	key := edgeKey{source: e.Source, target: e.Target, relTyp: e.Type}
	existing, ok := g.edges[key]
	if ok {
		existing.Weight = e.Weight
		for k, v := range e.Metadata {
			existing.Metadata[k] = v
		}
		return
	}

	c := e
	if c.Metadata == nil {
		c.Metadata = map[string]string{}
	}
	g.edges[key] = &c

	if g.out[e.Source] == nil {
		g.out[e.Source] = make(map[string]bool)
	}
	g.out[e.Source][e.Target] = true
	if g.in[e.Target] == nil {
		g.in[e.Target] = make(map[string]bool)
	}
	g.in[e.Target][e.Source] = true
}

// HasNode reports whether an entity identity exists in the graph.
func (g *Graph) HasNode(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// Node returns a copy of the node with the given identity.
func (g *Graph) Node(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// SetEmbedding attaches an embedding vector to an existing node.
func (g *Graph) SetEmbedding(id string, embedding []float32) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	n.Embedding = embedding
	return true
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// NodeIDs returns all node identities in sorted order.
func (g *Graph) NodeIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodeIDsLocked()
}

func (g *Graph) nodeIDsLocked() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Nodes returns copies of all nodes, ordered by identity.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	nodes := make([]Node, 0, len(g.nodes))
	for _, id := range g.nodeIDsLocked() {
		nodes = append(nodes, *g.nodes[id])
	}
	return nodes
}

// Edges returns copies of all edges, ordered by (source, target, type).
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edgesLocked()
}

func (g *Graph) edgesLocked() []Edge {
	edges := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, *e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		if edges[i].Target != edges[j].Target {
			return edges[i].Target < edges[j].Target
		}
		return edges[i].Type < edges[j].Type
	})
	return edges
}

// Successors returns the identities reachable from id over outgoing edges,
// in sorted order.
func (g *Graph) Successors(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.out[id])
}

// Predecessors returns the identities with edges pointing at id, in sorted
// order.
func (g *Graph) Predecessors(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.in[id])
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// OutEdges returns copies of the edges leaving id.
func (g *Graph) OutEdges(id string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var edges []Edge
	for key, e := range g.edges {
		if key.source == id {
			edges = append(edges, *e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Target != edges[j].Target {
			return edges[i].Target < edges[j].Target
		}
		return edges[i].Type < edges[j].Type
	})
	return edges
}

// InEdges returns copies of the edges arriving at id.
func (g *Graph) InEdges(id string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var edges []Edge
	for key, e := range g.edges {
		if key.target == id {
			edges = append(edges, *e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Type < edges[j].Type
	})
	return edges
}

// Neighborhood performs a breadth-first expansion from the seed identities up
// to maxDepth hops, following edges in either direction. The result maps each
// reached identity to its hop distance from the nearest seed. Seeds absent
// from the graph are skipped silently.
func (g *Graph) Neighborhood(seeds []string, maxDepth int) map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	depth := make(map[string]int)
	queue := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		if _, ok := g.nodes[seed]; !ok {
			continue
		}
		if _, seen := depth[seed]; seen {
			continue
		}
		depth[seed] = 0
		queue = append(queue, seed)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		d := depth[current]
		if d >= maxDepth {
			continue
		}
		for next := range g.out[current] {
			if _, seen := depth[next]; !seen {
				depth[next] = d + 1
				queue = append(queue, next)
			}
		}
		for next := range g.in[current] {
			if _, seen := depth[next]; !seen {
				depth[next] = d + 1
				queue = append(queue, next)
			}
		}
	}

	return depth
}

// Subgraph returns the induced subgraph over the given node identities:
// the named nodes plus every edge whose endpoints are both included.
// Unknown identities are ignored.
func (g *Graph) Subgraph(ids []string) *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	include := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := g.nodes[id]; ok {
			include[id] = true
		}
	}

	sub := NewGraph()
	for id := range include {
		sub.addNodeLocked(*g.nodes[id])
	}
	for key, e := range g.edges {
		if include[key.source] && include[key.target] {
			sub.addEdgeLocked(*e)
		}
	}
	return sub
}

// Describe serializes the graph to a flat text description: one line per node
// as "<type>: <identity>", then one line per edge as
// "<source> <relationship_type> <target>". Output is deterministic.
func (g *Graph) Describe() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var b strings.Builder
	for _, id := range g.nodeIDsLocked() {
		n := g.nodes[id]
		typ := n.Type
		if typ == "" {
			typ = "Entity"
		}
		fmt.Fprintf(&b, "%s: %s\n", typ, n.ID)
	}
	for _, e := range g.edgesLocked() {
		typ := e.Type
		if typ == "" {
			typ = "related to"
		}
		fmt.Fprintf(&b, "%s %s %s\n", e.Source, typ, e.Target)
	}
	return strings.TrimRight(b.String(), "\n")
}
