package kg

// Relationship describes one edge from the perspective of an analyzed entity.
type Relationship struct {
	Entity string  `json:"entity"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// RelationshipSummary groups an entity's edges by direction.
type RelationshipSummary struct {
	Incoming []Relationship `json:"incoming"`
	Outgoing []Relationship `json:"outgoing"`
}

// CentralityScores holds the centrality measures for a single entity.
type CentralityScores struct {
	Degree      float64 `json:"degree"`
	Betweenness float64 `json:"betweenness"`
	PageRank    float64 `json:"pagerank"`
}

// Analysis is the structural report for one entity. When the entity is not
// present in the graph, Found is false and the relationship, centrality, and
// connection-count fields are absent.
type Analysis struct {
	Entity           string               `json:"entity"`
	Found            bool                 `json:"found"`
	Type             string               `json:"type,omitempty"`
	Relationships    *RelationshipSummary `json:"relationships,omitempty"`
	Centrality       *CentralityScores    `json:"centrality,omitempty"`
	TotalConnections *int                 `json:"total_connections,omitempty"`
}

// Analyze reports the structural position of an entity: its incoming and
// outgoing relationships, degree, betweenness, and PageRank centrality, and
// its total connection count. Centrality is computed over the whole graph at
// call time.
func (g *Graph) Analyze(entityID string) Analysis {
	if !g.HasNode(entityID) {
		return Analysis{Entity: entityID, Found: false}
	}

	node, _ := g.Node(entityID)

	summary := &RelationshipSummary{
		Incoming: []Relationship{},
		Outgoing: []Relationship{},
	}
	for _, e := range g.InEdges(entityID) {
		summary.Incoming = append(summary.Incoming, Relationship{
			Entity: e.Source,
			Type:   e.Type,
			Weight: e.Weight,
		})
	}
	for _, e := range g.OutEdges(entityID) {
		summary.Outgoing = append(summary.Outgoing, Relationship{
			Entity: e.Target,
			Type:   e.Type,
			Weight: e.Weight,
		})
	}

	degree := g.DegreeCentrality()
	betweenness := g.BetweennessCentrality()
	pagerank := g.PageRank()

	total := len(summary.Incoming) + len(summary.Outgoing)
	return Analysis{
		Entity:        entityID,
		Found:         true,
		Type:          node.Type,
		Relationships: summary,
		Centrality: &CentralityScores{
			Degree:      degree[entityID],
			Betweenness: betweenness[entityID],
			PageRank:    pagerank[entityID],
		},
		TotalConnections: &total,
	}
}
