package kg

import "math"

const (
	pageRankDamping    = 0.85
	pageRankIterations = 100
	pageRankTolerance  = 1e-6
)

// DegreeCentrality returns, for every node, its total degree (in plus out,
// counting distinct neighbors per direction) normalized by the maximum
// possible degree n-1. A single-node graph yields 0 for that node.
func (g *Graph) DegreeCentrality() map[string]float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := len(g.nodes)
	scores := make(map[string]float64, n)
	if n <= 1 {
		for id := range g.nodes {
			scores[id] = 0
		}
		return scores
	}

	norm := float64(n - 1)
	for id := range g.nodes {
		degree := len(g.out[id]) + len(g.in[id])
		scores[id] = float64(degree) / norm
	}
	return scores
}

// PageRank computes PageRank scores via power iteration over outgoing edges,
// with damping 0.85. Dangling nodes distribute their rank uniformly.
// Iteration stops when the total L1 change drops below tolerance, or after a
// fixed iteration cap.
func (g *Graph) PageRank() map[string]float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := len(g.nodes)
	scores := make(map[string]float64, n)
	if n == 0 {
		return scores
	}

	initial := 1.0 / float64(n)
	for id := range g.nodes {
		scores[id] = initial
	}

	base := (1.0 - pageRankDamping) / float64(n)
	for iter := 0; iter < pageRankIterations; iter++ {
		next := make(map[string]float64, n)
		dangling := 0.0
		for id, score := range scores {
			succ := g.out[id]
			if len(succ) == 0 {
				dangling += score
				continue
			}
			share := score / float64(len(succ))
			for target := range succ {
				next[target] += share
			}
		}

		danglingShare := dangling / float64(n)
		delta := 0.0
		for id := range g.nodes {
			updated := base + pageRankDamping*(next[id]+danglingShare)
			delta += math.Abs(updated - scores[id])
			next[id] = updated
		}
		scores = next

		if delta < pageRankTolerance {
			break
		}
	}
	return scores
}

// BetweennessCentrality computes betweenness via Brandes' algorithm over
// directed edges, treating all edges as unit length. Scores are normalized
// by (n-1)(n-2) for graphs with more than two nodes.
func (g *Graph) BetweennessCentrality() map[string]float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := len(g.nodes)
	scores := make(map[string]float64, n)
	for id := range g.nodes {
		scores[id] = 0
	}
	if n <= 2 {
		return scores
	}

	for source := range g.nodes {
		// BFS from source tracking shortest-path counts and predecessors.
		var stack []string
		pred := make(map[string][]string, n)
		sigma := map[string]float64{source: 1}
		dist := map[string]int{source: 0}

		queue := []string{source}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for w := range g.out[v] {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		// Dependency accumulation in reverse BFS order.
		delta := make(map[string]float64, len(stack))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != source {
				scores[w] += delta[w]
			}
		}
	}

	norm := float64(n-1) * float64(n-2)
	for id := range scores {
		scores[id] /= norm
	}
	return scores
}

// CosineSimilarity computes the cosine similarity of two vectors. Mismatched
// lengths or zero vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
