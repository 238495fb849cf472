package kg

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/finsight-ai/finsight/pkg/ai"
)

// fakeClient implements ai.Client for pipeline tests. Extraction runs on
// parallel workers, so the call counter is mutex-guarded.
type fakeClient struct {
	completeFn  func(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error)
	extractJSON string
	extractErr  error
	embedFn     func(text string) []float32

	mu           sync.Mutex
	extractCalls int
}

func (f *fakeClient) Complete(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	if f.completeFn != nil {
		return f.completeFn(ctx, prompt, opts...)
	}
	return "", errors.New("unexpected Complete call")
}

// CompleteWithFormat parses the canned response through ai.UnmarshalFlexible,
// the same path the real providers take.
func (f *fakeClient) CompleteWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	f.mu.Lock()
	f.extractCalls++
	f.mu.Unlock()
	if f.extractErr != nil {
		return f.extractErr
	}
	return ai.UnmarshalFlexible(f.extractJSON, out)
}

func (f *fakeClient) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

func (f *fakeClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if f.embedFn != nil {
			out[i] = f.embedFn(text)
		} else {
			out[i] = []float32{1, 0, 0}
		}
	}
	return out, nil
}

func newTestBuilder(client ai.Client, t *testing.T) *Builder {
	t.Helper()
	chunker, err := NewChunker(ChunkerParams{Size: 1000, Overlap: 200})
	if err != nil {
		t.Fatal(err)
	}
	return NewBuilder(NewBuilderParams{
		Client:              client,
		Chunker:             chunker,
		Extractor:           NewExtractor(NewExtractorParams{Client: client}),
		ParallelExtractions: 2,
		MaxRetries:          2,
	})
}

const extractionFixture = `{
	"entities": [
		{"name": "AAPL", "type": "COMPANY", "metadata": "ticker=AAPL"},
		{"name": "QUALCOMM", "type": "COMPANY", "metadata": ""}
	],
	"relationships": [
		{"source": "QUALCOMM", "target": "AAPL", "type": "supplier", "confidence": 0.9}
	]
}`

func longDocText() string {
	return strings.Repeat("Apple entered into a multi-year supply agreement with Qualcomm for modem chips used across the iPhone lineup. ", 3)
}

func TestBuildMergesExtractions(t *testing.T) {
	client := &fakeClient{extractJSON: extractionFixture}
	b := newTestBuilder(client, t)
	g := NewGraph()

	stats, err := b.Build(context.Background(), g, []Document{
		{ID: "10k-2024", Ticker: "AAPL", Text: longDocText()},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !g.HasNode("AAPL") || !g.HasNode("QUALCOMM") {
		t.Fatal("expected extracted entities in graph")
	}
	edges := g.OutEdges("QUALCOMM")
	if len(edges) != 1 || edges[0].Type != RelSupplier || edges[0].Weight != 0.9 {
		t.Errorf("unexpected edges: %+v", edges)
	}

	n, _ := g.Node("AAPL")
	if n.Metadata["ticker"] != "AAPL" {
		t.Errorf("metadata pairs not parsed: %v", n.Metadata)
	}
	if n.Source != "10k-2024" {
		t.Errorf("node source: got %q", n.Source)
	}
	if len(n.Embedding) == 0 {
		t.Error("expected node embedding after build")
	}
	if stats.Nodes != g.NodeCount() || stats.Edges != g.EdgeCount() {
		t.Errorf("stats mismatch: %+v", stats)
	}
}

func TestBuildSkipsShortChunks(t *testing.T) {
	client := &fakeClient{extractJSON: extractionFixture}
	b := newTestBuilder(client, t)
	g := NewGraph()

	stats, err := b.Build(context.Background(), g, []Document{
		{ID: "note-1", Ticker: "AAPL", Text: "Too short to extract."},
	})
	if err != nil {
		t.Fatal(err)
	}
	if stats.SkippedChunks != 1 || stats.Chunks != 0 {
		t.Errorf("expected the short chunk to be skipped: %+v", stats)
	}
	if client.extractCalls != 0 {
		t.Errorf("expected no extraction calls, got %d", client.extractCalls)
	}
	if g.NodeCount() != 0 {
		t.Errorf("expected empty graph, got %d nodes", g.NodeCount())
	}
}

func TestBuildDegradesOnExtractionFailure(t *testing.T) {
	client := &fakeClient{extractErr: errors.New("model unavailable")}
	b := newTestBuilder(client, t)
	g := NewGraph()

	stats, err := b.Build(context.Background(), g, []Document{
		{ID: "10k-2024", Ticker: "AAPL", Text: longDocText()},
	})
	if err != nil {
		t.Fatalf("extraction failure must not fail the build: %v", err)
	}
	if stats.FailedChunks == 0 {
		t.Error("expected failed chunks to be counted")
	}
	if g.NodeCount() != 0 {
		t.Errorf("expected empty graph after failed extraction, got %d nodes", g.NodeCount())
	}
	// Each chunk is retried before being dropped.
	if client.extractCalls < 2 {
		t.Errorf("expected retries, got %d calls", client.extractCalls)
	}
}

func TestBuildIsIdempotentAcrossRuns(t *testing.T) {
	client := &fakeClient{extractJSON: extractionFixture}
	b := newTestBuilder(client, t)
	g := NewGraph()
	docs := []Document{{ID: "10k-2024", Ticker: "AAPL", Text: longDocText()}}

	if _, err := b.Build(context.Background(), g, docs); err != nil {
		t.Fatal(err)
	}
	nodes, edges := g.NodeCount(), g.EdgeCount()

	if _, err := b.Build(context.Background(), g, docs); err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != nodes || g.EdgeCount() != edges {
		t.Errorf("rebuild duplicated graph elements: %d/%d -> %d/%d",
			nodes, edges, g.NodeCount(), g.EdgeCount())
	}
}
