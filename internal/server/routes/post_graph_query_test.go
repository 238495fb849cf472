package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/finsight-ai/finsight/internal/server/middleware"
	"github.com/finsight-ai/finsight/pkg/ai"
	"github.com/finsight-ai/finsight/pkg/kg"
)

// stubClient implements ai.Client with canned answers for handler tests.
type stubClient struct{}

func (stubClient) Complete(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "stub answer", nil
}

func (stubClient) CompleteWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return errors.New("not implemented")
}

func (stubClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (stubClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func graphQueryApp() *middleware.App {
	g := kg.NewGraph()
	g.AddEdge(kg.Edge{Source: "AAPL", Target: "QUALCOMM", Type: kg.RelSupplier})
	g.SetEmbedding("AAPL", []float32{1, 0, 0})
	return &middleware.App{
		Graph: g,
		Query: kg.NewQueryEngine(kg.NewQueryEngineParams{Client: stubClient{}, Graph: g}),
	}
}

func postGraphQuery(t *testing.T, app *middleware.App, body string) (*httptest.ResponseRecorder, kg.QueryResult) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/graph/query", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := PostGraphQueryHandler(&middleware.AppContext{Context: c, App: app}); err != nil {
		t.Fatal(err)
	}

	var res kg.QueryResult
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return rec, res
}

func TestPostGraphQueryExplicitDepthZero(t *testing.T) {
	rec, res := postGraphQuery(t, graphQueryApp(), `{"question": "Who supplies Apple?", "max_depth": 0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	// An explicit depth of 0 keeps only the seed entity in the context.
	if res.ContextNodes != 1 || res.ContextEdges != 0 {
		t.Errorf("expected seeds-only context, got %d nodes %d edges", res.ContextNodes, res.ContextEdges)
	}
}

func TestPostGraphQueryDefaultDepth(t *testing.T) {
	rec, res := postGraphQuery(t, graphQueryApp(), `{"question": "Who supplies Apple?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	// Omitting max_depth falls back to the engine default and expands past
	// the seed.
	if res.ContextNodes != 2 || res.ContextEdges != 1 {
		t.Errorf("expected expanded context, got %d nodes %d edges", res.ContextNodes, res.ContextEdges)
	}
}

func TestPostGraphQueryMissingQuestion(t *testing.T) {
	rec, _ := postGraphQuery(t, graphQueryApp(), `{"max_depth": 2}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}
