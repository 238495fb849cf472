package textsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/finsight-ai/finsight/pkg/ai"
	"github.com/finsight-ai/finsight/pkg/logger"
)

// GenerationResult is the outcome of turning a question into SQL. Failures
// are values, not errors: the caller decides whether to surface them.
type GenerationResult struct {
	Question string `json:"question"`
	SQL      string `json:"sql,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// Generator converts natural language questions into SQL at temperature 0,
// grounding the model in the introspected schema.
type Generator struct {
	client ai.Client
	schema *SchemaRegistry
}

// NewGeneratorParams contains configuration options for creating a new
// Generator.
type NewGeneratorParams struct {
	Client ai.Client
	Schema *SchemaRegistry
}

// NewGenerator creates a Generator.
func NewGenerator(params NewGeneratorParams) *Generator {
	return &Generator{
		client: params.Client,
		schema: params.Schema,
	}
}

// Generate produces a SQL query for the question. Markdown fences are
// stripped from the model output; generation runs even when the schema
// description is unavailable.
func (g *Generator) Generate(ctx context.Context, question string) GenerationResult {
	systemPrompt := fmt.Sprintf(ai.SQLPrompt, g.schema.Describe(ctx), dialectName(g.schema.dialect))

	raw, err := g.client.Complete(
		ctx,
		question,
		ai.WithSystemPrompts(systemPrompt),
		ai.WithTemperature(0),
	)
	if err != nil {
		logger.Error("sql generation failed", "question", question, "error", err)
		return GenerationResult{
			Question: question,
			Success:  false,
			Error:    err.Error(),
		}
	}

	query := strings.TrimSpace(ai.StripCodeFence(raw))
	if query == "" {
		return GenerationResult{
			Question: question,
			Success:  false,
			Error:    "model returned an empty query",
		}
	}

	return GenerationResult{
		Question: question,
		SQL:      query,
		Success:  true,
	}
}

func dialectName(d Dialect) string {
	switch d {
	case DialectPostgres:
		return "PostgreSQL"
	case DialectSQLite:
		return "SQLite"
	default:
		return string(d)
	}
}
