package textsql

import (
	"context"
	"database/sql"

	"github.com/finsight-ai/finsight/pkg/ai"
)

// Answer is the end-to-end envelope of one natural language query: the
// question, the generated SQL, and either results or a structured error.
type Answer struct {
	Question string           `json:"question"`
	SQL      string           `json:"sql,omitempty"`
	Success  bool             `json:"success"`
	Columns  []string         `json:"columns,omitempty"`
	Rows     []map[string]any `json:"rows,omitempty"`
	RowCount int              `json:"row_count"`
	Error    string           `json:"error,omitempty"`
}

// Engine is the complete NL-to-SQL pipeline: schema description, SQL
// generation, and execution.
type Engine struct {
	db        *sql.DB
	dialect   Dialect
	schema    *SchemaRegistry
	generator *Generator
	executor  *Executor
}

// NewEngineParams contains configuration options for creating a new Engine.
type NewEngineParams struct {
	Client  ai.Client
	DB      *sql.DB
	Dialect Dialect
	// MaxRows caps result-set capture per query.
	MaxRows int
}

// NewEngine wires the pipeline over one database handle.
func NewEngine(params NewEngineParams) *Engine {
	schema := NewSchemaRegistry(params.DB, params.Dialect)
	return &Engine{
		db:        params.DB,
		dialect:   params.Dialect,
		schema:    schema,
		generator: NewGenerator(NewGeneratorParams{Client: params.Client, Schema: schema}),
		executor:  NewExecutor(NewExecutorParams{DB: params.DB, MaxRows: params.MaxRows}),
	}
}

// Schema returns the engine's schema registry.
func (e *Engine) Schema() *SchemaRegistry {
	return e.schema
}

// Generate exposes bare SQL generation without execution.
func (e *Engine) Generate(ctx context.Context, question string) GenerationResult {
	return e.generator.Generate(ctx, question)
}

// Answer runs the full pipeline. Generation failure short-circuits: nothing
// is executed and the envelope carries the generation error.
func (e *Engine) Answer(ctx context.Context, question string) Answer {
	gen := e.generator.Generate(ctx, question)
	if !gen.Success {
		return Answer{
			Question: question,
			Success:  false,
			Error:    gen.Error,
		}
	}

	exec := e.executor.Execute(ctx, gen.SQL)
	return Answer{
		Question: question,
		SQL:      gen.SQL,
		Success:  exec.Success,
		Columns:  exec.Columns,
		Rows:     exec.Rows,
		RowCount: exec.RowCount,
		Error:    exec.Error,
	}
}
