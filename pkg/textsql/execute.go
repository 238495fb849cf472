package textsql

import (
	"context"
	"database/sql"

	"github.com/finsight-ai/finsight/pkg/logger"
)

// ExecutionResult captures a query run. Errors are structured values so a
// failed query never aborts the caller's pipeline.
type ExecutionResult struct {
	Success  bool             `json:"success"`
	Columns  []string         `json:"columns,omitempty"`
	Rows     []map[string]any `json:"rows,omitempty"`
	RowCount int              `json:"row_count"`
	Error    string           `json:"error,omitempty"`
}

// Executor runs generated SQL against the database. Queries run with the
// permissions of the connection; there is no statement sandboxing, so the
// database user's grants are the trust boundary.
type Executor struct {
	db      *sql.DB
	maxRows int
}

// NewExecutorParams contains configuration options for creating a new
// Executor.
type NewExecutorParams struct {
	DB *sql.DB
	// MaxRows caps the number of rows captured from a result set.
	MaxRows int
}

// NewExecutor creates an Executor.
func NewExecutor(params NewExecutorParams) *Executor {
	maxRows := params.MaxRows
	if maxRows <= 0 {
		maxRows = 1000
	}
	return &Executor{db: params.DB, maxRows: maxRows}
}

// Execute runs the query and captures columns and rows. Byte-slice values
// are converted to strings so results serialize cleanly.
func (e *Executor) Execute(ctx context.Context, query string) ExecutionResult {
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("query execution failed", "error", err)
		return ExecutionResult{Success: false, Error: err.Error()}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return ExecutionResult{Success: false, Error: err.Error()}
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		if len(results) >= e.maxRows {
			break
		}
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return ExecutionResult{Success: false, Error: err.Error()}
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return ExecutionResult{Success: false, Error: err.Error()}
	}

	return ExecutionResult{
		Success:  true,
		Columns:  columns,
		Rows:     results,
		RowCount: len(results),
	}
}
