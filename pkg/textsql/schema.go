package textsql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/finsight-ai/finsight/pkg/logger"
)

// SchemaNotAvailable is the schema description used when introspection fails
// or the database holds no tables. SQL generation still runs against it so a
// misconfigured database degrades to a model answer instead of a hard error.
const SchemaNotAvailable = "Schema information not available"

// Dialect selects the SQL flavor for introspection and generation.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Column is one introspected column.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table is one introspected table.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// SchemaRegistry introspects the database schema and renders it as prompt
// text. The rendering is cached until Invalidate is called; DDL helpers in
// this package invalidate automatically.
type SchemaRegistry struct {
	db      *sql.DB
	dialect Dialect

	mu     sync.Mutex
	cached string
	valid  bool
}

// NewSchemaRegistry creates a registry for the given database handle.
func NewSchemaRegistry(db *sql.DB, dialect Dialect) *SchemaRegistry {
	return &SchemaRegistry{db: db, dialect: dialect}
}

// Invalidate drops the cached schema text so the next Describe call
// re-introspects.
func (r *SchemaRegistry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.valid = false
	r.cached = ""
}

// Describe returns the schema rendered as prompt text: a header, then per
// table a "Table: <name>" line followed by indented "- <column>: <type>"
// lines. Returns the SchemaNotAvailable sentinel when introspection fails or
// no tables exist.
func (r *SchemaRegistry) Describe(ctx context.Context) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.valid {
		return r.cached
	}

	tables, err := r.introspect(ctx)
	if err != nil {
		// Not cached: a transient outage must not poison later generations.
		logger.Error("schema introspection failed", "error", err)
		return SchemaNotAvailable
	}
	if len(tables) == 0 {
		r.cached = SchemaNotAvailable
		r.valid = true
		return r.cached
	}

	var b strings.Builder
	b.WriteString("Database Schema:\n\n")
	for _, table := range tables {
		fmt.Fprintf(&b, "Table: %s\n", table.Name)
		for _, col := range table.Columns {
			fmt.Fprintf(&b, "  - %s: %s\n", col.Name, col.Type)
		}
		b.WriteString("\n")
	}

	r.cached = strings.TrimRight(b.String(), "\n")
	r.valid = true
	return r.cached
}

// Tables introspects the current schema without touching the cache.
func (r *SchemaRegistry) Tables(ctx context.Context) ([]Table, error) {
	return r.introspect(ctx)
}

func (r *SchemaRegistry) introspect(ctx context.Context) ([]Table, error) {
	switch r.dialect {
	case DialectSQLite:
		return r.introspectSQLite(ctx)
	case DialectPostgres:
		return r.introspectPostgres(ctx)
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", r.dialect)
	}
}

func (r *SchemaRegistry) introspectPostgres(ctx context.Context) ([]Table, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'public'
		ORDER BY table_name, ordinal_position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var tableName, columnName, dataType string
		if err := rows.Scan(&tableName, &columnName, &dataType); err != nil {
			return nil, err
		}
		if len(tables) == 0 || tables[len(tables)-1].Name != tableName {
			tables = append(tables, Table{Name: tableName})
		}
		last := &tables[len(tables)-1]
		last.Columns = append(last.Columns, Column{Name: columnName, Type: dataType})
	}
	return tables, rows.Err()
}

func (r *SchemaRegistry) introspectSQLite(ctx context.Context) ([]Table, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		names = append(names, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var tables []Table
	for _, name := range names {
		table := Table{Name: name}
		colRows, err := r.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", name))
		if err != nil {
			return nil, err
		}
		for colRows.Next() {
			var (
				cid        int
				colName    string
				colType    string
				notNull    int
				defaultVal sql.NullString
				pk         int
			)
			if err := colRows.Scan(&cid, &colName, &colType, &notNull, &defaultVal, &pk); err != nil {
				colRows.Close()
				return nil, err
			}
			if colType == "" {
				colType = "ANY"
			}
			table.Columns = append(table.Columns, Column{Name: colName, Type: colType})
		}
		colRows.Close()
		if err := colRows.Err(); err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}
