package textsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/finsight-ai/finsight/pkg/logger"
)

// The standard financial tables. The DDL sticks to types both PostgreSQL and
// SQLite accept.
var financialTableDDL = []string{
	`CREATE TABLE IF NOT EXISTS financial_statements (
		id INTEGER PRIMARY KEY,
		ticker VARCHAR,
		company_name VARCHAR,
		filing_date DATE,
		period_end_date DATE,
		fiscal_year INTEGER,
		fiscal_quarter INTEGER,
		form_type VARCHAR,
		revenue DECIMAL(18, 2),
		cost_of_revenue DECIMAL(18, 2),
		gross_profit DECIMAL(18, 2),
		operating_expenses DECIMAL(18, 2),
		operating_income DECIMAL(18, 2),
		net_income DECIMAL(18, 2),
		eps DECIMAL(10, 4),
		total_assets DECIMAL(18, 2),
		total_liabilities DECIMAL(18, 2),
		shareholders_equity DECIMAL(18, 2),
		cash_and_equivalents DECIMAL(18, 2),
		total_debt DECIMAL(18, 2),
		operating_cash_flow DECIMAL(18, 2),
		investing_cash_flow DECIMAL(18, 2),
		financing_cash_flow DECIMAL(18, 2)
	)`,
	`CREATE TABLE IF NOT EXISTS companies (
		ticker VARCHAR PRIMARY KEY,
		company_name VARCHAR,
		cik VARCHAR,
		sic_code VARCHAR,
		industry VARCHAR,
		sector VARCHAR,
		market_cap DECIMAL(18, 2),
		employees INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS financial_ratios (
		id INTEGER PRIMARY KEY,
		ticker VARCHAR,
		period_end_date DATE,
		pe_ratio DECIMAL(10, 2),
		pb_ratio DECIMAL(10, 2),
		debt_to_equity DECIMAL(10, 2),
		current_ratio DECIMAL(10, 2),
		quick_ratio DECIMAL(10, 2),
		roe DECIMAL(10, 4),
		roa DECIMAL(10, 4),
		profit_margin DECIMAL(10, 4),
		operating_margin DECIMAL(10, 4),
		asset_turnover DECIMAL(10, 4)
	)`,
}

// CreateFinancialTables creates the standard financial tables and invalidates
// the cached schema description.
func (e *Engine) CreateFinancialTables(ctx context.Context) error {
	for _, ddl := range financialTableDDL {
		if _, err := e.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create financial tables: %w", err)
		}
	}
	logger.Info("created financial tables")
	e.schema.Invalidate()
	return nil
}

// StatementRow is one row for the financial_statements table.
type StatementRow struct {
	Ticker             string
	CompanyName        string
	PeriodEndDate      string
	FiscalYear         int
	FiscalQuarter      int
	FormType           string
	Revenue            float64
	CostOfRevenue      float64
	GrossProfit        float64
	OperatingIncome    float64
	NetIncome          float64
	EPS                float64
	TotalAssets        float64
	TotalLiabilities   float64
	ShareholdersEquity float64
	OperatingCashFlow  float64
}

// LoadStatements bulk-inserts rows into financial_statements inside a single
// transaction and invalidates the cached schema description. IDs continue
// from the current maximum.
func (e *Engine) LoadStatements(ctx context.Context, rows []StatementRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin bulk load: %w", err)
	}
	defer tx.Rollback()

	var nextID int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM financial_statements").Scan(&nextID); err != nil {
		return fmt.Errorf("failed to determine next statement id: %w", err)
	}

	cols := []string{
		"id", "ticker", "company_name", "period_end_date", "fiscal_year",
		"fiscal_quarter", "form_type", "revenue", "cost_of_revenue",
		"gross_profit", "operating_income", "net_income", "eps",
		"total_assets", "total_liabilities", "shareholders_equity",
		"operating_cash_flow",
	}
	query := fmt.Sprintf(
		"INSERT INTO financial_statements (%s) VALUES (%s)",
		strings.Join(cols, ", "),
		e.placeholders(len(cols)),
	)

	for i, row := range rows {
		_, err := tx.ExecContext(ctx, query,
			nextID+i, row.Ticker, row.CompanyName, row.PeriodEndDate,
			row.FiscalYear, row.FiscalQuarter, row.FormType, row.Revenue,
			row.CostOfRevenue, row.GrossProfit, row.OperatingIncome,
			row.NetIncome, row.EPS, row.TotalAssets, row.TotalLiabilities,
			row.ShareholdersEquity, row.OperatingCashFlow,
		)
		if err != nil {
			return fmt.Errorf("failed to insert statement for %s: %w", row.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bulk load: %w", err)
	}

	logger.Info("loaded financial statements", "rows", len(rows))
	e.schema.Invalidate()
	return nil
}

func (e *Engine) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if e.dialect == DialectPostgres {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// SampleQuestions returns questions suitable as starting points for the
// standard financial tables.
func SampleQuestions() []string {
	return []string{
		"What is the total revenue for Apple in 2023?",
		"Compare the net income of Microsoft and Google in the last 3 years",
		"Which companies have the highest profit margin?",
		"Show me the debt-to-equity ratio for all tech companies",
		"What is the average P/E ratio in the technology sector?",
		"Find companies with revenue growth greater than 20% year-over-year",
		"Calculate the operating cash flow trend for Tesla",
		"Which companies have the strongest balance sheets?",
	}
}
