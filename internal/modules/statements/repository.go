// Package statements persists companies and their normalized financial
// statements, and serves statement series to the analysis engine.
package statements

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/veritaslabs/veritas/internal/domain"
)

const timeLayout = "2006-01-02"

// Repository handles company and statement persistence. It implements
// domain.StatementProvider for the analysis engine.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a statement repository and ensures its schema exists.
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:  db,
		log: log.With().Str("repo", "statements").Logger(),
	}
	if err := r.createSchema(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS companies (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			sector     TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS statements (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			company_id     TEXT NOT NULL REFERENCES companies(id),
			period_end     TEXT NOT NULL,
			statement_type TEXT NOT NULL,
			currency       TEXT NOT NULL DEFAULT '',
			units          TEXT NOT NULL DEFAULT '',
			fields_json    TEXT NOT NULL,
			created_at     TEXT NOT NULL,
			UNIQUE(company_id, period_end, statement_type)
		);
		CREATE INDEX IF NOT EXISTS idx_statements_company
			ON statements(company_id, period_end);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create statements schema: %w", err)
	}
	return nil
}

// SaveCompany inserts a company, or updates its name and sector if it exists.
func (r *Repository) SaveCompany(c Company) error {
	query := `
		INSERT INTO companies (id, name, sector, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, sector = excluded.sector
	`
	createdAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := r.db.Exec(query, c.ID, c.Name, c.Sector, createdAt); err != nil {
		return fmt.Errorf("failed to save company %s: %w", c.ID, err)
	}
	return nil
}

// GetCompany retrieves a company by ID. Returns nil when not found.
func (r *Repository) GetCompany(id string) (*Company, error) {
	query := `SELECT id, name, sector, created_at FROM companies WHERE id = ?`

	var c Company
	var createdAt string
	err := r.db.QueryRow(query, id).Scan(&c.ID, &c.Name, &c.Sector, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company %s: %w", id, err)
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

// ListCompanies returns all registered companies ordered by name.
func (r *Repository) ListCompanies() ([]Company, error) {
	rows, err := r.db.Query(`SELECT id, name, sector, created_at FROM companies ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.Sector, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating companies: %w", err)
	}
	return companies, nil
}

// SaveStatement upserts one normalized statement for a company. A re-filed
// statement for the same period and type replaces the earlier one.
func (r *Repository) SaveStatement(companyID string, stmt domain.FinancialStatement) error {
	fieldsJSON, err := json.Marshal(stmt.Fields)
	if err != nil {
		return fmt.Errorf("failed to serialize statement fields: %w", err)
	}

	query := `
		INSERT INTO statements (company_id, period_end, statement_type, currency, units, fields_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(company_id, period_end, statement_type) DO UPDATE SET
			currency = excluded.currency,
			units = excluded.units,
			fields_json = excluded.fields_json
	`
	_, err = r.db.Exec(
		query,
		companyID,
		stmt.PeriodEnd.UTC().Format(timeLayout),
		string(stmt.Type),
		stmt.Currency,
		stmt.Units,
		string(fieldsJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save statement: %w", err)
	}
	return nil
}

// SeriesForCompany loads the full normalized statement series for a company,
// ordered by period end ascending.
func (r *Repository) SeriesForCompany(ctx context.Context, companyID string) (domain.StatementSeries, error) {
	query := `
		SELECT period_end, statement_type, currency, units, fields_json
		FROM statements
		WHERE company_id = ?
		ORDER BY period_end ASC, statement_type ASC
	`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query statements for %s: %w", companyID, err)
	}
	defer rows.Close()

	var series domain.StatementSeries
	for rows.Next() {
		var periodEnd, stmtType, currency, units, fieldsJSON string
		if err := rows.Scan(&periodEnd, &stmtType, &currency, &units, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}

		end, err := time.Parse(timeLayout, periodEnd)
		if err != nil {
			return nil, fmt.Errorf("invalid period_end %q: %w", periodEnd, err)
		}

		fields := make(map[string]float64)
		if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
			return nil, fmt.Errorf("failed to decode statement fields: %w", err)
		}

		series = append(series, domain.FinancialStatement{
			PeriodEnd: end,
			Type:      domain.StatementType(stmtType),
			Currency:  currency,
			Units:     units,
			Fields:    fields,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statements: %w", err)
	}

	return series, nil
}

// CountStatements returns the number of stored statements for a company.
func (r *Repository) CountStatements(companyID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM statements WHERE company_id = ?`, companyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count statements: %w", err)
	}
	return count, nil
}
