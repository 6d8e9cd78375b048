package statements

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/veritaslabs/veritas/internal/domain"
)

func setupTestRepo(t *testing.T) *Repository {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db, zerolog.Nop())
	require.NoError(t, err)
	return repo
}

func TestSaveAndGetCompany(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.SaveCompany(Company{ID: "ACME", Name: "Acme Industries", Sector: "Manufacturing"})
	require.NoError(t, err)

	got, err := repo.GetCompany("ACME")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme Industries", got.Name)
	assert.Equal(t, "Manufacturing", got.Sector)

	missing, err := repo.GetCompany("NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveCompanyUpdatesExisting(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.SaveCompany(Company{ID: "ACME", Name: "Acme"}))
	require.NoError(t, repo.SaveCompany(Company{ID: "ACME", Name: "Acme Industries", Sector: "Manufacturing"}))

	companies, err := repo.ListCompanies()
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Acme Industries", companies[0].Name)
}

func TestSeriesForCompanyRoundTrip(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.SaveCompany(Company{ID: "ACME", Name: "Acme"}))

	fy23 := time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)
	fy24 := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	stmts := []domain.FinancialStatement{
		{
			PeriodEnd: fy24,
			Type:      domain.StatementIncome,
			Currency:  "INR",
			Units:     "millions",
			Fields: map[string]float64{
				domain.FieldTotalRevenue: 1200,
				domain.FieldNetProfit:    150,
			},
		},
		{
			PeriodEnd: fy23,
			Type:      domain.StatementIncome,
			Currency:  "INR",
			Units:     "millions",
			Fields:    map[string]float64{domain.FieldTotalRevenue: 1000},
		},
		{
			PeriodEnd: fy24,
			Type:      domain.StatementBalance,
			Currency:  "INR",
			Units:     "millions",
			Fields:    map[string]float64{domain.FieldTotalAssets: 5000},
		},
	}
	for _, s := range stmts {
		require.NoError(t, repo.SaveStatement("ACME", s))
	}

	series, err := repo.SeriesForCompany(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, series, 3)

	// Ascending by period end.
	assert.Equal(t, fy23, series[0].PeriodEnd)
	assert.Equal(t, domain.StatementIncome, series[0].Type)

	latest, ok := series.Latest(domain.StatementIncome)
	require.True(t, ok)
	assert.Equal(t, 1200.0, latest.Fields[domain.FieldTotalRevenue])
	assert.Equal(t, "millions", latest.Units)
}

func TestSaveStatementReplacesSamePeriod(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.SaveCompany(Company{ID: "ACME", Name: "Acme"}))

	fy24 := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	first := domain.FinancialStatement{
		PeriodEnd: fy24,
		Type:      domain.StatementIncome,
		Fields:    map[string]float64{domain.FieldTotalRevenue: 1000},
	}
	refiled := domain.FinancialStatement{
		PeriodEnd: fy24,
		Type:      domain.StatementIncome,
		Fields:    map[string]float64{domain.FieldTotalRevenue: 1100},
	}

	require.NoError(t, repo.SaveStatement("ACME", first))
	require.NoError(t, repo.SaveStatement("ACME", refiled))

	count, err := repo.CountStatements("ACME")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	series, err := repo.SeriesForCompany(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 1100.0, series[0].Fields[domain.FieldTotalRevenue])
}

func TestSeriesForUnknownCompanyIsEmpty(t *testing.T) {
	repo := setupTestRepo(t)

	series, err := repo.SeriesForCompany(context.Background(), "GHOST")
	require.NoError(t, err)
	assert.Empty(t, series)
}
