package analysis

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritaslabs/veritas/internal/domain"
)

func period(year int, month time.Month) time.Time {
	return time.Date(year, month, 30, 0, 0, 0, 0, time.UTC)
}

func incomeStatement(end time.Time, fields map[string]float64) domain.FinancialStatement {
	return domain.FinancialStatement{
		PeriodEnd: end,
		Type:      domain.StatementIncome,
		Currency:  "INR",
		Units:     "millions",
		Fields:    fields,
	}
}

func balanceStatement(end time.Time, fields map[string]float64) domain.FinancialStatement {
	return domain.FinancialStatement{
		PeriodEnd: end,
		Type:      domain.StatementBalance,
		Currency:  "INR",
		Units:     "millions",
		Fields:    fields,
	}
}

func TestVerticalIncomeStatement(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())

	stmt := incomeStatement(period(2024, time.March), map[string]float64{
		domain.FieldTotalRevenue:    1000,
		domain.FieldCostOfGoodsSold: 600,
		domain.FieldGrossProfit:     400,
		domain.FieldOperatingIncome: 200,
		domain.FieldNetProfit:       120,
	})

	result, err := a.Vertical(stmt)
	require.NoError(t, err)

	assert.Equal(t, domain.FieldTotalRevenue, result.Base)
	assert.InDelta(t, 60.0, result.Percentages[domain.FieldCostOfGoodsSold], 1e-9)
	assert.InDelta(t, 40.0, result.Percentages[domain.FieldGrossProfit], 1e-9)
	assert.InDelta(t, 12.0, result.Percentages[domain.FieldNetProfit], 1e-9)

	// EBITDA was not reported, so it must not appear at all
	_, ok := result.Percentages[domain.FieldEBITDA]
	assert.False(t, ok)
}

func TestVerticalBalanceSidesSumToHundred(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())

	// Balanced sheet: assets = liabilities + equity
	stmt := balanceStatement(period(2024, time.March), map[string]float64{
		domain.FieldTotalAssets:        5000,
		domain.FieldCurrentAssets:      2000,
		domain.FieldNonCurrentAssets:   3000,
		domain.FieldCurrentLiabilities: 1200,
		domain.FieldNonCurrentLiab:     1800,
		domain.FieldTotalEquity:        2000,
	})

	result, err := a.Vertical(stmt)
	require.NoError(t, err)

	assetSide := result.Percentages[domain.FieldCurrentAssets] +
		result.Percentages[domain.FieldNonCurrentAssets]
	financingSide := result.Percentages[domain.FieldCurrentLiabilities] +
		result.Percentages[domain.FieldNonCurrentLiab] +
		result.Percentages[domain.FieldTotalEquity]

	assert.InDelta(t, 100.0, assetSide, 0.1)
	assert.InDelta(t, 100.0, financingSide, 0.1)
}

func TestVerticalZeroBaseFails(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())

	tests := []struct {
		name string
		stmt domain.FinancialStatement
	}{
		{
			name: "zero revenue",
			stmt: incomeStatement(period(2024, time.March), map[string]float64{
				domain.FieldTotalRevenue: 0,
				domain.FieldNetProfit:    50,
			}),
		},
		{
			name: "absent revenue",
			stmt: incomeStatement(period(2024, time.March), map[string]float64{
				domain.FieldNetProfit: 50,
			}),
		},
		{
			name: "zero assets",
			stmt: balanceStatement(period(2024, time.March), map[string]float64{
				domain.FieldTotalAssets: 0,
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Vertical(tt.stmt)
			require.Error(t, err)
			assert.IsType(t, domain.ErrMissingBaseValue{}, err)
		})
	}
}

func TestHorizontalGrowth(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())

	series := domain.StatementSeries{
		incomeStatement(period(2023, time.December), map[string]float64{
			domain.FieldTotalRevenue: 1000,
			domain.FieldNetProfit:    100,
		}),
		incomeStatement(period(2024, time.March), map[string]float64{
			domain.FieldTotalRevenue: 1200,
			domain.FieldNetProfit:    90,
		}),
	}

	result, err := a.Horizontal(series)
	require.NoError(t, err)
	require.Len(t, result.Periods, 1)

	growth := result.Periods[0]
	require.NotNil(t, growth.Metrics[domain.FieldTotalRevenue])
	assert.InDelta(t, 20.0, *growth.Metrics[domain.FieldTotalRevenue], 1e-9)
	require.NotNil(t, growth.Metrics[domain.FieldNetProfit])
	assert.InDelta(t, -10.0, *growth.Metrics[domain.FieldNetProfit], 1e-9)
}

func TestHorizontalZeroPriorIsNil(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())

	series := domain.StatementSeries{
		incomeStatement(period(2023, time.December), map[string]float64{
			domain.FieldTotalRevenue: 0,
		}),
		incomeStatement(period(2024, time.March), map[string]float64{
			domain.FieldTotalRevenue: 500,
		}),
	}

	result, err := a.Horizontal(series)
	require.NoError(t, err)
	require.Len(t, result.Periods, 1)

	// Key present, value nil: growth undefined, not infinite
	val, ok := result.Periods[0].Metrics[domain.FieldTotalRevenue]
	require.True(t, ok)
	assert.Nil(t, val)
}

func TestHorizontalRequiresTwoPeriods(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())

	series := domain.StatementSeries{
		incomeStatement(period(2024, time.March), map[string]float64{
			domain.FieldTotalRevenue: 500,
		}),
	}

	_, err := a.Horizontal(series)
	require.Error(t, err)

	var insufficient domain.ErrInsufficientPeriods
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Got)
}

func TestHorizontalMergesStatementTypes(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())

	// Income and balance statements for the same two periods should produce
	// one growth row per period pair covering metrics from both.
	series := domain.StatementSeries{
		incomeStatement(period(2023, time.December), map[string]float64{domain.FieldTotalRevenue: 1000}),
		balanceStatement(period(2023, time.December), map[string]float64{domain.FieldTotalAssets: 4000}),
		incomeStatement(period(2024, time.March), map[string]float64{domain.FieldTotalRevenue: 1100}),
		balanceStatement(period(2024, time.March), map[string]float64{domain.FieldTotalAssets: 4400}),
	}

	result, err := a.Horizontal(series)
	require.NoError(t, err)
	require.Len(t, result.Periods, 1)

	metrics := result.Periods[0].Metrics
	require.NotNil(t, metrics[domain.FieldTotalRevenue])
	require.NotNil(t, metrics[domain.FieldTotalAssets])
	assert.InDelta(t, 10.0, *metrics[domain.FieldTotalRevenue], 1e-9)
	assert.InDelta(t, 10.0, *metrics[domain.FieldTotalAssets], 1e-9)
}
