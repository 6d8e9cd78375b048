// Package analysis implements common-size (vertical) and growth
// (horizontal) analysis over normalized financial statements.
package analysis

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/veritaslabs/veritas/internal/domain"
)

// GrowthMetrics is the fixed line-item list tracked by horizontal analysis.
var GrowthMetrics = []string{
	domain.FieldTotalRevenue,
	domain.FieldGrossProfit,
	domain.FieldOperatingIncome,
	domain.FieldNetProfit,
	domain.FieldEBITDA,
	domain.FieldTotalAssets,
	domain.FieldTotalLiabilities,
	domain.FieldTotalEquity,
	domain.FieldCurrentAssets,
	domain.FieldCurrentLiabilities,
	domain.FieldCash,
}

// incomeItems are the income-statement components expressed against revenue.
var incomeItems = []string{
	domain.FieldCostOfGoodsSold,
	domain.FieldGrossProfit,
	domain.FieldOperatingIncome,
	domain.FieldNetProfit,
	domain.FieldInterestExpense,
	domain.FieldTaxExpense,
	domain.FieldEBITDA,
}

// balanceItems are the balance-sheet components expressed against assets.
var balanceItems = []string{
	domain.FieldCurrentAssets,
	domain.FieldNonCurrentAssets,
	domain.FieldCurrentLiabilities,
	domain.FieldNonCurrentLiab,
	domain.FieldTotalLiabilities,
	domain.FieldTotalEquity,
	domain.FieldCash,
}

// Analyzer performs vertical and horizontal statement analysis. It is
// stateless; one instance can serve concurrent analyses.
type Analyzer struct {
	log zerolog.Logger
}

// NewAnalyzer creates a new statement analyzer
func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{log: log.With().Str("component", "analysis").Logger()}
}

// Vertical computes common-size percentages for one statement. Income
// statements are sized against total revenue, balance sheets against total
// assets. Cash-flow statements have no conventional base and return
// ErrMissingBaseValue.
func (a *Analyzer) Vertical(stmt domain.FinancialStatement) (VerticalAnalysis, error) {
	var base string
	var items []string

	switch stmt.Type {
	case domain.StatementIncome:
		base = domain.FieldTotalRevenue
		items = incomeItems
	case domain.StatementBalance:
		base = domain.FieldTotalAssets
		items = balanceItems
	default:
		return VerticalAnalysis{}, domain.ErrMissingBaseValue{Base: string(stmt.Type)}
	}

	baseValue, ok := stmt.Field(base)
	if !ok || baseValue == 0 {
		return VerticalAnalysis{}, domain.ErrMissingBaseValue{Base: base}
	}

	pct := make(map[string]float64, len(items))
	for _, item := range items {
		if v, ok := stmt.Field(item); ok {
			pct[item] = round2(v / baseValue * 100)
		}
	}

	return VerticalAnalysis{
		Period:      stmt.PeriodEnd,
		Base:        base,
		BaseValue:   baseValue,
		Percentages: pct,
	}, nil
}

// Horizontal computes period-over-period growth for the fixed metric list.
// Statements sharing a period end are merged first, so revenue growth and
// asset growth land on the same period row. Growth against a zero prior
// value is recorded as nil, never as an infinity or an error.
func (a *Analyzer) Horizontal(series domain.StatementSeries) (HorizontalAnalysis, error) {
	periods := series.Periods()
	if len(periods) < 2 {
		return HorizontalAnalysis{}, domain.ErrInsufficientPeriods{Needed: 2, Got: len(periods)}
	}

	out := HorizontalAnalysis{Periods: make([]PeriodGrowth, 0, len(periods)-1)}
	prev := series.MergedPeriod(periods[0])

	for _, periodEnd := range periods[1:] {
		curr := series.MergedPeriod(periodEnd)
		growth := PeriodGrowth{Period: periodEnd, Metrics: make(map[string]*float64)}

		for _, metric := range GrowthMetrics {
			currVal, currOK := curr[metric]
			prevVal, prevOK := prev[metric]
			if !currOK || !prevOK {
				continue
			}
			if prevVal == 0 {
				growth.Metrics[metric] = nil
				continue
			}
			g := round2((currVal - prevVal) / prevVal * 100)
			growth.Metrics[metric] = &g
		}

		out.Periods = append(out.Periods, growth)
		prev = curr
	}

	return out, nil
}

// round2 rounds to 2 decimal places
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
