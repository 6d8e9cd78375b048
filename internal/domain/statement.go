// Package domain provides the core domain models shared by the forensic
// analysis modules: normalized financial statements, severity levels, and
// the collaborator interfaces the engine consumes.
package domain

import (
	"sort"
	"time"
)

// StatementType identifies which financial statement a record represents.
type StatementType string

const (
	StatementIncome   StatementType = "INCOME"
	StatementBalance  StatementType = "BALANCE"
	StatementCashFlow StatementType = "CASH_FLOW"
)

// Canonical field names used across normalized statements. Ingestion maps
// source-specific labels onto these before the engine ever sees them.
const (
	FieldTotalRevenue       = "total_revenue"
	FieldCostOfGoodsSold    = "cost_of_goods_sold"
	FieldGrossProfit        = "gross_profit"
	FieldOperatingIncome    = "operating_income"
	FieldNetProfit          = "net_profit"
	FieldInterestExpense    = "interest_expense"
	FieldTaxExpense         = "tax_expense"
	FieldEBITDA             = "ebitda"
	FieldDepreciation       = "depreciation"
	FieldSGAExpense         = "sga_expense"
	FieldTotalAssets        = "total_assets"
	FieldCurrentAssets      = "current_assets"
	FieldNonCurrentAssets   = "non_current_assets"
	FieldFixedAssets        = "fixed_assets"
	FieldPPE                = "property_plant_equipment"
	FieldCurrentLiabilities = "current_liabilities"
	FieldNonCurrentLiab     = "non_current_liabilities"
	FieldTotalLiabilities   = "total_liabilities"
	FieldTotalEquity        = "total_equity"
	FieldRetainedEarnings   = "retained_earnings"
	FieldCash               = "cash"
	FieldAccountsReceivable = "accounts_receivable"
	FieldInventory          = "inventory"
	FieldOperatingCashFlow  = "operating_cash_flow"
	FieldTotalAccruals      = "total_accruals"
)

// FinancialStatement is one normalized statement for one period.
// Fields holds only the line items the source actually reported: a missing
// key means "not disclosed", which is distinct from a reported zero. The
// engine never mutates a statement.
type FinancialStatement struct {
	PeriodEnd time.Time          `json:"period_end"`
	Type      StatementType      `json:"statement_type"`
	Currency  string             `json:"currency"`
	Units     string             `json:"units"`
	Fields    map[string]float64 `json:"fields"`
}

// Field returns a line item value and whether it was reported.
func (s FinancialStatement) Field(name string) (float64, bool) {
	v, ok := s.Fields[name]
	return v, ok
}

// FieldOr returns a line item value, or fallback when it was not reported.
func (s FinancialStatement) FieldOr(name string, fallback float64) float64 {
	if v, ok := s.Fields[name]; ok {
		return v
	}
	return fallback
}

// StatementSeries is a chronologically ordered set of statements for one
// company. The engine trusts upstream normalization and never re-validates
// source correctness (e.g., the balance-sheet equation).
type StatementSeries []FinancialStatement

// Sorted returns a copy of the series ordered by period end ascending.
func (ss StatementSeries) Sorted() StatementSeries {
	out := make(StatementSeries, len(ss))
	copy(out, ss)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PeriodEnd.Before(out[j].PeriodEnd)
	})
	return out
}

// OfType returns the statements of the given type, ordered ascending.
func (ss StatementSeries) OfType(t StatementType) StatementSeries {
	var out StatementSeries
	for _, s := range ss.Sorted() {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

// Latest returns the most recent statement of the given type.
func (ss StatementSeries) Latest(t StatementType) (FinancialStatement, bool) {
	typed := ss.OfType(t)
	if len(typed) == 0 {
		return FinancialStatement{}, false
	}
	return typed[len(typed)-1], true
}

// Periods returns the distinct period-end dates in ascending order. Keys are
// normalized to Unix seconds so the same instant in different locations
// dedups to one period, matching MergedPeriod's Equal semantics.
func (ss StatementSeries) Periods() []time.Time {
	seen := make(map[int64]bool)
	var out []time.Time
	for _, s := range ss.Sorted() {
		if !seen[s.PeriodEnd.Unix()] {
			seen[s.PeriodEnd.Unix()] = true
			out = append(out, s.PeriodEnd)
		}
	}
	return out
}

// MergedPeriod flattens all statements sharing a period end into one field
// map. When the same field appears on more than one statement type for the
// period, the last one in chronological file order wins; normalized inputs
// do not overlap in practice.
func (ss StatementSeries) MergedPeriod(periodEnd time.Time) map[string]float64 {
	merged := make(map[string]float64)
	for _, s := range ss.Sorted() {
		if !s.PeriodEnd.Equal(periodEnd) {
			continue
		}
		for k, v := range s.Fields {
			merged[k] = v
		}
	}
	return merged
}

// Severity grades findings and violations.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
	SeverityInfo     Severity = "INFO"
)
