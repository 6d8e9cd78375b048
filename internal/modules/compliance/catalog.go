package compliance

import (
	"github.com/veritaslabs/veritas/internal/domain"
	"github.com/veritaslabs/veritas/internal/modules/ratios"
)

// buildCatalog returns the static rule catalog. It is constructed once at
// engine creation and read-only afterwards; no other process-wide state
// exists in the engine.
func buildCatalog() []Rule {
	return []Rule{
		// Ind AS: presentation and disclosure of primary statement lines
		{
			Framework:   FrameworkIndAS,
			ID:          "ind_as_income_presentation",
			Kind:        KindDisclosure,
			Severity:    domain.SeverityMedium,
			Description: "Income statement must present gross profit, operating income and net profit",
			Fields: []string{
				domain.FieldGrossProfit,
				domain.FieldOperatingIncome,
				domain.FieldNetProfit,
			},
			Remediation: []string{
				"Restate the income statement with the Ind AS 1 minimum line items",
			},
		},
		{
			Framework:   FrameworkIndAS,
			ID:          "ind_as_balance_presentation",
			Kind:        KindDisclosure,
			Severity:    domain.SeverityMedium,
			Description: "Balance sheet must present the current/non-current classification",
			Fields: []string{
				domain.FieldCurrentAssets,
				domain.FieldCurrentLiabilities,
				domain.FieldTotalEquity,
			},
			Remediation: []string{
				"Classify assets and liabilities into current and non-current per Ind AS 1",
			},
		},
		{
			Framework:   FrameworkIndAS,
			ID:          "ind_as_margin_consistency",
			Kind:        KindRatio,
			Severity:    domain.SeverityLow,
			Description: "Gross margin outside plausible bounds suggests misclassified cost of sales",
			Ratio:       ratios.GrossMargin,
			Min:         bound(-100),
			Max:         bound(100),
			Remediation: []string{
				"Reconcile cost of goods sold against revenue recognition policy",
			},
		},

		// SEBI: listing-oriented solvency and leverage expectations
		{
			Framework:   FrameworkSEBI,
			ID:          "sebi_leverage_ceiling",
			Kind:        KindRatio,
			Severity:    domain.SeverityMedium,
			Description: "Debt-to-equity above 2.0 breaches the leverage comfort band for listed issuers",
			Ratio:       ratios.DebtToEquity,
			Max:         bound(2.0),
			Remediation: []string{
				"Disclose a deleveraging plan to the audit committee",
				"Review covenant headroom with lenders",
			},
		},
		{
			Framework:   FrameworkSEBI,
			ID:          "sebi_solvency_watch",
			Kind:        KindThreshold,
			Severity:    domain.SeverityHigh,
			Description: "Altman Z-Score in the distress zone requires enhanced disclosure to investors",
			Threshold:   1.81,
			Remediation: []string{
				"Include a going-concern note in the next filing",
				"Notify the exchange of material financial deterioration",
			},
		},
		{
			Framework:   FrameworkSEBI,
			ID:          "sebi_revenue_trend",
			Kind:        KindTrend,
			Severity:    domain.SeverityMedium,
			Description: "A revenue decline of more than 20% in any period is a material event",
			Remediation: []string{
				"File a material-event disclosure explaining the revenue contraction",
			},
		},

		// Companies Act: solvency and liquidity duties of the board
		{
			Framework:   FrameworkCompaniesAct,
			ID:          "companies_act_liquidity",
			Kind:        KindRatio,
			Severity:    domain.SeverityHigh,
			Description: "Current ratio below 0.75 indicates inability to meet obligations as they fall due",
			Ratio:       ratios.CurrentRatio,
			Min:         bound(0.75),
			Remediation: []string{
				"Board must assess solvency before declaring dividends",
				"Prepare a working-capital remediation plan",
			},
		},
		{
			Framework:   FrameworkCompaniesAct,
			ID:          "companies_act_going_concern",
			Kind:        KindThreshold,
			Severity:    domain.SeverityCritical,
			Description: "Z-Score below 1.0 signals a going-concern doubt the board must address",
			Threshold:   1.0,
			Remediation: []string{
				"Obtain an independent solvency opinion",
				"Record the board's going-concern assessment in the minutes",
			},
		},
		{
			Framework:   FrameworkCompaniesAct,
			ID:          "companies_act_equity_disclosure",
			Kind:        KindDisclosure,
			Severity:    domain.SeverityLow,
			Description: "Statement of changes in equity requires the equity position to be presented",
			Fields:      []string{domain.FieldTotalEquity},
			Remediation: []string{
				"Present total equity and retained earnings in the annual return",
			},
		},

		// RBI: prudential liquidity expectations for regulated borrowers
		{
			Framework:   FrameworkRBI,
			ID:          "rbi_cash_buffer",
			Kind:        KindRatio,
			Severity:    domain.SeverityMedium,
			Description: "Cash ratio below 0.05 leaves no buffer against repayment obligations",
			Ratio:       ratios.CashRatio,
			Min:         bound(0.05),
			Remediation: []string{
				"Maintain a minimum liquid-asset buffer against short-term liabilities",
			},
		},
		{
			Framework:   FrameworkRBI,
			ID:          "rbi_debt_service_trend",
			Kind:        KindTrend,
			Severity:    domain.SeverityHigh,
			Description: "Sharp revenue contraction impairs debt-service capacity and must be reported to lenders",
			Remediation: []string{
				"Submit a revised cash-flow projection to the lead bank",
			},
		},
		{
			Framework:   FrameworkRBI,
			ID:          "rbi_leverage_prudence",
			Kind:        KindRatio,
			Severity:    domain.SeverityLow,
			Description: "Debt-to-assets above 0.85 exceeds the prudential leverage band",
			Ratio:       ratios.DebtToAssets,
			Max:         bound(0.85),
			Remediation: []string{
				"Report the leverage position in the quarterly lender pack",
			},
		},
	}
}

// knownRatios guards the catalog against misconfigured ratio references: a
// rule naming an unknown ratio is skipped, never treated as a violation.
var knownRatios = map[string]bool{
	ratios.CurrentRatio:           true,
	ratios.QuickRatio:             true,
	ratios.CashRatio:              true,
	ratios.GrossMargin:            true,
	ratios.OperatingMargin:        true,
	ratios.NetMargin:              true,
	ratios.EBITDAMargin:           true,
	ratios.DebtToEquity:           true,
	ratios.DebtToAssets:           true,
	ratios.AssetTurnover:          true,
	ratios.FixedAssetTurnover:     true,
	ratios.ReceivablesTurnover:    true,
	ratios.InventoryTurnover:      true,
	ratios.WorkingCapitalTurnover: true,
	ratios.DaysSalesOutstanding:   true,
	ratios.DaysInventoryOutstand:  true,
	ratios.CashConversionCycle:    true,
}

// knownFields guards disclosure rules the same way.
var knownFields = map[string]bool{
	domain.FieldTotalRevenue:       true,
	domain.FieldCostOfGoodsSold:    true,
	domain.FieldGrossProfit:        true,
	domain.FieldOperatingIncome:    true,
	domain.FieldNetProfit:          true,
	domain.FieldInterestExpense:    true,
	domain.FieldTaxExpense:         true,
	domain.FieldEBITDA:             true,
	domain.FieldCurrentAssets:      true,
	domain.FieldNonCurrentAssets:   true,
	domain.FieldCurrentLiabilities: true,
	domain.FieldNonCurrentLiab:     true,
	domain.FieldTotalLiabilities:   true,
	domain.FieldTotalEquity:        true,
	domain.FieldCash:               true,
}
