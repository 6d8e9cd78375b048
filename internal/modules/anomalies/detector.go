// Package anomalies runs a fixed battery of rule checks over a statement
// series and reports findings with severity and supporting evidence.
package anomalies

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/veritaslabs/veritas/internal/domain"
)

// Rule identifiers.
const (
	RevenueDecline       = "REVENUE_DECLINE"
	ProfitCashDivergence = "PROFIT_CASH_DIVERGENCE"
	ReceivablesBuildup   = "RECEIVABLES_BUILDUP"
)

// Rule thresholds.
const (
	revenueDeclinePct       = -20.0 // consecutive-period revenue growth below this
	cashConversionFloor     = 0.5   // OCF below this fraction of net profit
	receivablesToRevenuePct = 25.0  // AR above this share of revenue
)

// Finding is one triggered anomaly rule for one period.
type Finding struct {
	Type        string             `json:"type"`
	Severity    domain.Severity    `json:"severity"`
	Period      time.Time          `json:"period"`
	Description string             `json:"description"`
	Evidence    map[string]float64 `json:"evidence"`
}

// Report is the union of all findings over a series.
type Report struct {
	Findings []Finding `json:"findings"`
	Total    int       `json:"total"`
}

// Detector runs the rule battery. Rules are independent and order-free;
// each scans the sorted series on its own.
type Detector struct {
	log zerolog.Logger
}

// NewDetector creates a new anomaly detector
func NewDetector(log zerolog.Logger) *Detector {
	return &Detector{log: log.With().Str("component", "anomalies").Logger()}
}

// Detect runs every rule and returns the combined findings.
func (d *Detector) Detect(series domain.StatementSeries) Report {
	var findings []Finding
	findings = append(findings, d.revenueDecline(series)...)
	findings = append(findings, d.profitCashDivergence(series)...)
	findings = append(findings, d.receivablesBuildup(series)...)

	d.log.Debug().Int("findings", len(findings)).Msg("anomaly detection complete")

	return Report{Findings: findings, Total: len(findings)}
}

// revenueDecline flags consecutive periods where revenue fell by more than
// 20%.
func (d *Detector) revenueDecline(series domain.StatementSeries) []Finding {
	var findings []Finding
	periods := series.Periods()

	for i := 1; i < len(periods); i++ {
		prev, prevOK := series.MergedPeriod(periods[i-1])[domain.FieldTotalRevenue]
		curr, currOK := series.MergedPeriod(periods[i])[domain.FieldTotalRevenue]
		if !prevOK || !currOK || prev == 0 {
			continue
		}

		growth := (curr - prev) / prev * 100
		if growth >= revenueDeclinePct {
			continue
		}

		findings = append(findings, Finding{
			Type:     RevenueDecline,
			Severity: domain.SeverityHigh,
			Period:   periods[i],
			Description: fmt.Sprintf("Revenue fell %.1f%% versus the prior period",
				math.Abs(growth)),
			Evidence: map[string]float64{
				"previous_revenue": prev,
				"current_revenue":  curr,
				"growth_pct":       growth,
			},
		})
	}

	return findings
}

// profitCashDivergence flags periods reporting positive net profit while
// operating cash flow covers less than half of it.
func (d *Detector) profitCashDivergence(series domain.StatementSeries) []Finding {
	var findings []Finding

	for _, periodEnd := range series.Periods() {
		fields := series.MergedPeriod(periodEnd)
		netProfit, hasNP := fields[domain.FieldNetProfit]
		ocf, hasOCF := fields[domain.FieldOperatingCashFlow]
		if !hasNP || !hasOCF || netProfit <= 0 {
			continue
		}
		if ocf >= cashConversionFloor*netProfit {
			continue
		}

		findings = append(findings, Finding{
			Type:     ProfitCashDivergence,
			Severity: domain.SeverityMedium,
			Period:   periodEnd,
			Description: "Reported profit is not backed by operating cash flow; " +
				"earnings quality is questionable",
			Evidence: map[string]float64{
				"net_profit":          netProfit,
				"operating_cash_flow": ocf,
				"cash_to_profit":      ocf / netProfit,
			},
		})
	}

	return findings
}

// receivablesBuildup flags periods where receivables exceed 25% of revenue.
func (d *Detector) receivablesBuildup(series domain.StatementSeries) []Finding {
	var findings []Finding

	for _, periodEnd := range series.Periods() {
		fields := series.MergedPeriod(periodEnd)
		ar, hasAR := fields[domain.FieldAccountsReceivable]
		revenue, hasRev := fields[domain.FieldTotalRevenue]
		if !hasAR || !hasRev || revenue == 0 {
			continue
		}

		pct := ar / revenue * 100
		if pct <= receivablesToRevenuePct {
			continue
		}

		findings = append(findings, Finding{
			Type:     ReceivablesBuildup,
			Severity: domain.SeverityMedium,
			Period:   periodEnd,
			Description: fmt.Sprintf("Receivables at %.1f%% of revenue suggest "+
				"aggressive revenue recognition or collection problems", pct),
			Evidence: map[string]float64{
				"accounts_receivable":    ar,
				"revenue":                revenue,
				"receivables_to_revenue": pct,
			},
		})
	}

	return findings
}
