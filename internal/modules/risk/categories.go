package risk

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/veritaslabs/veritas/internal/domain"
	"github.com/veritaslabs/veritas/internal/modules/anomalies"
	"github.com/veritaslabs/veritas/internal/modules/compliance"
	"github.com/veritaslabs/veritas/internal/modules/forensic"
	"github.com/veritaslabs/veritas/internal/modules/ratios"
	"github.com/veritaslabs/veritas/internal/modules/scoring/scorers"
)

var errNoUsableData = errors.New("no usable data for category")

// accumulator collects signed point deltas with a factor string per applied
// rule. The final score is clamped to [0, 100].
type accumulator struct {
	score   float64
	factors []string
}

func (a *accumulator) add(points float64, factor string) {
	a.score += points
	a.factors = append(a.factors, factor)
}

func (a *accumulator) clamped() float64 {
	return math.Min(100, math.Max(0, a.score))
}

// latestRatios returns the most recent period's ratio map, or nil.
func latestRatios(result forensic.Result) map[string]float64 {
	if !result.Ratios.Success {
		return nil
	}
	latest, ok := result.Ratios.Data.Latest()
	if !ok {
		return nil
	}
	return latest.Ratios
}

// latestGrowth returns the most recent period's growth for a metric.
// The bool is false when growth is unavailable or undefined.
func latestGrowth(result forensic.Result, metric string) (float64, bool) {
	if !result.Horizontal.Success || len(result.Horizontal.Data.Periods) == 0 {
		return 0, false
	}
	last := result.Horizontal.Data.Periods[len(result.Horizontal.Data.Periods)-1]
	g, ok := last.Metrics[metric]
	if !ok || g == nil {
		return 0, false
	}
	return *g, true
}

func findingCount(result forensic.Result, findingType string) int {
	if !result.Anomalies.Success {
		return 0
	}
	n := 0
	for _, f := range result.Anomalies.Data.Findings {
		if f.Type == findingType {
			n++
		}
	}
	return n
}

// scoreFinancialStability rates solvency and earnings quality: net margin,
// leverage, the Altman classification and the Beneish manipulation flag.
func (s *Scorer) scoreFinancialStability(result forensic.Result) (CategoryScore, error) {
	r := latestRatios(result)
	if r == nil && !result.Altman.Success {
		return CategoryScore{}, errNoUsableData
	}

	var acc accumulator
	inputs, available := 0, 0

	inputs++
	if margin, ok := r[ratios.NetMargin]; ok {
		available++
		switch {
		case margin < 0:
			acc.add(30, fmt.Sprintf("negative net margin (%.1f%%)", margin))
		case margin < 5:
			acc.add(15, fmt.Sprintf("thin net margin (%.1f%%)", margin))
		case margin > 15:
			acc.add(-10, fmt.Sprintf("strong net margin (%.1f%%)", margin))
		}
	}

	inputs++
	if de, ok := r[ratios.DebtToEquity]; ok {
		available++
		switch {
		case de > 2:
			acc.add(25, fmt.Sprintf("high leverage: debt/equity %.2f", de))
		case de > 1:
			acc.add(10, fmt.Sprintf("elevated leverage: debt/equity %.2f", de))
		case de < 0.5:
			acc.add(-5, fmt.Sprintf("conservative leverage: debt/equity %.2f", de))
		}
	}

	// ROE proxy: net margin x asset turnover against equity share
	inputs++
	if margin, okM := r[ratios.NetMargin]; okM {
		if turnover, okT := r[ratios.AssetTurnover]; okT {
			available++
			roa := margin * turnover
			if roa < 2 {
				acc.add(10, fmt.Sprintf("weak return on assets proxy (%.1f)", roa))
			}
		}
	}

	inputs++
	if result.Altman.Success {
		available++
		switch result.Altman.Data.Classification {
		case scorers.AltmanDistress:
			acc.add(30, fmt.Sprintf("Altman Z in distress zone (%.2f)", result.Altman.Data.ZScore))
		case scorers.AltmanGreyZone:
			acc.add(15, fmt.Sprintf("Altman Z in grey zone (%.2f)", result.Altman.Data.ZScore))
		}
	}

	inputs++
	if result.Beneish.Success {
		available++
		if result.Beneish.Data.IsLikelyManipulator {
			acc.add(20, fmt.Sprintf("Beneish M flags likely manipulation (%.2f)", result.Beneish.Data.MScore))
		}
	}

	if available == 0 {
		return CategoryScore{}, errNoUsableData
	}

	return CategoryScore{
		Category:        FinancialStability,
		Score:           acc.clamped(),
		Weight:          Weights[FinancialStability],
		Confidence:      float64(available) / float64(inputs),
		Factors:         acc.factors,
		Recommendations: stabilityRecommendations(acc.clamped()),
	}, nil
}

// scoreMarketRisk rates exposure to market conditions: company size, asset
// productivity and the optional external news-sentiment probe.
func (s *Scorer) scoreMarketRisk(ctx context.Context, companyName string, result forensic.Result) (CategoryScore, error) {
	r := latestRatios(result)
	if r == nil && !result.Altman.Success {
		return CategoryScore{}, errNoUsableData
	}

	var acc accumulator
	inputs, available := 0, 0

	// Size proxy: revenue-to-assets base from the Altman components when
	// available, falling back to asset turnover
	inputs++
	if turnover, ok := r[ratios.AssetTurnover]; ok {
		available++
		if turnover < 0.5 {
			acc.add(10, fmt.Sprintf("low asset productivity (turnover %.2f)", turnover))
		}
	}

	inputs++
	if om, ok := r[ratios.OperatingMargin]; ok {
		available++
		if om < 0 {
			acc.add(15, fmt.Sprintf("operating losses (%.1f%% margin)", om))
		}
	}

	inputs++
	if de, ok := r[ratios.DebtToAssets]; ok {
		available++
		if de > 0.7 {
			acc.add(15, fmt.Sprintf("balance sheet %.0f%% debt-funded", de*100))
		}
	}

	// Optional probe: bounded timeout, any error degrades to zero
	if s.probe != nil {
		delta, factors := s.probeSentiment(ctx, companyName)
		acc.score += delta
		acc.factors = append(acc.factors, factors...)
	}

	if available == 0 {
		return CategoryScore{}, errNoUsableData
	}

	return CategoryScore{
		Category:        MarketRisk,
		Score:           acc.clamped(),
		Weight:          Weights[MarketRisk],
		Confidence:      float64(available) / float64(inputs),
		Factors:         acc.factors,
		Recommendations: marketRecommendations(acc.clamped()),
	}, nil
}

// scoreOperationalRisk rates operating discipline: margin-relationship
// sanity, turnover efficiency and earnings-quality findings.
func (s *Scorer) scoreOperationalRisk(result forensic.Result) (CategoryScore, error) {
	r := latestRatios(result)
	if r == nil && !result.Anomalies.Success {
		return CategoryScore{}, errNoUsableData
	}

	var acc accumulator
	inputs, available := 0, 0

	// Margin ordering: gross >= operating >= net must hold on a sane
	// income statement
	inputs++
	gm, okG := r[ratios.GrossMargin]
	om, okO := r[ratios.OperatingMargin]
	nm, okN := r[ratios.NetMargin]
	if okG && okO {
		available++
		if om > gm {
			acc.add(25, fmt.Sprintf("operating margin (%.1f%%) exceeds gross margin (%.1f%%)", om, gm))
		}
	}
	if okO && okN && nm > om {
		acc.add(15, fmt.Sprintf("net margin (%.1f%%) exceeds operating margin (%.1f%%)", nm, om))
	}

	inputs++
	if turnover, ok := r[ratios.AssetTurnover]; ok {
		available++
		switch {
		case turnover < 0.3:
			acc.add(20, fmt.Sprintf("assets turning over %.2fx per year", turnover))
		case turnover < 0.7:
			acc.add(10, fmt.Sprintf("sluggish asset turnover (%.2fx)", turnover))
		case turnover > 1.5:
			acc.add(-10, fmt.Sprintf("efficient asset base (%.2fx turnover)", turnover))
		}
	}

	inputs++
	if result.Anomalies.Success {
		available++
		if n := findingCount(result, anomalies.ProfitCashDivergence); n > 0 {
			acc.add(15, fmt.Sprintf("%d period(s) of profit without cash backing", n))
		}
		if n := findingCount(result, anomalies.ReceivablesBuildup); n > 0 {
			acc.add(10, fmt.Sprintf("%d period(s) of receivables buildup", n))
		}
	}

	if available == 0 {
		return CategoryScore{}, errNoUsableData
	}

	return CategoryScore{
		Category:        OperationalRisk,
		Score:           acc.clamped(),
		Weight:          Weights[OperationalRisk],
		Confidence:      float64(available) / float64(inputs),
		Factors:         acc.factors,
		Recommendations: operationalRecommendations(acc.clamped()),
	}, nil
}

// scoreComplianceRisk is derived, not rule-based: the inverse of the
// compliance assessment's overall score.
func (s *Scorer) scoreComplianceRisk(assessment compliance.Assessment) CategoryScore {
	score := math.Min(100, math.Max(0, 100-assessment.OverallScore))

	factors := []string{
		fmt.Sprintf("compliance score %.1f (%s)", assessment.OverallScore, assessment.Status),
	}
	if n := len(assessment.Violations); n > 0 {
		factors = append(factors, fmt.Sprintf("%d open compliance violation(s)", n))
	}

	return CategoryScore{
		Category:        ComplianceRisk,
		Score:           score,
		Weight:          Weights[ComplianceRisk],
		Confidence:      0.9,
		Factors:         factors,
		Recommendations: complianceRecommendations(score),
	}
}

// scoreGrowthSustainability rates the durability of the growth trajectory.
func (s *Scorer) scoreGrowthSustainability(result forensic.Result) (CategoryScore, error) {
	revGrowth, hasGrowth := latestGrowth(result, domain.FieldTotalRevenue)
	if !hasGrowth {
		return CategoryScore{}, errNoUsableData
	}
	declines := findingCount(result, anomalies.RevenueDecline)

	var acc accumulator

	switch {
	case revGrowth < -20:
		acc.add(35, fmt.Sprintf("revenue contracting sharply (%.1f%%)", revGrowth))
	case revGrowth < 0:
		acc.add(20, fmt.Sprintf("revenue declining (%.1f%%)", revGrowth))
	case revGrowth > 40:
		acc.add(15, fmt.Sprintf("growth of %.1f%% may be running ahead of controls", revGrowth))
	case revGrowth <= 15:
		acc.add(-10, fmt.Sprintf("steady revenue growth (%.1f%%)", revGrowth))
	}

	if declines >= 2 {
		acc.add(25, fmt.Sprintf("revenue declined sharply in %d periods", declines))
	}

	if profitGrowth, ok := latestGrowth(result, domain.FieldNetProfit); ok {
		if profitGrowth < 0 && revGrowth > 0 {
			acc.add(10, fmt.Sprintf("profit shrinking (%.1f%%) while revenue grows", profitGrowth))
		}
	}

	return CategoryScore{
		Category:        GrowthSustainability,
		Score:           acc.clamped(),
		Weight:          Weights[GrowthSustainability],
		Confidence:      0.85,
		Factors:         acc.factors,
		Recommendations: growthRecommendations(acc.clamped()),
	}, nil
}

// scoreLiquidityRisk rates near-term payment capacity.
func (s *Scorer) scoreLiquidityRisk(result forensic.Result) (CategoryScore, error) {
	r := latestRatios(result)
	if r == nil {
		return CategoryScore{}, errNoUsableData
	}

	var acc accumulator
	inputs, available := 0, 0

	inputs++
	if cr, ok := r[ratios.CurrentRatio]; ok {
		available++
		switch {
		case cr < 0.75:
			acc.add(40, fmt.Sprintf("current ratio critically low (%.2f)", cr))
		case cr < 1:
			acc.add(25, fmt.Sprintf("current liabilities exceed current assets (ratio %.2f)", cr))
		case cr < 1.5:
			acc.add(10, fmt.Sprintf("modest liquidity cushion (ratio %.2f)", cr))
		case cr > 2.5:
			acc.add(-10, fmt.Sprintf("ample liquidity (ratio %.2f)", cr))
		}
	}

	inputs++
	if cash, ok := r[ratios.CashRatio]; ok {
		available++
		switch {
		case cash < 0.05:
			acc.add(20, fmt.Sprintf("cash covers only %.0f%% of current liabilities", cash*100))
		case cash < 0.2:
			acc.add(10, fmt.Sprintf("thin cash buffer (ratio %.2f)", cash))
		}
	}

	inputs++
	if result.Anomalies.Success {
		available++
		if n := findingCount(result, anomalies.ProfitCashDivergence); n > 0 {
			acc.add(15, "reported profits are not converting to cash")
		}
	}

	if available == 0 {
		return CategoryScore{}, errNoUsableData
	}

	return CategoryScore{
		Category:        LiquidityRisk,
		Score:           acc.clamped(),
		Weight:          Weights[LiquidityRisk],
		Confidence:      float64(available) / float64(inputs),
		Factors:         acc.factors,
		Recommendations: liquidityRecommendations(acc.clamped()),
	}, nil
}

func stabilityRecommendations(score float64) []string {
	if score > 50 {
		return []string{"Commission an independent review of solvency and earnings quality"}
	}
	return nil
}

func marketRecommendations(score float64) []string {
	if score > 50 {
		return []string{"Stress-test revenue against adverse market scenarios"}
	}
	return nil
}

func operationalRecommendations(score float64) []string {
	if score > 50 {
		return []string{"Audit revenue recognition and receivables collection processes"}
	}
	return nil
}

func complianceRecommendations(score float64) []string {
	if score > 50 {
		return []string{"Prioritize closure of open compliance violations"}
	}
	return nil
}

func growthRecommendations(score float64) []string {
	if score > 50 {
		return []string{"Reassess growth assumptions underlying forecasts and covenants"}
	}
	return nil
}

func liquidityRecommendations(score float64) []string {
	if score > 50 {
		return []string{"Secure committed credit lines before the next obligation cycle"}
	}
	return nil
}
