package compliance

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritaslabs/veritas/internal/domain"
	"github.com/veritaslabs/veritas/internal/modules/analysis"
	"github.com/veritaslabs/veritas/internal/modules/forensic"
	"github.com/veritaslabs/veritas/internal/modules/ratios"
	"github.com/veritaslabs/veritas/internal/modules/scoring/scorers"
)

func fy(year int) time.Time {
	return time.Date(year, time.March, 31, 0, 0, 0, 0, time.UTC)
}

func growthPct(v float64) *float64 { return &v }

// healthyResult is a forensic result that violates nothing.
func healthyResult() forensic.Result {
	return forensic.Result{
		Vertical: forensic.Section[[]analysis.VerticalAnalysis]{Success: true, Data: []analysis.VerticalAnalysis{
			{
				Period: fy(2024),
				Base:   domain.FieldTotalRevenue,
				Percentages: map[string]float64{
					domain.FieldGrossProfit:     38,
					domain.FieldOperatingIncome: 17,
					domain.FieldNetProfit:       11,
				},
			},
			{
				Period: fy(2024),
				Base:   domain.FieldTotalAssets,
				Percentages: map[string]float64{
					domain.FieldCurrentAssets:      40,
					domain.FieldCurrentLiabilities: 20,
					domain.FieldTotalEquity:        55,
				},
			},
		}},
		Horizontal: forensic.Section[analysis.HorizontalAnalysis]{Success: true, Data: analysis.HorizontalAnalysis{
			Periods: []analysis.PeriodGrowth{
				{Period: fy(2024), Metrics: map[string]*float64{domain.FieldTotalRevenue: growthPct(8.5)}},
			},
		}},
		Ratios: forensic.Section[ratios.RatioSet]{Success: true, Data: ratios.RatioSet{
			Periods: []ratios.PeriodRatios{
				{Period: fy(2024), Ratios: map[string]float64{
					ratios.CurrentRatio: 2.0,
					ratios.CashRatio:    0.4,
					ratios.GrossMargin:  38,
					ratios.DebtToEquity: 0.8,
					ratios.DebtToAssets: 0.45,
				}},
			},
		}},
		Altman: forensic.Section[scorers.AltmanResult]{Success: true, Data: scorers.AltmanResult{
			ZScore:         3.4,
			Classification: scorers.AltmanSafe,
			RiskLevel:      domain.SeverityLow,
		}},
	}
}

func TestHealthyCompanyIsCompliant(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	assessment := e.Validate(healthyResult())

	assert.Empty(t, assessment.Violations)
	assert.InDelta(t, 100.0, assessment.OverallScore, 1e-9)
	assert.Equal(t, StatusCompliant, assessment.Status)
	assert.Empty(t, assessment.Recommendations)

	for _, fw := range Frameworks {
		assert.InDelta(t, 100.0, assessment.FrameworkScores[fw], 1e-9, "framework %s", fw)
	}

	// Compliant companies come back for review in ~180 days
	assert.WithinDuration(t, time.Now().UTC().Add(180*24*time.Hour), assessment.NextReview, time.Minute)
}

func TestLiquidityCollapseDowngradesStatus(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	// Current ratio fell from 2.0 to 0.7 and solvency deteriorated with it
	result := healthyResult()
	result.Ratios.Data.Periods = append(result.Ratios.Data.Periods, ratios.PeriodRatios{
		Period: fy(2025),
		Ratios: map[string]float64{
			ratios.CurrentRatio: 0.7,
			ratios.CashRatio:    0.02,
			ratios.DebtToEquity: 2.6,
		},
	})
	result.Altman.Data.ZScore = 0.9
	result.Altman.Data.Classification = scorers.AltmanDistress

	assessment := e.Validate(result)

	var liquidity *Violation
	for i, v := range assessment.Violations {
		if v.RuleID == "companies_act_liquidity" {
			liquidity = &assessment.Violations[i]
		}
	}
	require.NotNil(t, liquidity, "companies_act_liquidity must trigger")
	assert.Equal(t, domain.SeverityHigh, liquidity.Severity)
	assert.InDelta(t, 0.7, liquidity.Evidence[ratios.CurrentRatio], 1e-9)
	assert.InDelta(t, 0.75, liquidity.Evidence["min"], 1e-9)

	assert.NotEqual(t, StatusCompliant, assessment.Status)
}

func TestCriticalViolationForcesNonCompliant(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	// Z-Score below 1.0 trips the going-concern rule (CRITICAL). Only two
	// frameworks lose points, so the overall score stays above the
	// compliant floor; status must still be NON_COMPLIANT.
	result := healthyResult()
	result.Altman.Data.ZScore = 0.5

	assessment := e.Validate(result)

	assert.GreaterOrEqual(t, assessment.OverallScore, CompliantScoreFloor)
	assert.Equal(t, StatusNonCompliant, assessment.Status)
	assert.True(t, hasCritical(assessment.Violations))

	// Non-compliant review interval is 30 days
	assert.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), assessment.NextReview, time.Minute)
}

func TestPenaltyArithmetic(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	// One MEDIUM disclosure gap: 10 points off one framework
	result := healthyResult()
	delete(result.Vertical.Data[0].Percentages, domain.FieldOperatingIncome)

	assessment := e.Validate(result)

	require.Len(t, assessment.Violations, 1)
	assert.Equal(t, "ind_as_income_presentation", assessment.Violations[0].RuleID)
	assert.InDelta(t, 90.0, assessment.FrameworkScores[FrameworkIndAS], 1e-9)
	assert.InDelta(t, 97.5, assessment.OverallScore, 1e-9)
	assert.Equal(t, StatusCompliant, assessment.Status)
}

func TestTrendRulesFireOnRevenueCollapse(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	result := healthyResult()
	result.Horizontal.Data.Periods = []analysis.PeriodGrowth{
		{Period: fy(2024), Metrics: map[string]*float64{domain.FieldTotalRevenue: growthPct(-35)}},
	}

	assessment := e.Validate(result)

	ids := make(map[string]bool)
	for _, v := range assessment.Violations {
		ids[v.RuleID] = true
	}
	assert.True(t, ids["sebi_revenue_trend"])
	assert.True(t, ids["rbi_debt_service_trend"])
}

func TestFailedSectionsSkipRules(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	// Every section failed: nothing can be evaluated, nothing violates
	result := forensic.Result{
		Vertical:   forensic.Section[[]analysis.VerticalAnalysis]{Error: "no data"},
		Horizontal: forensic.Section[analysis.HorizontalAnalysis]{Error: "no data"},
		Ratios:     forensic.Section[ratios.RatioSet]{Error: "no data"},
		Altman:     forensic.Section[scorers.AltmanResult]{Error: "no data"},
	}

	assessment := e.Validate(result)
	assert.Empty(t, assessment.Violations)
	assert.InDelta(t, 100.0, assessment.OverallScore, 1e-9)
}

func TestMisconfiguredRuleIsSkipped(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	e.catalog = append(e.catalog, Rule{
		Framework:   FrameworkRBI,
		ID:          "rbi_bogus_ratio",
		Kind:        KindRatio,
		Severity:    domain.SeverityCritical,
		Description: "references a ratio the calculator never emits",
		Ratio:       "no_such_ratio",
		Min:         bound(1),
	})

	assessment := e.Validate(healthyResult())

	// The misconfigured rule is silently skipped; framework is unaffected
	for _, v := range assessment.Violations {
		assert.NotEqual(t, "rbi_bogus_ratio", v.RuleID)
	}
	assert.InDelta(t, 100.0, assessment.FrameworkScores[FrameworkRBI], 1e-9)
}

func TestRecommendationsPerTriggeredFramework(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	result := healthyResult()
	result.Altman.Data.ZScore = 0.5 // SEBI + Companies Act trigger

	assessment := e.Validate(result)

	require.NotEmpty(t, assessment.Recommendations)
	assert.Contains(t, assessment.Recommendations, frameworkRecommendations[FrameworkSEBI])
	assert.Contains(t, assessment.Recommendations, frameworkRecommendations[FrameworkCompaniesAct])
	assert.NotContains(t, assessment.Recommendations, frameworkRecommendations[FrameworkIndAS])

	// Generic boilerplate rides along once violations exist
	for _, g := range genericRecommendations {
		assert.Contains(t, assessment.Recommendations, g)
	}

	// No duplicates
	seen := make(map[string]bool)
	for _, r := range assessment.Recommendations {
		assert.False(t, seen[r], "duplicate recommendation %q", r)
		seen[r] = true
	}
}

func TestCatalogInvariants(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	catalog := e.Catalog()
	require.NotEmpty(t, catalog)

	known := make(map[Framework]bool, len(Frameworks))
	for _, fw := range Frameworks {
		known[fw] = true
	}

	ids := make(map[string]bool)
	perFramework := make(map[Framework]int)
	for _, rule := range catalog {
		assert.False(t, ids[rule.ID], "duplicate rule id %q", rule.ID)
		ids[rule.ID] = true

		assert.True(t, known[rule.Framework], "rule %q references unknown framework %q", rule.ID, rule.Framework)
		perFramework[rule.Framework]++

		_, hasPenalty := penaltyPoints[rule.Severity]
		assert.True(t, hasPenalty, "rule %q severity %q has no penalty mapping", rule.ID, rule.Severity)

		switch rule.Kind {
		case KindRatio:
			assert.True(t, knownRatios[rule.Ratio], "rule %q references unknown ratio %q", rule.ID, rule.Ratio)
			assert.True(t, rule.Min != nil || rule.Max != nil, "rule %q has no bound", rule.ID)
		case KindDisclosure:
			assert.NotEmpty(t, rule.Fields, "rule %q lists no fields", rule.ID)
		case KindThreshold, KindTrend:
		default:
			t.Errorf("rule %q has unknown kind %q", rule.ID, rule.Kind)
		}
	}

	for _, fw := range Frameworks {
		assert.Greater(t, perFramework[fw], 0, "framework %q has no rules", fw)
	}
}
