// Package compliance evaluates a static multi-framework rule catalog
// against forensic analysis output and produces a scored assessment.
package compliance

import (
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/veritaslabs/veritas/internal/domain"
	"github.com/veritaslabs/veritas/internal/modules/analysis"
	"github.com/veritaslabs/veritas/internal/modules/forensic"
)

// CompliantScoreFloor is the overall score at or above which a company with
// no critical violations is considered compliant.
const CompliantScoreFloor = 80.0

// trendDeclinePct mirrors the anomaly detector's revenue-decline trigger.
const trendDeclinePct = -20.0

// Engine evaluates the rule catalog. The catalog is built once here and
// never mutated; one engine serves concurrent assessments.
type Engine struct {
	catalog []Rule
	log     zerolog.Logger
}

// NewEngine creates a compliance engine with the static rule catalog.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		catalog: buildCatalog(),
		log:     log.With().Str("component", "compliance").Logger(),
	}
}

// Catalog returns the rule catalog for inspection.
func (e *Engine) Catalog() []Rule {
	return e.catalog
}

// Validate evaluates every catalog rule against the forensic result. Rules
// whose inputs are unavailable (failed section, unrecognized reference) are
// skipped individually; a misconfigured rule never fails its framework.
func (e *Engine) Validate(result forensic.Result) Assessment {
	var violations []Violation

	for _, rule := range e.catalog {
		v, triggered := e.evaluate(rule, result)
		if triggered {
			violations = append(violations, v)
		}
	}

	scores := make(map[Framework]float64, len(Frameworks))
	for _, fw := range Frameworks {
		scores[fw] = 100.0
	}
	for _, v := range violations {
		scores[v.Framework] -= penaltyPoints[v.Severity]
	}
	for fw, s := range scores {
		if s < 0 {
			scores[fw] = 0
		}
	}

	frameworkScores := make([]float64, 0, len(Frameworks))
	for _, fw := range Frameworks {
		frameworkScores = append(frameworkScores, scores[fw])
	}
	overall := stat.Mean(frameworkScores, nil)

	status := StatusCompliant
	switch {
	case hasCritical(violations):
		status = StatusNonCompliant
	case overall >= CompliantScoreFloor:
		status = StatusCompliant
	default:
		status = StatusPartial
	}

	e.log.Info().
		Float64("overall_score", overall).
		Str("status", status).
		Int("violations", len(violations)).
		Msg("compliance assessment complete")

	return Assessment{
		OverallScore:    overall,
		Status:          status,
		Violations:      violations,
		FrameworkScores: scores,
		Recommendations: recommendations(violations),
		NextReview:      nextReview(status),
	}
}

// evaluate applies one rule. The bool return reports whether the rule
// triggered; skipped rules return false.
func (e *Engine) evaluate(rule Rule, result forensic.Result) (Violation, bool) {
	switch rule.Kind {
	case KindRatio:
		return e.evaluateRatio(rule, result)
	case KindDisclosure:
		return e.evaluateDisclosure(rule, result)
	case KindThreshold:
		return e.evaluateThreshold(rule, result)
	case KindTrend:
		return e.evaluateTrend(rule, result)
	default:
		e.log.Warn().Str("rule", rule.ID).Str("kind", string(rule.Kind)).Msg("unknown rule kind, skipping")
		return Violation{}, false
	}
}

func (e *Engine) evaluateRatio(rule Rule, result forensic.Result) (Violation, bool) {
	if !knownRatios[rule.Ratio] {
		e.log.Warn().Str("rule", rule.ID).Str("ratio", rule.Ratio).Msg("rule references unknown ratio, skipping")
		return Violation{}, false
	}
	if !result.Ratios.Success {
		return Violation{}, false
	}
	latest, ok := result.Ratios.Data.Latest()
	if !ok {
		return Violation{}, false
	}
	value, ok := latest.Ratios[rule.Ratio]
	if !ok {
		// Ratio omitted for this period (missing inputs): nothing to judge
		return Violation{}, false
	}

	evidence := map[string]float64{rule.Ratio: value}
	if rule.Min != nil {
		evidence["min"] = *rule.Min
	}
	if rule.Max != nil {
		evidence["max"] = *rule.Max
	}

	if (rule.Min != nil && value < *rule.Min) || (rule.Max != nil && value > *rule.Max) {
		return e.violation(rule, evidence), true
	}
	return Violation{}, false
}

func (e *Engine) evaluateDisclosure(rule Rule, result forensic.Result) (Violation, bool) {
	for _, f := range rule.Fields {
		if !knownFields[f] {
			e.log.Warn().Str("rule", rule.ID).Str("field", f).Msg("rule references unknown field, skipping")
			return Violation{}, false
		}
	}
	if !result.Vertical.Success {
		return Violation{}, false
	}

	disclosed := latestDisclosedItems(result.Vertical.Data)
	missing := 0
	for _, f := range rule.Fields {
		if !disclosed[f] {
			missing++
		}
	}
	if missing == 0 {
		return Violation{}, false
	}

	return e.violation(rule, map[string]float64{
		"required_fields": float64(len(rule.Fields)),
		"missing_fields":  float64(missing),
	}), true
}

func (e *Engine) evaluateThreshold(rule Rule, result forensic.Result) (Violation, bool) {
	if !result.Altman.Success {
		return Violation{}, false
	}
	z := result.Altman.Data.ZScore
	if z >= rule.Threshold {
		return Violation{}, false
	}
	return e.violation(rule, map[string]float64{
		"z_score":   z,
		"threshold": rule.Threshold,
	}), true
}

func (e *Engine) evaluateTrend(rule Rule, result forensic.Result) (Violation, bool) {
	if !result.Horizontal.Success {
		return Violation{}, false
	}

	worst := 0.0
	triggered := false
	for _, pg := range result.Horizontal.Data.Periods {
		g := pg.Metrics[domain.FieldTotalRevenue]
		if g == nil {
			continue
		}
		if *g < trendDeclinePct {
			triggered = true
			if *g < worst {
				worst = *g
			}
		}
	}
	if !triggered {
		return Violation{}, false
	}

	return e.violation(rule, map[string]float64{
		"worst_revenue_growth_pct": worst,
		"decline_threshold_pct":    trendDeclinePct,
	}), true
}

func (e *Engine) violation(rule Rule, evidence map[string]float64) Violation {
	return Violation{
		Framework:   rule.Framework,
		RuleID:      rule.ID,
		Severity:    rule.Severity,
		Description: rule.Description,
		Evidence:    evidence,
		Remediation: rule.Remediation,
	}
}

// latestDisclosedItems collects the line items present in the most recent
// vertical analysis of each base type (income and balance).
func latestDisclosedItems(verticals []analysis.VerticalAnalysis) map[string]bool {
	latestByBase := make(map[string]analysis.VerticalAnalysis)
	for _, va := range verticals {
		current, seen := latestByBase[va.Base]
		if !seen || va.Period.After(current.Period) {
			latestByBase[va.Base] = va
		}
	}

	disclosed := make(map[string]bool)
	for _, va := range latestByBase {
		disclosed[va.Base] = true
		for item := range va.Percentages {
			disclosed[item] = true
		}
	}
	return disclosed
}

func hasCritical(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == domain.SeverityCritical {
			return true
		}
	}
	return false
}

// frameworkRecommendations are the per-framework remediation templates.
var frameworkRecommendations = map[Framework]string{
	FrameworkIndAS:        "Review Ind AS presentation and disclosure gaps with the statutory auditor",
	FrameworkSEBI:         "Brief the compliance officer on SEBI disclosure obligations arising from these findings",
	FrameworkCompaniesAct: "Table the Companies Act findings at the next board meeting",
	FrameworkRBI:          "Share the RBI prudential findings with the lead banker",
}

// genericRecommendations are appended whenever any violation exists.
var genericRecommendations = []string{
	"Track remediation of each violation to closure before the next review date",
	"Re-run the compliance assessment after the next reporting period",
}

// recommendations builds the deduplicated recommendation list: one template
// per triggered framework in catalog order, then the generic boilerplate.
func recommendations(violations []Violation) []string {
	if len(violations) == 0 {
		return nil
	}

	triggered := make(map[Framework]bool)
	for _, v := range violations {
		triggered[v.Framework] = true
	}

	var out []string
	for _, fw := range Frameworks {
		if triggered[fw] {
			out = append(out, frameworkRecommendations[fw])
		}
	}
	out = append(out, genericRecommendations...)
	return out
}

func nextReview(status string) time.Time {
	now := time.Now().UTC()
	switch status {
	case StatusNonCompliant:
		return now.Add(reviewNonCompliant)
	case StatusPartial:
		return now.Add(reviewPartial)
	default:
		return now.Add(reviewCompliant)
	}
}
