package risk

import (
	"strings"
	"time"
)

// BuildReport flattens an assessment into a serialization-ready map: the
// composite headline, one block of keys per category, and the attribution
// waterfall. Consumers (API layer, report exporters) read it without
// knowing the engine's types.
func BuildReport(a Assessment) map[string]interface{} {
	report := map[string]interface{}{
		"company_id":           a.CompanyID,
		"overall_score":        a.OverallScore,
		"risk_level":           a.RiskLevel,
		"recommendation":       a.Recommendation,
		"monitoring_frequency": a.MonitoringFrequency,
		"attribution_baseline": a.Baseline,
		"generated_at":         a.GeneratedAt.Format(time.RFC3339),
	}

	for _, cs := range a.CategoryScores {
		prefix := strings.ToLower(string(cs.Category))
		report[prefix+"_score"] = cs.Score
		report[prefix+"_weight"] = cs.Weight
		report[prefix+"_confidence"] = cs.Confidence
		report[prefix+"_factors"] = strings.Join(cs.Factors, "; ")
		if contribution, ok := a.Attribution[cs.Category]; ok {
			report[prefix+"_contribution"] = contribution
		}
	}

	return report
}
