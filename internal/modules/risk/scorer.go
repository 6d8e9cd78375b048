// Package risk computes the six-category weighted composite risk score with
// linear attribution over forensic and compliance results.
package risk

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/veritaslabs/veritas/internal/domain"
	"github.com/veritaslabs/veritas/internal/modules/compliance"
	"github.com/veritaslabs/veritas/internal/modules/forensic"
)

// fallbackScore is the fixed category value substituted when a category
// scorer cannot compute; its low confidence marks it as a placeholder.
const (
	fallbackScore      = 50.0
	fallbackConfidence = 0.3
)

// defaultProbeTimeout bounds the sentiment probe call.
const defaultProbeTimeout = 5 * time.Second

// maxSentimentDelta caps the probe's additive risk contribution.
const maxSentimentDelta = 20.0

// Scorer computes composite risk assessments. The probe is optional; a nil
// probe simply contributes no market-sentiment signal.
type Scorer struct {
	probe        domain.SentimentProbe
	probeTimeout time.Duration
	log          zerolog.Logger
}

// NewScorer creates a new risk scorer. A non-positive probeTimeout selects
// the default bound.
func NewScorer(probe domain.SentimentProbe, probeTimeout time.Duration, log zerolog.Logger) *Scorer {
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	return &Scorer{
		probe:        probe,
		probeTimeout: probeTimeout,
		log:          log.With().Str("component", "risk").Logger(),
	}
}

// Score produces the composite assessment. Category scorers never abort the
// composite: one that cannot compute is replaced by a fixed-value
// low-confidence fallback with the reason recorded as a factor.
func (s *Scorer) Score(
	ctx context.Context,
	companyID, companyName string,
	result forensic.Result,
	complianceAssessment compliance.Assessment,
) Assessment {
	var categoryScores []CategoryScore

	score := func(category Category, cs CategoryScore, err error) {
		if err != nil {
			s.log.Warn().Err(err).Str("category", string(category)).Msg("category scorer fell back")
			cs = s.fallback(category, err)
		}
		categoryScores = append(categoryScores, cs)
	}

	fs, err := s.scoreFinancialStability(result)
	score(FinancialStability, fs, err)

	mr, err := s.scoreMarketRisk(ctx, companyName, result)
	score(MarketRisk, mr, err)

	op, err := s.scoreOperationalRisk(result)
	score(OperationalRisk, op, err)

	score(ComplianceRisk, s.scoreComplianceRisk(complianceAssessment), nil)

	gs, err := s.scoreGrowthSustainability(result)
	score(GrowthSustainability, gs, err)

	lr, err := s.scoreLiquidityRisk(result)
	score(LiquidityRisk, lr, err)

	composite := compositeScore(categoryScores)
	level := riskLevel(composite)

	assessment := Assessment{
		CompanyID:           companyID,
		OverallScore:        round2(composite),
		RiskLevel:           level,
		CategoryScores:      categoryScores,
		Attribution:         attribution(categoryScores),
		Baseline:            AttributionBaseline,
		Recommendation:      recommendationFor(level),
		MonitoringFrequency: monitoringFrequency(composite),
		GeneratedAt:         time.Now().UTC(),
	}

	s.log.Info().
		Str("company_id", companyID).
		Float64("overall_score", assessment.OverallScore).
		Str("risk_level", level).
		Msg("composite risk assessment complete")

	return assessment
}

// fallback builds the substitute score for a failed category.
func (s *Scorer) fallback(category Category, err error) CategoryScore {
	return CategoryScore{
		Category:   category,
		Score:      fallbackScore,
		Weight:     Weights[category],
		Confidence: fallbackConfidence,
		Factors:    []string{fmt.Sprintf("fallback score: %v", err)},
	}
}

// probeSentiment calls the external probe with a bounded timeout. Every
// failure path degrades to a zero contribution; the assessment never blocks
// on or fails because of the probe.
func (s *Scorer) probeSentiment(ctx context.Context, companyName string) (float64, []string) {
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	res, err := s.probe.Search(probeCtx, companyName)
	if err != nil {
		s.log.Debug().Err(err).Str("company", companyName).Msg("sentiment probe unavailable")
		return 0, nil
	}

	delta := math.Min(maxSentimentDelta, math.Max(0, res.RiskDelta))
	return delta, res.Factors
}

// compositeScore is the weight-averaged category score. Weights sum to 1.0
// and every category is present (real or fallback), so the division is by
// exactly 1; it stays explicit to keep the formula honest.
func compositeScore(scores []CategoryScore) float64 {
	weighted, totalWeight := 0.0, 0.0
	for _, cs := range scores {
		weighted += cs.Score * cs.Weight
		totalWeight += cs.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return math.Min(100, math.Max(0, weighted/totalWeight))
}

// attribution computes each category's contribution as its weighted signed
// deviation from the neutral baseline. This is a deliberate linear
// approximation: contributions plus the baseline reconstruct the composite
// exactly, which a sampled Shapley estimate would not.
func attribution(scores []CategoryScore) map[Category]float64 {
	out := make(map[Category]float64, len(scores))
	for _, cs := range scores {
		out[cs.Category] = round4((cs.Score - AttributionBaseline) * cs.Weight)
	}
	return out
}

func riskLevel(score float64) string {
	switch {
	case score < 25:
		return RiskLow
	case score < 50:
		return RiskMedium
	case score < 75:
		return RiskHigh
	default:
		return RiskCritical
	}
}

func monitoringFrequency(score float64) string {
	switch {
	case score > 70:
		return MonitorDaily
	case score > 50:
		return MonitorWeekly
	case score > 30:
		return MonitorMonthly
	default:
		return MonitorQuarterly
	}
}

// recommendationFor is the fixed four-tier recommendation text keyed to the
// risk-level thresholds.
func recommendationFor(level string) string {
	switch level {
	case RiskLow:
		return "Risk profile is acceptable; maintain routine quarterly surveillance"
	case RiskMedium:
		return "Monitor the flagged categories and request management commentary on adverse movements"
	case RiskHigh:
		return "Escalate to enhanced monitoring and require remediation plans for high-scoring categories"
	default:
		return "Initiate an immediate forensic review; restrict exposure until critical findings are resolved"
	}
}

// round2 rounds to 2 decimal places
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// round4 rounds to 4 decimal places
func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
