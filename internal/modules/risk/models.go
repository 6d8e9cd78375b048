package risk

import "time"

// Category identifies one of the six risk dimensions.
type Category string

const (
	FinancialStability   Category = "FINANCIAL_STABILITY"
	MarketRisk           Category = "MARKET_RISK"
	OperationalRisk      Category = "OPERATIONAL_RISK"
	ComplianceRisk       Category = "COMPLIANCE_RISK"
	GrowthSustainability Category = "GROWTH_SUSTAINABILITY"
	LiquidityRisk        Category = "LIQUIDITY_RISK"
)

// Categories lists every category in reporting order.
var Categories = []Category{
	FinancialStability,
	MarketRisk,
	OperationalRisk,
	ComplianceRisk,
	GrowthSustainability,
	LiquidityRisk,
}

// Weights is the fixed category weighting. The weights sum to 1.0; the
// composite is the weight-averaged category score.
var Weights = map[Category]float64{
	FinancialStability:   0.25,
	MarketRisk:           0.20,
	OperationalRisk:      0.15,
	ComplianceRisk:       0.15,
	GrowthSustainability: 0.15,
	LiquidityRisk:        0.10,
}

// AttributionBaseline is the neutral category score. Attribution reports
// each category's weighted deviation from it, so contributions reconstruct
// the composite as an additive waterfall over the baseline.
const AttributionBaseline = 50.0

// Risk levels and monitoring frequencies.
const (
	RiskLow      = "LOW"
	RiskMedium   = "MEDIUM"
	RiskHigh     = "HIGH"
	RiskCritical = "CRITICAL"

	MonitorDaily     = "DAILY"
	MonitorWeekly    = "WEEKLY"
	MonitorMonthly   = "MONTHLY"
	MonitorQuarterly = "QUARTERLY"
)

// CategoryScore is one category's outcome. Score runs 0 (no risk) to 100
// (maximum risk); Confidence reflects how much of the category's input data
// was actually available.
type CategoryScore struct {
	Category        Category `json:"category"`
	Score           float64  `json:"score"`
	Weight          float64  `json:"weight"`
	Confidence      float64  `json:"confidence"`
	Factors         []string `json:"factors"`
	Recommendations []string `json:"recommendations"`
}

// Assessment is the composite risk result for one company.
type Assessment struct {
	CompanyID           string               `json:"company_id"`
	OverallScore        float64              `json:"overall_score"`
	RiskLevel           string               `json:"risk_level"`
	CategoryScores      []CategoryScore      `json:"category_scores"`
	Attribution         map[Category]float64 `json:"attribution"`
	Baseline            float64              `json:"baseline"`
	Recommendation      string               `json:"recommendation"`
	MonitoringFrequency string               `json:"monitoring_frequency"`
	GeneratedAt         time.Time            `json:"generated_at"`
}
