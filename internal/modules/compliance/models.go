package compliance

import (
	"time"

	"github.com/veritaslabs/veritas/internal/domain"
)

// Framework identifies a regulatory rule set.
type Framework string

const (
	FrameworkIndAS        Framework = "IND_AS"
	FrameworkSEBI         Framework = "SEBI"
	FrameworkCompaniesAct Framework = "COMPANIES_ACT"
	FrameworkRBI          Framework = "RBI"
)

// Frameworks lists every framework in catalog order.
var Frameworks = []Framework{FrameworkIndAS, FrameworkSEBI, FrameworkCompaniesAct, FrameworkRBI}

// RuleKind selects the evaluation strategy for a rule.
type RuleKind string

const (
	KindRatio      RuleKind = "ratio"
	KindDisclosure RuleKind = "disclosure"
	KindThreshold  RuleKind = "threshold"
	KindTrend      RuleKind = "trend"
)

// Rule is one static catalog entry. Exactly the parameter group matching
// Kind is populated.
type Rule struct {
	Framework   Framework
	ID          string
	Kind        RuleKind
	Severity    domain.Severity
	Description string
	Remediation []string

	// ratio params
	Ratio string
	Min   *float64
	Max   *float64

	// disclosure params
	Fields []string

	// threshold params (applied to the Altman Z-Score)
	Threshold float64
}

// Compliance status values.
const (
	StatusCompliant    = "COMPLIANT"
	StatusPartial      = "PARTIAL_COMPLIANCE"
	StatusNonCompliant = "NON_COMPLIANT"
)

// Violation is one triggered rule.
type Violation struct {
	Framework   Framework          `json:"framework"`
	RuleID      string             `json:"rule_id"`
	Severity    domain.Severity    `json:"severity"`
	Description string             `json:"description"`
	Evidence    map[string]float64 `json:"evidence"`
	Remediation []string           `json:"remediation"`
}

// Assessment is the full compliance evaluation outcome.
type Assessment struct {
	OverallScore    float64               `json:"overall_score"`
	Status          string                `json:"status"`
	Violations      []Violation           `json:"violations"`
	FrameworkScores map[Framework]float64 `json:"framework_scores"`
	Recommendations []string              `json:"recommendations"`
	NextReview      time.Time             `json:"next_review"`
}

// penaltyPoints maps violation severity to framework-score deductions.
var penaltyPoints = map[domain.Severity]float64{
	domain.SeverityCritical: 25,
	domain.SeverityHigh:     15,
	domain.SeverityMedium:   10,
	domain.SeverityLow:      5,
	domain.SeverityInfo:     1,
}

// Review intervals by status.
const (
	reviewNonCompliant = 30 * 24 * time.Hour
	reviewPartial      = 90 * 24 * time.Hour
	reviewCompliant    = 180 * 24 * time.Hour
)

func bound(v float64) *float64 { return &v }
