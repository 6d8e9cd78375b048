// Package scorers implements the classic forensic-accounting scoring models:
// the Altman Z-Score for bankruptcy risk and the Beneish M-Score for
// earnings-manipulation likelihood.
package scorers

import (
	"github.com/rs/zerolog"

	"github.com/veritaslabs/veritas/internal/domain"
)

// Altman classification bands.
const (
	AltmanSafe     = "SAFE"
	AltmanGreyZone = "GREY_ZONE"
	AltmanDistress = "DISTRESS"

	altmanSafeAbove     = 2.99
	altmanDistressBelow = 1.81

	// zeroDebtEquityRatio caps component D when a company carries no
	// liabilities. The ratio would be infinite; 10 keeps the model finite
	// while still rewarding the debt-free balance sheet.
	zeroDebtEquityRatio = 10.0
)

// AltmanResult is the outcome of one Z-Score computation.
type AltmanResult struct {
	ZScore         float64            `json:"z_score"`
	Classification string             `json:"classification"`
	RiskLevel      domain.Severity    `json:"risk_level"`
	Components     map[string]float64 `json:"components"`
}

// AltmanScorer computes the five-ratio Altman Z-Score from one balance
// sheet and one income statement of the same period.
type AltmanScorer struct {
	log zerolog.Logger
}

// NewAltmanScorer creates a new Altman Z-Score scorer
func NewAltmanScorer(log zerolog.Logger) *AltmanScorer {
	return &AltmanScorer{log: log.With().Str("component", "altman").Logger()}
}

// Score computes Z = 1.2A + 1.4B + 3.3C + 0.6D + 1.0E. Unreported line
// items other than total assets are treated as zero; zero total assets
// makes every component undefined and fails the computation.
func (s *AltmanScorer) Score(balance, income domain.FinancialStatement) (AltmanResult, error) {
	assets, ok := balance.Field(domain.FieldTotalAssets)
	if !ok || assets == 0 {
		return AltmanResult{}, domain.ErrZeroTotalAssets{}
	}

	currentAssets := balance.FieldOr(domain.FieldCurrentAssets, 0)
	currentLiabilities := balance.FieldOr(domain.FieldCurrentLiabilities, 0)
	retainedEarnings := balance.FieldOr(domain.FieldRetainedEarnings, 0)
	equity := balance.FieldOr(domain.FieldTotalEquity, 0)
	liabilities := balance.FieldOr(domain.FieldTotalLiabilities, 0)
	operatingIncome := income.FieldOr(domain.FieldOperatingIncome, 0)
	revenue := income.FieldOr(domain.FieldTotalRevenue, 0)

	a := (currentAssets - currentLiabilities) / assets
	b := retainedEarnings / assets
	c := operatingIncome / assets
	d := zeroDebtEquityRatio
	if liabilities != 0 {
		d = equity / liabilities
	}
	e := revenue / assets

	z := 1.2*a + 1.4*b + 3.3*c + 0.6*d + 1.0*e

	classification, riskLevel := classifyAltman(z)

	s.log.Debug().
		Float64("z_score", z).
		Str("classification", classification).
		Msg("Altman Z-Score computed")

	return AltmanResult{
		ZScore:         round3(z),
		Classification: classification,
		RiskLevel:      riskLevel,
		Components: map[string]float64{
			"working_capital_to_assets":   round3(a),
			"retained_earnings_to_assets": round3(b),
			"operating_income_to_assets":  round3(c),
			"equity_to_liabilities":       round3(d),
			"revenue_to_assets":           round3(e),
		},
	}, nil
}

func classifyAltman(z float64) (string, domain.Severity) {
	switch {
	case z > altmanSafeAbove:
		return AltmanSafe, domain.SeverityLow
	case z >= altmanDistressBelow:
		return AltmanGreyZone, domain.SeverityMedium
	default:
		return AltmanDistress, domain.SeverityHigh
	}
}
