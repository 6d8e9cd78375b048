package scorers

import (
	"github.com/rs/zerolog"

	"github.com/veritaslabs/veritas/internal/domain"
)

// BeneishThreshold is the decision boundary: M above it suggests likely
// earnings manipulation.
const BeneishThreshold = -1.78

// BeneishResult is the outcome of one M-Score computation.
type BeneishResult struct {
	MScore              float64            `json:"m_score"`
	Threshold           float64            `json:"threshold"`
	IsLikelyManipulator bool               `json:"is_likely_manipulator"`
	RiskLevel           domain.Severity    `json:"risk_level"`
	Indices             map[string]float64 `json:"indices"`
}

// BeneishScorer computes the eight-index Beneish M-Score from two
// consecutive periods' merged field maps.
type BeneishScorer struct {
	log zerolog.Logger
}

// NewBeneishScorer creates a new Beneish M-Score scorer
func NewBeneishScorer(log zerolog.Logger) *BeneishScorer {
	return &BeneishScorer{log: log.With().Str("component", "beneish").Logger()}
}

// Score computes the M-Score. Any index whose inputs are unavailable or
// would divide by zero defaults to 1 ("no change") instead of failing the
// whole score. TATA alone falls back to 0 when assets are zero, since it is
// an accrual level, not a year-over-year index.
//
// AQI and LVGI are pinned to 1: the normalized field set carries no asset
// composition or leverage composition detail, so the model has nothing to
// measure for them. This is a known limitation, kept explicit.
func (s *BeneishScorer) Score(current, previous map[string]float64) BeneishResult {
	curRev := current[domain.FieldTotalRevenue]
	prevRev := previous[domain.FieldTotalRevenue]

	dsri := yearOverYearIndex(
		safeRatio(current[domain.FieldAccountsReceivable], curRev, 0),
		safeRatio(previous[domain.FieldAccountsReceivable], prevRev, 0),
	)

	curGM := safeRatio(current[domain.FieldGrossProfit], curRev, 0)
	prevGM := safeRatio(previous[domain.FieldGrossProfit], prevRev, 0)
	gmi := 1.0
	if curGM != 0 && prevGM != 0 {
		gmi = prevGM / curGM
	}

	aqi := 1.0  // asset composition not modeled
	lvgi := 1.0 // leverage composition not modeled

	sgi := 1.0
	if prevRev != 0 {
		sgi = curRev / prevRev
	}

	depi := yearOverYearIndex(
		depreciationRate(previous),
		depreciationRate(current),
	)

	sgai := yearOverYearIndex(
		safeRatio(current[domain.FieldSGAExpense], curRev, 0),
		safeRatio(previous[domain.FieldSGAExpense], prevRev, 0),
	)

	tata := safeRatio(current[domain.FieldTotalAccruals], current[domain.FieldTotalAssets], 0)

	m := -4.84 +
		0.92*dsri +
		0.528*gmi +
		0.404*aqi +
		0.892*sgi +
		0.115*depi -
		0.172*sgai +
		4.679*tata -
		0.327*lvgi

	likely := m > BeneishThreshold
	riskLevel := domain.SeverityLow
	if likely {
		riskLevel = domain.SeverityHigh
	}

	s.log.Debug().
		Float64("m_score", m).
		Bool("likely_manipulator", likely).
		Msg("Beneish M-Score computed")

	return BeneishResult{
		MScore:              round3(m),
		Threshold:           BeneishThreshold,
		IsLikelyManipulator: likely,
		RiskLevel:           riskLevel,
		Indices: map[string]float64{
			"dsri": round3(dsri),
			"gmi":  round3(gmi),
			"aqi":  round3(aqi),
			"sgi":  round3(sgi),
			"depi": round3(depi),
			"sgai": round3(sgai),
			"tata": round3(tata),
			"lvgi": round3(lvgi),
		},
	}
}

// yearOverYearIndex divides a current-period rate by a prior-period rate,
// defaulting to the neutral 1 when either side is unavailable.
func yearOverYearIndex(numerator, denominator float64) float64 {
	if numerator == 0 || denominator == 0 {
		return 1
	}
	return numerator / denominator
}

// depreciationRate returns depreciation / (depreciation + PPE) for a period.
func depreciationRate(fields map[string]float64) float64 {
	depr := fields[domain.FieldDepreciation]
	ppe := fields[domain.FieldPPE]
	return safeRatio(depr, depr+ppe, 0)
}
