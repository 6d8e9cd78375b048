// Package benford implements a leading-digit distribution test over all
// positive statement values, flagging series whose digits deviate from the
// Newcomb-Benford expectation.
package benford

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/veritaslabs/veritas/internal/domain"
)

// MinSample is the smallest number of positive values the test accepts.
const MinSample = 30

// confidence is the significance level for the chi-square decision.
const confidence = 0.95

// expectedPct is the Newcomb-Benford leading-digit distribution, in percent,
// for digits 1 through 9.
var expectedPct = [9]float64{30.1, 17.6, 12.5, 9.7, 7.9, 6.7, 5.8, 5.1, 4.6}

// Result is the outcome of one digit-distribution test.
type Result struct {
	SampleSize     int        `json:"sample_size"`
	ObservedPct    [9]float64 `json:"observed_pct"`
	ExpectedPct    [9]float64 `json:"expected_pct"`
	ChiSquare      float64    `json:"chi_square"`
	CriticalValue  float64    `json:"critical_value"`
	PValue         float64    `json:"p_value"`
	IsAnomalous    bool       `json:"is_anomalous"`
	Interpretation string     `json:"interpretation"`
}

// Tester runs the Benford leading-digit test. The chi-square reference
// distribution has 8 degrees of freedom (9 digit bins - 1); the critical
// value is taken from it once at construction.
type Tester struct {
	log      zerolog.Logger
	dist     distuv.ChiSquared
	critical float64
}

// NewTester creates a new Benford tester
func NewTester(log zerolog.Logger) *Tester {
	dist := distuv.ChiSquared{K: 8}
	return &Tester{
		log:      log.With().Str("component", "benford").Logger(),
		dist:     dist,
		critical: dist.Quantile(confidence), // 15.507 at 95%
	}
}

// Test runs the leading-digit test over every positive numeric value in the
// series. Values <= 0 carry no leading-digit information and are excluded.
func (t *Tester) Test(series domain.StatementSeries) (Result, error) {
	var counts [9]int
	total := 0

	for _, stmt := range series {
		for _, v := range stmt.Fields {
			d, ok := leadingDigit(v)
			if !ok {
				continue
			}
			counts[d-1]++
			total++
		}
	}

	if total < MinSample {
		return Result{}, domain.ErrInsufficientSample{Got: total, Min: MinSample}
	}

	result := Result{
		SampleSize:    total,
		ExpectedPct:   expectedPct,
		CriticalValue: round3(t.critical),
	}

	chi := 0.0
	for i := 0; i < 9; i++ {
		obs := float64(counts[i]) / float64(total) * 100
		result.ObservedPct[i] = round3(obs)
		diff := obs - expectedPct[i]
		chi += diff * diff / expectedPct[i]
	}

	result.ChiSquare = round3(chi)
	result.PValue = round3(t.dist.Survival(chi))
	result.IsAnomalous = chi > t.critical

	if result.IsAnomalous {
		result.Interpretation = "Leading-digit distribution deviates significantly from Benford's Law; figures may be fabricated or heavily rounded"
	} else {
		result.Interpretation = "Leading-digit distribution is consistent with Benford's Law"
	}

	t.log.Debug().
		Int("sample_size", total).
		Float64("chi_square", result.ChiSquare).
		Bool("anomalous", result.IsAnomalous).
		Msg("Benford test complete")

	return result, nil
}

// leadingDigit returns the first significant digit of a positive value.
func leadingDigit(v float64) (int, bool) {
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	for v >= 10 {
		v /= 10
	}
	for v < 1 {
		v *= 10
	}
	return int(v), true
}

// round3 rounds to 3 decimal places
func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
