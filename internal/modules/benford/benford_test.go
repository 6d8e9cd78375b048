package benford

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritaslabs/veritas/internal/domain"
)

// seriesWithValues packs arbitrary values into statements so the tester sees
// them as statement fields.
func seriesWithValues(values []float64) domain.StatementSeries {
	fields := make(map[string]float64, len(values))
	for i, v := range values {
		fields[fmt.Sprintf("line_item_%04d", i)] = v
	}
	return domain.StatementSeries{{
		PeriodEnd: time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		Type:      domain.StatementIncome,
		Currency:  "INR",
		Units:     "millions",
		Fields:    fields,
	}}
}

func TestLeadingDigit(t *testing.T) {
	tests := []struct {
		value float64
		digit int
		ok    bool
	}{
		{123456, 1, true},
		{987, 9, true},
		{5, 5, true},
		{0.042, 4, true},
		{0, 0, false},
		{-500, 0, false},
	}

	for _, tt := range tests {
		d, ok := leadingDigit(tt.value)
		assert.Equal(t, tt.ok, ok, "value %v", tt.value)
		if tt.ok {
			assert.Equal(t, tt.digit, d, "value %v", tt.value)
		}
	}
}

func TestBenfordConformingDataset(t *testing.T) {
	tester := NewTester(zerolog.Nop())

	// 1000 values at exactly the Benford frequencies per digit. Magnitudes
	// vary but the leading digit is pinned by construction.
	counts := []int{301, 176, 125, 97, 79, 67, 58, 51, 46}
	var values []float64
	for digit, n := range counts {
		for i := 0; i < n; i++ {
			magnitude := []float64{10, 100, 1000, 10000}[i%4]
			values = append(values, float64(digit+1)*magnitude+float64(i%9))
		}
	}
	require.Len(t, values, 1000)

	result, err := tester.Test(seriesWithValues(values))
	require.NoError(t, err)

	assert.Equal(t, 1000, result.SampleSize)
	assert.False(t, result.IsAnomalous)
	assert.Less(t, result.ChiSquare, result.CriticalValue)
	assert.InDelta(t, 30.1, result.ObservedPct[0], 0.01)
}

func TestBenfordAllNinesIsAnomalous(t *testing.T) {
	tester := NewTester(zerolog.Nop())

	values := make([]float64, 100)
	for i := range values {
		values[i] = 9000 + float64(i) // all leading digit 9
	}

	result, err := tester.Test(seriesWithValues(values))
	require.NoError(t, err)

	assert.True(t, result.IsAnomalous)
	assert.Greater(t, result.ChiSquare, result.CriticalValue)
	assert.InDelta(t, 100.0, result.ObservedPct[8], 0.01)
}

func TestBenfordInsufficientSample(t *testing.T) {
	tester := NewTester(zerolog.Nop())

	values := make([]float64, 10)
	for i := range values {
		values[i] = float64(i + 1)
	}

	_, err := tester.Test(seriesWithValues(values))
	require.Error(t, err)

	var insufficient domain.ErrInsufficientSample
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 10, insufficient.Got)
	assert.Equal(t, MinSample, insufficient.Min)
}

func TestBenfordExcludesNonPositive(t *testing.T) {
	tester := NewTester(zerolog.Nop())

	// 29 positive values plus noise that must not count toward the sample
	values := []float64{0, -100, -0.5}
	for i := 0; i < 29; i++ {
		values = append(values, float64(i+1)*7)
	}

	_, err := tester.Test(seriesWithValues(values))
	var insufficient domain.ErrInsufficientSample
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 29, insufficient.Got)
}

func TestCriticalValueMatchesChiSquareTable(t *testing.T) {
	tester := NewTester(zerolog.Nop())
	// 95th percentile of chi-square with 8 degrees of freedom
	assert.InDelta(t, 15.507, tester.critical, 0.001)
}
