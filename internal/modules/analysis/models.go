package analysis

import "time"

// VerticalAnalysis expresses one statement's line items as percentages of a
// base figure (revenue for income statements, total assets for balance
// sheets). Line items the source did not report are absent from Percentages.
type VerticalAnalysis struct {
	Period      time.Time          `json:"period"`
	Base        string             `json:"base"`
	BaseValue   float64            `json:"base_value"`
	Percentages map[string]float64 `json:"percentages"`
}

// PeriodGrowth holds period-over-period growth percentages for one period
// against its predecessor. A nil entry means growth is undefined because
// the prior value was zero; a missing key means the metric was not reported
// on both sides of the pair.
type PeriodGrowth struct {
	Period  time.Time           `json:"period"`
	Metrics map[string]*float64 `json:"metrics"`
}

// HorizontalAnalysis is the full growth table over a series, one entry per
// consecutive period pair, ordered ascending by period.
type HorizontalAnalysis struct {
	Periods []PeriodGrowth `json:"periods"`
}
