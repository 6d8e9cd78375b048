package ratios

import "time"

// Ratio keys emitted by the calculator. A key is simply absent when its
// inputs are missing or its denominator is zero; absence is the zero-guard,
// not an error and not a null.
const (
	CurrentRatio           = "current_ratio"
	QuickRatio             = "quick_ratio"
	CashRatio              = "cash_ratio"
	GrossMargin            = "gross_margin"
	OperatingMargin        = "operating_margin"
	NetMargin              = "net_margin"
	EBITDAMargin           = "ebitda_margin"
	DebtToEquity           = "debt_to_equity"
	DebtToAssets           = "debt_to_assets"
	AssetTurnover          = "asset_turnover"
	FixedAssetTurnover     = "fixed_asset_turnover"
	ReceivablesTurnover    = "receivables_turnover"
	InventoryTurnover      = "inventory_turnover"
	WorkingCapitalTurnover = "working_capital_turnover"
	DaysSalesOutstanding   = "days_sales_outstanding"
	DaysInventoryOutstand  = "days_inventory_outstanding"
	CashConversionCycle    = "cash_conversion_cycle"
)

// PeriodRatios holds the computed ratios for one period.
type PeriodRatios struct {
	Period time.Time          `json:"period"`
	Ratios map[string]float64 `json:"ratios"`
}

// RatioSet is the full ratio table over a series, ordered ascending by
// period. Recomputed on every run, never persisted by the engine.
type RatioSet struct {
	Periods []PeriodRatios `json:"periods"`
}

// Latest returns the most recent period's ratios.
func (rs RatioSet) Latest() (PeriodRatios, bool) {
	if len(rs.Periods) == 0 {
		return PeriodRatios{}, false
	}
	return rs.Periods[len(rs.Periods)-1], true
}
