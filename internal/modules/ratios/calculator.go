// Package ratios computes per-period liquidity, profitability, leverage and
// efficiency ratios from normalized statements.
package ratios

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/veritaslabs/veritas/internal/domain"
)

// quickRatioFactor approximates quick assets as 70% of current assets. The
// normalized inputs carry no inventory/prepaid split for every filer, so
// this stays an explicit simplifying assumption.
const quickRatioFactor = 0.7

// Calculator computes financial ratios per period. Stateless.
type Calculator struct {
	log zerolog.Logger
}

// NewCalculator creates a new ratio calculator
func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{log: log.With().Str("component", "ratios").Logger()}
}

// Calculate computes ratios for every period in the series. Statements
// sharing a period end are merged, so efficiency ratios that need both an
// income statement and a balance sheet appear only on periods that have
// both.
func (c *Calculator) Calculate(series domain.StatementSeries) RatioSet {
	out := RatioSet{}

	for _, periodEnd := range series.Periods() {
		fields := series.MergedPeriod(periodEnd)
		r := periodRatios(fields)
		if len(r) == 0 {
			continue
		}
		out.Periods = append(out.Periods, PeriodRatios{Period: periodEnd, Ratios: r})
	}

	return out
}

func periodRatios(f map[string]float64) map[string]float64 {
	r := make(map[string]float64)

	revenue, hasRevenue := f[domain.FieldTotalRevenue]
	assets, hasAssets := f[domain.FieldTotalAssets]
	liabilities, hasLiabilities := f[domain.FieldTotalLiabilities]
	equity, hasEquity := f[domain.FieldTotalEquity]
	currentAssets, hasCA := f[domain.FieldCurrentAssets]
	currentLiabilities, hasCL := f[domain.FieldCurrentLiabilities]

	// Liquidity
	if hasCA && hasCL && currentLiabilities != 0 {
		put(r, CurrentRatio, currentAssets/currentLiabilities)
		put(r, QuickRatio, quickRatioFactor*currentAssets/currentLiabilities)
	}
	if cash, ok := f[domain.FieldCash]; ok && hasCL && currentLiabilities != 0 {
		put(r, CashRatio, cash/currentLiabilities)
	}

	// Profitability
	if hasRevenue && revenue != 0 {
		if gp, ok := f[domain.FieldGrossProfit]; ok {
			put(r, GrossMargin, gp/revenue*100)
		}
		if oi, ok := f[domain.FieldOperatingIncome]; ok {
			put(r, OperatingMargin, oi/revenue*100)
		}
		if np, ok := f[domain.FieldNetProfit]; ok {
			put(r, NetMargin, np/revenue*100)
		}
		if ebitda, ok := f[domain.FieldEBITDA]; ok {
			put(r, EBITDAMargin, ebitda/revenue*100)
		}
	}

	// Leverage
	if hasLiabilities && hasEquity && equity != 0 {
		put(r, DebtToEquity, liabilities/equity)
	}
	if hasLiabilities && hasAssets && assets != 0 {
		put(r, DebtToAssets, liabilities/assets)
	}

	// Efficiency: needs income figures against balance-sheet positions
	if hasRevenue && revenue != 0 {
		if hasAssets && assets != 0 {
			put(r, AssetTurnover, revenue/assets)
		}
		if fixed, ok := f[domain.FieldFixedAssets]; ok && fixed != 0 {
			put(r, FixedAssetTurnover, revenue/fixed)
		}
		if ar, ok := f[domain.FieldAccountsReceivable]; ok {
			if ar != 0 {
				put(r, ReceivablesTurnover, revenue/ar)
			}
			put(r, DaysSalesOutstanding, ar/revenue*365)
		}
		if hasCA && hasCL {
			if wc := currentAssets - currentLiabilities; wc != 0 {
				put(r, WorkingCapitalTurnover, revenue/wc)
			}
		}
	}
	if cogs, hasCOGS := f[domain.FieldCostOfGoodsSold]; hasCOGS && cogs != 0 {
		if inv, ok := f[domain.FieldInventory]; ok {
			if inv != 0 {
				put(r, InventoryTurnover, cogs/inv)
			}
			put(r, DaysInventoryOutstand, inv/cogs*365)
		}
	}

	// Cash conversion cycle: DSO + DIO. Payable days are deliberately not
	// subtracted; supplier terms are not part of the normalized field set.
	dso, hasDSO := r[DaysSalesOutstanding]
	dio, hasDIO := r[DaysInventoryOutstand]
	if hasDSO && hasDIO {
		put(r, CashConversionCycle, dso+dio)
	}

	return r
}

func put(r map[string]float64, key string, value float64) {
	r[key] = round4(value)
}

// round4 rounds to 4 decimal places
func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
