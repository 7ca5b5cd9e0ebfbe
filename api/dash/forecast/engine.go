package forecast

import (
	"sort"

	"github.com/shopspring/decimal"
)

// exactTolerance absorbs rounding drift between actuals and forecasts;
// differences below one cent count as an exact hit.
var exactTolerance = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// MonthlyFlowPoint is one calendar month of actual spend against budgeted
// spend. An actual of 0 means no spend recorded yet for that month.
type MonthlyFlowPoint struct {
	MonthIndex int             `json:"month_index"`
	MonthName  string          `json:"month_name"`
	Budget     decimal.Decimal `json:"budget"`
	Actual     decimal.Decimal `json:"actual"`
}

// CumulativeForecastPoint is one month's year-to-date forecast total.
type CumulativeForecastPoint struct {
	MonthIndex int             `json:"month_index"`
	MonthName  string          `json:"month_name"`
	Forecast   decimal.Decimal `json:"forecast"`
}

// MonthlyForecastPoint is the per-month (non-cumulative) forecast amount
// derived from the cumulative series.
type MonthlyForecastPoint struct {
	MonthIndex int             `json:"month_index"`
	MonthName  string          `json:"month_name"`
	Forecast   decimal.Decimal `json:"forecast"`
}

// StitchedPoint is one position of the combined actual-then-forecast chart
// line. Present is false where the line is suppressed (months before the
// stitch point, or future months with no matching forecast).
type StitchedPoint struct {
	MonthIndex int             `json:"month_index"`
	MonthName  string          `json:"month_name"`
	Value      decimal.Decimal `json:"value"`
	Present    bool            `json:"present"`
}

// VarianceRecord compares one month's actual spend with its derived monthly
// forecast.
type VarianceRecord struct {
	Actual          decimal.Decimal `json:"actual"`
	Forecast        decimal.Decimal `json:"forecast"`
	Variance        decimal.Decimal `json:"variance"`
	IsExact         bool            `json:"is_exact"`
	AccuracyPercent decimal.Decimal `json:"accuracy_percent"`
}

// VarianceStatus classifies a month's variance for display.
type VarianceStatus int

const (
	StatusExact VarianceStatus = iota
	StatusOverForecast
	StatusUnderForecast
)

func (s VarianceStatus) String() string {
	switch s {
	case StatusExact:
		return "Exact"
	case StatusOverForecast:
		return "Actual > Forecast"
	case StatusUnderForecast:
		return "Actual < Forecast"
	}
	return "Unknown"
}

// DeriveMonthlySeries converts a cumulative (year-to-date) forecast series
// into discrete monthly amounts. Input order is not trusted; points are
// sorted by month index first. A negative delta (non-monotonic upstream
// data) is clamped to zero, but the running total keeps the original
// cumulative value so one bad point does not desynchronize the rest of the
// series. Empty input yields an empty series.
func DeriveMonthlySeries(cumulative []CumulativeForecastPoint) []MonthlyForecastPoint {
	if len(cumulative) == 0 {
		return []MonthlyForecastPoint{}
	}
	sorted := make([]CumulativeForecastPoint, len(cumulative))
	copy(sorted, cumulative)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MonthIndex < sorted[j].MonthIndex
	})

	out := make([]MonthlyForecastPoint, 0, len(sorted))
	prev := decimal.Zero
	for _, p := range sorted {
		monthly := p.Forecast.Sub(prev)
		if monthly.IsNegative() {
			monthly = decimal.Zero
		}
		out = append(out, MonthlyForecastPoint{
			MonthIndex: p.MonthIndex,
			MonthName:  p.MonthName,
			Forecast:   monthly,
		})
		prev = p.Forecast
	}
	return out
}

// StitchForecastLine splices the actual line and the monthly forecast line
// into one chartable series. Months strictly before the last month with
// recorded spend are suppressed; the boundary month carries the actual value
// so the two lines meet without a gap; later months carry the matching
// forecast amount.
func StitchForecastLine(actuals []MonthlyFlowPoint, monthly []MonthlyForecastPoint) []StitchedPoint {
	lastActualIdx := -1
	for i, p := range actuals {
		if p.Actual.IsPositive() {
			lastActualIdx = i
		}
	}

	out := make([]StitchedPoint, 0, len(actuals))
	for i, p := range actuals {
		sp := StitchedPoint{MonthIndex: p.MonthIndex, MonthName: p.MonthName}
		switch {
		case i < lastActualIdx:
			// suppressed: two diverging lines in the past help nobody
		case i == lastActualIdx:
			sp.Value = p.Actual
			sp.Present = true
		default:
			if mf, ok := matchForecast(monthly, p.MonthIndex, p.MonthName); ok {
				sp.Value = mf.Forecast
				sp.Present = true
			}
		}
		out = append(out, sp)
	}
	return out
}

func matchForecast(monthly []MonthlyForecastPoint, monthIndex int, monthName string) (MonthlyForecastPoint, bool) {
	for _, mf := range monthly {
		if mf.MonthIndex == monthIndex {
			return mf, true
		}
	}
	for _, mf := range monthly {
		if mf.MonthName != "" && mf.MonthName == monthName {
			return mf, true
		}
	}
	return MonthlyForecastPoint{}, false
}

// ComputeVariance compares one month's actual spend with its forecast.
// Accuracy is deliberately asymmetric: the denominator is always the actual,
// answering "how close did we land relative to what actually happened". Do
// not swap in a symmetric percentage-error formula.
func ComputeVariance(actual, forecast decimal.Decimal) VarianceRecord {
	variance := actual.Sub(forecast)
	rec := VarianceRecord{
		Actual:   actual,
		Forecast: forecast,
		Variance: variance,
		IsExact:  variance.Abs().LessThan(exactTolerance),
	}

	switch {
	case actual.IsPositive():
		pct := hundred.Sub(variance.Abs().Mul(hundred).Div(actual))
		if pct.IsNegative() {
			pct = decimal.Zero
		} else if pct.GreaterThan(hundred) {
			pct = hundred
		}
		rec.AccuracyPercent = pct
	case forecast.IsZero():
		// nothing happened and nothing was predicted
		rec.AccuracyPercent = hundred
	default:
		rec.AccuracyPercent = decimal.Zero
	}
	return rec
}

// ClassifyVarianceStatus maps a signed variance onto its display status.
func ClassifyVarianceStatus(variance decimal.Decimal, isExact bool) VarianceStatus {
	if isExact {
		return StatusExact
	}
	if variance.IsPositive() {
		return StatusOverForecast
	}
	return StatusUnderForecast
}

// BudgetVariancePercent is the variance-report metric: percent deviation of
// actual spend from budget. Positive means over budget (red downstream),
// negative means under budget. Zero budget fails closed to 0 instead of
// dividing.
func BudgetVariancePercent(budget, actual decimal.Decimal) decimal.Decimal {
	if budget.IsZero() {
		return decimal.Zero
	}
	return actual.Sub(budget).Mul(hundred).Div(budget)
}
