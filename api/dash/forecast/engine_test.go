package forecast

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func cum(monthIndex int, forecast string) CumulativeForecastPoint {
	return CumulativeForecastPoint{MonthIndex: monthIndex, Forecast: dec(forecast)}
}

func flow(monthIndex int, name, budget, actual string) MonthlyFlowPoint {
	return MonthlyFlowPoint{MonthIndex: monthIndex, MonthName: name, Budget: dec(budget), Actual: dec(actual)}
}

func TestDeriveMonthlySeries(t *testing.T) {
	tests := []struct {
		name       string
		cumulative []CumulativeForecastPoint
		want       []string
	}{
		{
			name:       "empty input",
			cumulative: nil,
			want:       []string{},
		},
		{
			name:       "monotonic series",
			cumulative: []CumulativeForecastPoint{cum(1, "1000"), cum(2, "2500"), cum(3, "2500")},
			want:       []string{"1000", "1500", "0"},
		},
		{
			name:       "non-monotonic series clamps to zero",
			cumulative: []CumulativeForecastPoint{cum(1, "1000"), cum(2, "500")},
			want:       []string{"1000", "0"},
		},
		{
			name:       "unsorted input is sorted first",
			cumulative: []CumulativeForecastPoint{cum(3, "900"), cum(1, "300"), cum(2, "600")},
			want:       []string{"300", "300", "300"},
		},
		{
			name:       "recovery after bad point uses original cumulative",
			cumulative: []CumulativeForecastPoint{cum(1, "1000"), cum(2, "500"), cum(3, "1500")},
			want:       []string{"1000", "0", "1000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveMonthlySeries(tt.cumulative)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d points, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				if !got[i].Forecast.Equal(dec(w)) {
					t.Errorf("month %d: forecast = %s, want %s", got[i].MonthIndex, got[i].Forecast, w)
				}
			}
		})
	}
}

func TestDeriveMonthlySeriesIdempotent(t *testing.T) {
	in := []CumulativeForecastPoint{cum(2, "800"), cum(1, "500"), cum(3, "700")}
	first := DeriveMonthlySeries(in)
	second := DeriveMonthlySeries(in)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Forecast.Equal(second[i].Forecast) || first[i].MonthIndex != second[i].MonthIndex {
			t.Errorf("call results diverge at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestDeriveMonthlySeriesSumInvariant(t *testing.T) {
	in := []CumulativeForecastPoint{cum(1, "1200.50"), cum(2, "2400.75"), cum(3, "3000"), cum(4, "4100.25")}
	got := DeriveMonthlySeries(in)
	sum := decimal.Zero
	for _, p := range got {
		sum = sum.Add(p.Forecast)
		if p.Forecast.IsNegative() {
			t.Errorf("month %d: derived value %s is negative", p.MonthIndex, p.Forecast)
		}
	}
	if !sum.Equal(dec("4100.25")) {
		t.Errorf("sum of monthly values = %s, want final cumulative 4100.25", sum)
	}
}

func TestDeriveMonthlySeriesClampProperty(t *testing.T) {
	in := []CumulativeForecastPoint{cum(1, "100"), cum(2, "50"), cum(3, "20"), cum(4, "500")}
	for _, p := range DeriveMonthlySeries(in) {
		if p.Forecast.IsNegative() {
			t.Errorf("month %d: derived value %s < 0", p.MonthIndex, p.Forecast)
		}
	}
}

func TestStitchForecastLine(t *testing.T) {
	actuals := []MonthlyFlowPoint{
		flow(1, "January", "1000", "900"),
		flow(2, "February", "1000", "1100"),
		flow(3, "March", "1000", "0"),
		flow(4, "April", "1000", "0"),
	}
	monthly := []MonthlyForecastPoint{
		{MonthIndex: 1, MonthName: "January", Forecast: dec("950")},
		{MonthIndex: 2, MonthName: "February", Forecast: dec("1050")},
		{MonthIndex: 3, MonthName: "March", Forecast: dec("1200")},
	}

	got := StitchForecastLine(actuals, monthly)
	if len(got) != 4 {
		t.Fatalf("got %d points, want 4", len(got))
	}
	if got[0].Present {
		t.Errorf("month 1 should be suppressed before the stitch point")
	}
	if !got[1].Present || !got[1].Value.Equal(dec("1100")) {
		t.Errorf("stitch month carries actual: got %s present=%v, want 1100", got[1].Value, got[1].Present)
	}
	if !got[2].Present || !got[2].Value.Equal(dec("1200")) {
		t.Errorf("month 3 carries forecast: got %s present=%v, want 1200", got[2].Value, got[2].Present)
	}
	if got[3].Present {
		t.Errorf("month 4 has no forecast, should be absent")
	}
}

func TestStitchForecastLineNoActuals(t *testing.T) {
	actuals := []MonthlyFlowPoint{
		flow(1, "January", "1000", "0"),
		flow(2, "February", "1000", "0"),
	}
	monthly := []MonthlyForecastPoint{
		{MonthIndex: 1, MonthName: "January", Forecast: dec("400")},
		{MonthIndex: 2, MonthName: "February", Forecast: dec("600")},
	}
	got := StitchForecastLine(actuals, monthly)
	if !got[0].Present || !got[0].Value.Equal(dec("400")) {
		t.Errorf("with no recorded actuals every month takes forecast, got %+v", got[0])
	}
	if !got[1].Present || !got[1].Value.Equal(dec("600")) {
		t.Errorf("with no recorded actuals every month takes forecast, got %+v", got[1])
	}
}

func TestStitchForecastLineMatchesByName(t *testing.T) {
	actuals := []MonthlyFlowPoint{
		flow(1, "January", "0", "500"),
		flow(2, "February", "0", "0"),
	}
	// month index missing, name matches
	monthly := []MonthlyForecastPoint{
		{MonthIndex: 0, MonthName: "February", Forecast: dec("750")},
	}
	got := StitchForecastLine(actuals, monthly)
	if !got[1].Present || !got[1].Value.Equal(dec("750")) {
		t.Errorf("expected name-based forecast match, got %+v", got[1])
	}
}

func TestComputeVariance(t *testing.T) {
	tests := []struct {
		name         string
		actual       string
		forecast     string
		wantVariance string
		wantExact    bool
		wantAccuracy string
	}{
		{"under forecast", "500", "1000", "-500", false, "0"},
		{"both zero", "0", "0", "0", true, "100"},
		{"no spend but forecast", "0", "800", "-800", false, "0"},
		{"perfect match", "1200", "1200", "0", true, "100"},
		{"sub-cent drift counts as exact", "100", "100.005", "-0.005", true, "99.995"},
		{"half off", "1000", "500", "500", false, "50"},
		{"overshoot beyond actual clamps to zero", "100", "350", "-250", false, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ComputeVariance(dec(tt.actual), dec(tt.forecast))
			if !rec.Variance.Equal(dec(tt.wantVariance)) {
				t.Errorf("variance = %s, want %s", rec.Variance, tt.wantVariance)
			}
			if rec.IsExact != tt.wantExact {
				t.Errorf("is_exact = %v, want %v", rec.IsExact, tt.wantExact)
			}
			if !rec.AccuracyPercent.Equal(dec(tt.wantAccuracy)) {
				t.Errorf("accuracy = %s, want %s", rec.AccuracyPercent, tt.wantAccuracy)
			}
		})
	}
}

func TestAccuracyBounds(t *testing.T) {
	pairs := [][2]string{
		{"0", "0"}, {"0", "99999"}, {"1", "100000"}, {"100000", "1"},
		{"0.01", "0.02"}, {"123.45", "123.44"},
	}
	for _, p := range pairs {
		rec := ComputeVariance(dec(p[0]), dec(p[1]))
		if rec.AccuracyPercent.IsNegative() || rec.AccuracyPercent.GreaterThan(decimal.NewFromInt(100)) {
			t.Errorf("accuracy for actual=%s forecast=%s out of bounds: %s", p[0], p[1], rec.AccuracyPercent)
		}
	}
}

func TestClassifyVarianceStatus(t *testing.T) {
	tests := []struct {
		name     string
		actual   string
		forecast string
		want     VarianceStatus
	}{
		{"exact", "100", "100", StatusExact},
		{"exact within tolerance", "100.004", "100", StatusExact},
		{"over", "150", "100", StatusOverForecast},
		{"under", "50", "100", StatusUnderForecast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ComputeVariance(dec(tt.actual), dec(tt.forecast))
			got := ClassifyVarianceStatus(rec.Variance, rec.IsExact)
			if got != tt.want {
				t.Errorf("status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVarianceStatusString(t *testing.T) {
	if StatusExact.String() != "Exact" {
		t.Errorf("StatusExact.String() = %q", StatusExact.String())
	}
	if StatusOverForecast.String() != "Actual > Forecast" {
		t.Errorf("StatusOverForecast.String() = %q", StatusOverForecast.String())
	}
	if StatusUnderForecast.String() != "Actual < Forecast" {
		t.Errorf("StatusUnderForecast.String() = %q", StatusUnderForecast.String())
	}
}

func TestBudgetVariancePercent(t *testing.T) {
	tests := []struct {
		name   string
		budget string
		actual string
		want   string
	}{
		{"fifty percent over", "1000", "1500", "50"},
		{"under budget is negative", "1000", "750", "-25"},
		{"zero budget guarded", "0", "500", "0"},
		{"on budget", "800", "800", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BudgetVariancePercent(dec(tt.budget), dec(tt.actual))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("BudgetVariancePercent(%s, %s) = %s, want %s", tt.budget, tt.actual, got, tt.want)
			}
		})
	}
}
