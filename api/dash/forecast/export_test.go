package forecast

import "testing"

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"1234.5", "$1,234.50"},
		{"999", "$999.00"},
		{"1000", "$1,000.00"},
		{"1234567.891", "$1,234,567.89"},
		{"-250", "-$250.00"},
		{"-1234567.8", "-$1,234,567.80"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(dec(tt.in)); got != tt.want {
			t.Errorf("FormatCurrency(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildVarianceReport(t *testing.T) {
	flows := []MonthlyFlowPoint{
		flow(1, "January", "1000", "900"),
		flow(2, "February", "1000", "1250"),
		flow(3, "March", "1000", "0"),
	}
	monthly := DeriveMonthlySeries([]CumulativeForecastPoint{
		{MonthIndex: 1, MonthName: "January", Forecast: dec("900")},
		{MonthIndex: 2, MonthName: "February", Forecast: dec("1900")},
		{MonthIndex: 3, MonthName: "March", Forecast: dec("3100")},
	})

	rows, summary := BuildVarianceReport(flows, monthly)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	// January: actual 900 vs monthly forecast 900 -> exact
	if rows[0].VarianceStatus != "Exact" {
		t.Errorf("January status = %q, want Exact", rows[0].VarianceStatus)
	}
	if rows[0].AccuracyPercent != "100.0%" {
		t.Errorf("January accuracy = %q, want 100.0%%", rows[0].AccuracyPercent)
	}

	// February: actual 1250 vs forecast 1000 -> over forecast by $250
	if rows[1].VarianceStatus != "Actual > Forecast" {
		t.Errorf("February status = %q, want Actual > Forecast", rows[1].VarianceStatus)
	}
	if rows[1].Variance != "$250.00" {
		t.Errorf("February variance = %q, want $250.00", rows[1].Variance)
	}

	// Summary comes from February, the last month with recorded spend.
	if summary.AnalyzedMonth != "February" {
		t.Errorf("analyzed month = %q, want February", summary.AnalyzedMonth)
	}
	if summary.VarianceWithDirection != "$250.00 over forecast" {
		t.Errorf("variance direction = %q, want $250.00 over forecast", summary.VarianceWithDirection)
	}
	if summary.AccuracyScore != "80.0%" {
		t.Errorf("accuracy score = %q, want 80.0%%", summary.AccuracyScore)
	}
}

func TestBuildVarianceReportNoActuals(t *testing.T) {
	flows := []MonthlyFlowPoint{flow(1, "January", "1000", "0")}
	rows, summary := BuildVarianceReport(flows, nil)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if summary.AnalyzedMonth != "N/A" {
		t.Errorf("analyzed month = %q, want N/A when nothing is recorded", summary.AnalyzedMonth)
	}
}
