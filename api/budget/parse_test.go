package budget

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeMonth(t *testing.T) {
	tests := []struct {
		in       string
		wantIdx  int
		wantName string
		ok       bool
	}{
		{"January", 1, "January", true},
		{"january", 1, "January", true},
		{"JAN", 1, "January", true},
		{"dec", 12, "December", true},
		{"3", 3, "March", true},
		{" 11 ", 11, "November", true},
		{"0", 0, "", false},
		{"13", 0, "", false},
		{"Janvier", 0, "", false},
		{"", 0, "", false},
	}
	for _, tt := range tests {
		idx, name, ok := NormalizeMonth(tt.in)
		if idx != tt.wantIdx || name != tt.wantName || ok != tt.ok {
			t.Errorf("NormalizeMonth(%q) = (%d, %q, %v), want (%d, %q, %v)",
				tt.in, idx, name, ok, tt.wantIdx, tt.wantName, tt.ok)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1000", "1000", false},
		{"1,234.50", "1234.5", false},
		{"$5,000", "5000", false},
		{" $12.34 ", "12.34", false},
		{"(500)", "-500", false},
		{"($1,250.75)", "-1250.75", false},
		{"-42", "-42", false},
		{"", "", true},
		{"abc", "", true},
		{"$", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q) expected error, got %s", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMapHeader(t *testing.T) {
	cols, err := MapHeader([]string{"Entity", "Fiscal Year", "Month", "Amount"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]int{"entity_id": 0, "fiscal_year": 1, "month": 2, "amount": 3}
	for field, idx := range want {
		if cols[field] != idx {
			t.Errorf("column %q = %d, want %d", field, cols[field], idx)
		}
	}

	if _, err := MapHeader([]string{"Entity", "Month", "Amount"}); err == nil {
		t.Error("expected error for missing fiscal year column")
	}
}

func TestParseRows(t *testing.T) {
	raw := [][]string{
		{"Entity", "FY", "Month", "Amount"},
		{"ENT-001", "2026", "January", "10,000"},
		{"", "", "", ""},
		{"ENT-001", "2026", "feb", "(250)"},
	}
	rows, err := ParseRows(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (blank line skipped)", len(rows))
	}
	if rows[0].MonthIndex != 1 || !rows[0].Amount.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].MonthName != "February" || !rows[1].Amount.Equal(decimal.NewFromInt(-250)) {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestParseRowsErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  [][]string
		msg  string
	}{
		{"header only", [][]string{{"Entity", "FY", "Month", "Amount"}}, "no data rows"},
		{"bad month", [][]string{
			{"Entity", "FY", "Month", "Amount"},
			{"ENT-001", "2026", "Smarch", "100"},
		}, "bad month"},
		{"bad year", [][]string{
			{"Entity", "FY", "Month", "Amount"},
			{"ENT-001", "26", "January", "100"},
		}, "bad fiscal year"},
		{"missing entity", [][]string{
			{"Entity", "FY", "Month", "Amount"},
			{"", "2026", "January", "100"},
		}, "missing entity"},
		{"bad amount", [][]string{
			{"Entity", "FY", "Month", "Amount"},
			{"ENT-001", "2026", "January", "lots"},
		}, "bad amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRows(tt.raw)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestReadSheetCSV(t *testing.T) {
	csvData := "Entity,FY,Month,Amount\nENT-001,2026,January,\"1,500\"\n"
	rows, err := ReadSheet("budget.csv", []byte(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[1][3] != "1,500" {
		t.Errorf("rows = %v", rows)
	}
}

func TestReadSheetUnsupported(t *testing.T) {
	if _, err := ReadSheet("budget.pdf", []byte("x")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
