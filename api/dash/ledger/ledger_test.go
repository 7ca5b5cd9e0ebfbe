package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func entry(id, posted, account, desc, debit, credit string) Entry {
	d, _ := decimal.NewFromString(debit)
	c, _ := decimal.NewFromString(credit)
	return Entry{
		EntryID:     id,
		EntityID:    "ENT-001",
		PostedOn:    posted,
		AccountCode: account,
		Description: desc,
		Debit:       d,
		Credit:      c,
		Currency:    "USD",
	}
}

var sample = []Entry{
	entry("LE-1", "2026-01-05", "6100", "Office supplies", "120.50", "0"),
	entry("LE-2", "2026-01-20", "6200", "Travel reimbursement", "340.00", "0"),
	entry("LE-3", "2026-02-03", "6100", "Printer toner", "89.99", "0"),
	entry("LE-4", "2026-02-28", "4000", "Budget transfer", "0", "550.49"),
}

func TestApplyFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"LE-1", "LE-2", "LE-3", "LE-4"}},
		{"by account", Filter{AccountCode: "6100"}, []string{"LE-1", "LE-3"}},
		{"account is case-insensitive", Filter{AccountCode: "6100"}, []string{"LE-1", "LE-3"}},
		{"from date", Filter{FromDate: "2026-02-01"}, []string{"LE-3", "LE-4"}},
		{"date range", Filter{FromDate: "2026-01-10", ToDate: "2026-02-03"}, []string{"LE-2", "LE-3"}},
		{"account and range", Filter{AccountCode: "6100", FromDate: "2026-02-01"}, []string{"LE-3"}},
		{"nothing matches", Filter{AccountCode: "9999"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilter(sample, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].EntryID != id {
					t.Errorf("entry %d = %s, want %s", i, got[i].EntryID, id)
				}
			}
		})
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name string
		term string
		want int
	}{
		{"empty term keeps everything", "", 4},
		{"description match", "toner", 1},
		{"case-insensitive", "TRAVEL", 1},
		{"account code match", "6100", 2},
		{"entry id match", "le-4", 1},
		{"no match", "payroll", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Search(sample, tt.term); len(got) != tt.want {
				t.Errorf("Search(%q) returned %d entries, want %d", tt.term, len(got), tt.want)
			}
		})
	}
}

func TestTotals(t *testing.T) {
	debit, credit := Totals(sample)
	if !debit.Equal(decimal.RequireFromString("550.49")) {
		t.Errorf("total debit = %s, want 550.49", debit)
	}
	if !credit.Equal(decimal.RequireFromString("550.49")) {
		t.Errorf("total credit = %s, want 550.49", credit)
	}
}
