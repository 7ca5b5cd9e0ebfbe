package utils

import (
	"net/http/httptest"
	"testing"
)

func TestExtractPagination(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantErr    bool
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "/dash/ledger", false, 1, 10, 0},
		{"explicit", "/dash/ledger?page=3&limit=25", false, 3, 25, 50},
		{"bad page", "/dash/ledger?page=zero", true, 0, 0, 0},
		{"negative limit", "/dash/ledger?limit=-5", true, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			got, err := ExtractPagination(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit || got.Offset != tt.wantOffset {
				t.Errorf("got %+v, want page=%d limit=%d offset=%d", got, tt.wantPage, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	p := Normalize(2, 10)
	start, end := p.Window(15)
	if start != 10 || end != 15 {
		t.Errorf("Window(15) = (%d,%d), want (10,15)", start, end)
	}
	start, end = p.Window(5)
	if start != 5 || end != 5 {
		t.Errorf("Window(5) = (%d,%d), want empty window (5,5)", start, end)
	}
}

func TestSetPaginationStats(t *testing.T) {
	p := Normalize(1, 10)
	p.SetPaginationStats(25)
	if p.TotalRecords != 25 || p.TotalPages != 3 {
		t.Errorf("stats = %+v, want 25 records over 3 pages", p)
	}
	p.SetPaginationStats(0)
	if p.TotalPages != 0 {
		t.Errorf("zero records should give zero pages, got %d", p.TotalPages)
	}
}
