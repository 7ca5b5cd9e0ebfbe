package helpdesk

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusOpen, StatusClosed, true},
		{StatusOpen, StatusResolved, false},
		{StatusInProgress, StatusOnHold, true},
		{StatusInProgress, StatusResolved, true},
		{StatusOnHold, StatusInProgress, true},
		{StatusOnHold, StatusResolved, false},
		{StatusResolved, StatusOpen, true}, // reopen
		{StatusResolved, StatusClosed, true},
		{StatusClosed, StatusOpen, false}, // closed is terminal
		{StatusClosed, StatusInProgress, false},
		{StatusOpen, StatusOpen, false},
		{"bogus", StatusOpen, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusOpen, StatusInProgress, StatusOnHold, StatusResolved, StatusClosed} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false", s)
		}
	}
	if ValidStatus("pending") {
		t.Error(`ValidStatus("pending") = true`)
	}
}

func TestClosedIsTerminal(t *testing.T) {
	if got := NextStatuses(StatusClosed); len(got) != 0 {
		t.Errorf("NextStatuses(closed) = %v, want none", got)
	}
}
