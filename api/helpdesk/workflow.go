package helpdesk

// Ticket lifecycle. Closed is terminal; a resolved ticket can be reopened
// when the requester disputes the fix.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusOnHold     = "on_hold"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

var transitions = map[string][]string{
	StatusOpen:       {StatusInProgress, StatusClosed},
	StatusInProgress: {StatusOnHold, StatusResolved, StatusClosed},
	StatusOnHold:     {StatusInProgress, StatusClosed},
	StatusResolved:   {StatusOpen, StatusClosed},
	StatusClosed:     {},
}

// ValidStatus reports whether s names a known ticket status.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a ticket may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given one.
func NextStatuses(from string) []string {
	next := transitions[from]
	out := make([]string, len(next))
	copy(out, next)
	return out
}
