// Package tracker follows a user's job applications through a Kanban board.
//
// Valid status graph:
//
//	             ┌───────────────────────────┐
//	             │                           ▼
//	SAVED ──► APPLIED ──► INTERVIEWING ──► OFFER
//	  │          │              │
//	  └──────────┴──────────────┴──► REJECTED
//
// OFFER and REJECTED are terminal states.
package tracker

import "fmt"

// Status values mirror the application_status enum in PostgreSQL.
type Status string

const (
	StatusSaved        Status = "SAVED"
	StatusApplied      Status = "APPLIED"
	StatusInterviewing Status = "INTERVIEWING"
	StatusOffer        Status = "OFFER"
	StatusRejected     Status = "REJECTED"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusSaved:        {StatusApplied, StatusRejected},
	StatusApplied:      {StatusInterviewing, StatusOffer, StatusRejected},
	StatusInterviewing: {StatusOffer, StatusRejected},
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values. Matching is exact.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusSaved, StatusApplied, StatusInterviewing, StatusOffer, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s Status) bool { return s == StatusOffer || s == StatusRejected }
