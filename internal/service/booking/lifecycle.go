package booking

import (
	"github.com/jwalitptl/marketplace-api/internal/model"
)

// transitions is the adjacency table of the booking lifecycle. completed and
// cancelled are terminal.
var transitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingStatusPending:  {model.BookingStatusAccepted, model.BookingStatusCancelled},
	model.BookingStatusAccepted: {model.BookingStatusCompleted, model.BookingStatusCancelled},
}

// customerTargets are the only statuses a customer may request
var customerTargets = map[model.BookingStatus]bool{
	model.BookingStatusCancelled: true,
	model.BookingStatusCompleted: true,
}

// CanTransition reports whether from -> to is an edge of the lifecycle
func CanTransition(from, to model.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s
func IsTerminal(s model.BookingStatus) bool {
	return len(transitions[s]) == 0
}

// RoleMaySet reports whether a caller with role may request target at all,
// independent of the booking's current state.
func RoleMaySet(role model.Role, target model.BookingStatus) bool {
	switch role {
	case model.RoleCustomer:
		return customerTargets[target]
	case model.RoleProvider, model.RoleAdmin:
		return true
	}
	return false
}
