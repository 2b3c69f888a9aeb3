package delivery

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
)

// ErrInvalidTransition is returned when a requested status change is not an
// allowed edge of the delivery lifecycle. It is an expected business outcome,
// mapped to a client error by the HTTP layer.
var ErrInvalidTransition = errors.New("invalid status transition")

// Status represents the lifecycle state of a delivery.
// It implements a state machine with a fixed, total transition table:
//
//	pending ──> assigned ──> en_route ──> delivered
//
// delivered is terminal. Any (current, requested) pair not listed above is
// rejected, including same-state transitions and skipping states. There is no
// cancelled state in this subsystem; see DESIGN.md for the product gap note.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the nominal initial status. In practice deliveries are
	// created directly in Assigned because a driver is bound at creation
	// time; Pending exists so the transition table is total over the wire
	// vocabulary.
	Pending

	// Assigned indicates a driver has been bound to the delivery.
	Assigned

	// EnRoute indicates the driver is moving toward the dropoff point.
	// Location updates are broadcast only while in this status.
	EnRoute

	// Delivered is the terminal status. The bound driver is released when a
	// delivery reaches it.
	Delivered
)

// getStatusStrings returns the wire representation of every Status value.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Pending:   "pending",
		Assigned:  "assigned",
		EnRoute:   "en_route",
		Delivered: "delivered",
	}
}

// getValidStatusStrings returns only valid Status values, supporting
// validation and parsing.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "pending",
		Assigned:  "assigned",
		EnRoute:   "en_route",
		Delivered: "delivered",
	}
}

// getTransitions returns the allowed successor for each status. A status
// absent from the map has no outgoing transitions.
func getTransitions() map[Status]Status {
	return map[Status]Status{
		Pending:  Assigned,
		Assigned: EnRoute,
		EnRoute:  Delivered,
	}
}

// StatusFromString parses the wire representation of a status
// ("pending", "assigned", "en_route", "delivered").
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that the Status is one of the four valid lifecycle states.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status. Implements fmt.Stringer and is
// safe on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	if err := s.Validate(); err != nil {
		return false
	}
	_, ok := getTransitions()[s]
	return !ok
}

// CanTransition reports whether requested is an allowed successor of s.
// The table is total: every pair not explicitly allowed is rejected.
func (s Status) CanTransition(requested Status) bool {
	if s.Validate() != nil || requested.Validate() != nil {
		return false
	}
	next, ok := getTransitions()[s]
	return ok && next == requested
}

// TransitionTo returns the requested status if the edge is allowed, or an
// error wrapping ErrInvalidTransition otherwise.
//
// Example:
//
//	next, err := delivery.Assigned.TransitionTo(delivery.EnRoute)
//	if errors.Is(err, delivery.ErrInvalidTransition) {
//	    // reject the request
//	}
func (s Status) TransitionTo(requested Status) (Status, error) {
	if !s.CanTransition(requested) {
		return Unknown, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, requested)
	}
	return requested, nil
}
