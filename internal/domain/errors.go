package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("user already exists with this email")
	ErrForbidden      = errors.New("not authorized")
)

// InvalidArgumentError marks malformed input: a non-positive ticket count,
// a bad email, an unparsable QR payload.
type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string { return e.Msg }

func InvalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientSeatsError is returned when a booking asks for more tickets
// than the event has left. The message carries the exact numbers.
type InsufficientSeatsError struct {
	Available int
	Requested int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("only %d tickets available, requested %d", e.Available, e.Requested)
}

// InvalidStateError rejects a transition on a ticket already in a terminal
// state. The already-used case carries the ticket so callers can display it.
type InvalidStateError struct {
	Msg    string
	Ticket *Ticket
}

func (e *InvalidStateError) Error() string { return e.Msg }

// DependencyError wraps a failure in a collaborator (QR rendering, email,
// event publishing). Only QR failure before commit aborts a booking.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *DependencyError) Unwrap() error { return e.Err }
