package orchestrator

import (
	"errors"
	"fmt"
)

// UnknownAgentError indicates a lookup for an agent id that is not loaded.
type UnknownAgentError struct {
	ID string
}

func (e *UnknownAgentError) Error() string {
	return fmt.Sprintf("unknown agent id: %s", e.ID)
}

// TicketNotFoundError indicates no backlog ticket carries the requested id.
type TicketNotFoundError struct {
	ID string
}

func (e *TicketNotFoundError) Error() string {
	return fmt.Sprintf("ticket not found in backlog: %s", e.ID)
}

// InvalidDateError indicates a user-supplied standup date is not an ISO calendar date.
type InvalidDateError struct {
	Value string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid standup date '%s': expected YYYY-MM-DD", e.Value)
}

func (e *InvalidDateError) Unwrap() error {
	return e.Err
}

// IsUnknownAgent returns true if err is or wraps an UnknownAgentError.
func IsUnknownAgent(err error) bool {
	var target *UnknownAgentError
	return errors.As(err, &target)
}

// IsTicketNotFound returns true if err is or wraps a TicketNotFoundError.
func IsTicketNotFound(err error) bool {
	var target *TicketNotFoundError
	return errors.As(err, &target)
}

// IsInvalidDate returns true if err is or wraps an InvalidDateError.
func IsInvalidDate(err error) bool {
	var target *InvalidDateError
	return errors.As(err, &target)
}
