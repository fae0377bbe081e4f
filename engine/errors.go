/*
errors.go - Centralized error taxonomy for the advance engine

PURPOSE:
  All domain error types in one place for consistency and discoverability.
  Outer layers (HTTP handlers, workflow) map these to user-visible
  notifications and status codes; none of them is fatal to the process.

ERROR CATEGORIES:
  1. Validation errors - Bad amounts, ceiling violations
  2. Workflow errors   - Concurrency and authentication outcomes
  3. Marketplace errors - Stock exhaustion
  4. Collaborator errors - Backend reachability

USAGE:
  Callers match with errors.Is():

    if errors.Is(err, engine.ErrAmountExceedsCeiling) {
        // report to the caller, never silently clamp
    }

SEE ALSO:
  - fees.go: Returns ErrInvalidAmount
  - advance/workflow.go: Returns workflow errors
  - market/market.go: Returns ErrOutOfStock
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned for zero or negative requested amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAmountExceedsCeiling is returned when a requested advance exceeds
	// the advanceable ceiling at the moment of the check. The violation is
	// reported, never silently clamped.
	ErrAmountExceedsCeiling = errors.New("amount exceeds advanceable ceiling")

	// ErrWorkflowAlreadyActive is returned when a user starts a second
	// advance workflow while one is pending or authorizing.
	ErrWorkflowAlreadyActive = errors.New("advance workflow already active")

	// ErrOutOfStock is returned when a voucher's stock is exhausted at the
	// instant of purchase.
	ErrOutOfStock = errors.New("voucher out of stock")

	// ErrAuthCancelled is returned when the user cancels the step-up factor.
	ErrAuthCancelled = errors.New("step-up authentication cancelled")

	// ErrAuthFailed is returned when the step-up factor rejects the user.
	ErrAuthFailed = errors.New("step-up authentication failed")

	// ErrBackendUnavailable indicates the backend collaborator is
	// unreachable. Recovered locally via the fixture fallback; never
	// surfaced to the user as an error.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidStatusTransition is returned for disallowed transaction
	// status changes. Transactions are otherwise immutable.
	ErrInvalidStatusTransition = errors.New("invalid transaction status transition")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CeilingExceededError provides details about a ceiling violation.
type CeilingExceededError struct {
	UserID    UserID
	Requested Money
	Ceiling   Money
}

func (e *CeilingExceededError) Error() string {
	return fmt.Sprintf("amount exceeds ceiling: requested %s, ceiling %s",
		e.Requested, e.Ceiling)
}

func (e *CeilingExceededError) Unwrap() error {
	return ErrAmountExceedsCeiling
}

// OutOfStockError provides details about an exhausted voucher.
type OutOfStockError struct {
	VoucherID VoucherID
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("voucher %s is out of stock", e.VoucherID)
}

func (e *OutOfStockError) Unwrap() error {
	return ErrOutOfStock
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// or a business rule the caller can act on.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrAmountExceedsCeiling) ||
		errors.Is(err, ErrWorkflowAlreadyActive) ||
		errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrInvalidStatusTransition)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRecoverable returns true if the error should be absorbed by the
// fixture fallback rather than shown to the user.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}
