// Package venue holds the types shared by every component of the
// simulated trading venue: the error taxonomy and the operator
// capability token. It has no dependencies on the other packages so
// that all of them can import it.
package venue

import "errors"

// Error taxonomy. Every operation of the venue fails with exactly one
// of these, possibly wrapped with context; callers classify with
// errors.Is. None of them represent transient faults, so nothing is
// retried automatically.
var (
	// ErrInvalidRequest covers malformed or out-of-range input:
	// non-positive amounts, unknown symbols, sides or modes.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound covers unknown account or request ids.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists covers duplicate registration.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInsufficientFunds covers buy orders, withdrawal requests and
	// (when re-validation is enabled) withdrawal approvals that exceed
	// the account balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidState covers a transition attempted on a request that
	// has already been approved or rejected.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidCredentials covers failed authentication.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized covers operator-only operations invoked without
	// an operator token.
	ErrUnauthorized = errors.New("unauthorized")
)
