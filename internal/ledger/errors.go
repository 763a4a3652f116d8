package ledger

import "errors"

var (
	// ErrAccountNotFound is returned for ids outside the configured set, or
	// for an in-range id with no account row behind it.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidAmount is returned for a non-positive amount.
	ErrInvalidAmount = errors.New("amount must be a positive integer")

	// ErrInvalidKind is returned for anything other than credit/debit.
	ErrInvalidKind = errors.New("kind must be credit or debit")

	// ErrInvalidDescription is returned for a description outside 1..10 characters.
	ErrInvalidDescription = errors.New("description must be 1 to 10 characters")

	// ErrOverdraftRejected is returned when a debit would push the balance
	// below -limit. Nothing is written.
	ErrOverdraftRejected = errors.New("debit would exceed overdraft limit")

	// ErrNoHistory is returned by Extract for a valid account with zero
	// transactions, when the empty-as-error policy is on.
	ErrNoHistory = errors.New("account has no transactions")

	// ErrStorageUnavailable wraps connection/pool/transport failures. The
	// operation had no effect and is safe to retry, with the caveat that a
	// retried apply whose first attempt actually committed will double-apply.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
