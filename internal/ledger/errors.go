// Package ledger holds the error taxonomy shared by the catalog, stock,
// sales and deletion packages. Every operation that fails with one of these
// leaves state untouched; handlers map them to HTTP statuses at the boundary.
package ledger

import "errors"

var (
	// Lookup failures: recomputation is skipped, derived fields stay unset.
	ErrProductNotFound = errors.New("ledger: product not found")
	ErrTierNotFound    = errors.New("ledger: price tier not found")
	ErrRecordNotFound  = errors.New("ledger: record not found")

	// Allocation requested more than the eligible batches hold.
	// No batch is mutated.
	ErrInsufficientStock = errors.New("ledger: insufficient stock")

	// The write carried a stale version; another session saved first.
	ErrConcurrentModification = errors.New("ledger: concurrent modification")

	// The row already has an unresolved deletion request.
	ErrPendingDeletion = errors.New("ledger: deletion already pending")

	// Malformed input, rejected before any mutation.
	ErrValidation = errors.New("ledger: invalid input")

	// Operation reserved for privileged actors.
	ErrForbidden = errors.New("ledger: forbidden")

	// Reserved attribute names cannot be used as tier names.
	ErrReservedTierName = errors.New("ledger: reserved tier name")
)
