/*
errors.go - Centralized error kinds for the inventory engine

PURPOSE:
  All failure kinds in one place. Every operation returns one of these
  (possibly wrapped); the storage layer maps SQLite constraint failures
  onto them so raw engine text never reaches a caller.

ERROR CATEGORIES:
  1. Lookup errors     - referenced row missing
  2. Validation errors - malformed input, bad quantities/prices
  3. Constraint errors - duplicate keys, blocked deletions
  4. Storage errors    - unexpected persistence failures

USAGE:
  if errors.Is(err, inventory.ErrInvalidQuantity) { ... }

  var qe *inventory.QuantityError
  if errors.As(err, &qe) { ... qe.Requested ... }

SEE ALSO:
  - ledger.go: produces validation errors
  - store/sqlite: maps driver errors onto these kinds
*/
package inventory

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced entity or row is missing.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for malformed or missing required fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidQuantity is returned for non-positive quantities or
	// withdrawals exceeding the stock on hand.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidPrice is returned for negative or non-numeric prices.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrDuplicateKey is returned on a primary-key collision.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrForeignKeyViolation is returned when a deletion is blocked by
	// dependent rows, or an insert references a missing parent.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrUnknownEntity is returned for an unrecognized entity name.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrPersistence is returned for unexpected storage failures.
	ErrPersistence = errors.New("persistence failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError reports which row was missing.
type NotFoundError struct {
	Entity Entity
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// QuantityError reports an over-withdrawal or non-positive quantity.
type QuantityError struct {
	ProductID int64
	Available int64
	Requested int64
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("invalid quantity for product %d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *QuantityError) Unwrap() error { return ErrInvalidQuantity }

// PriceError reports a missing, negative or unparsable unit price.
type PriceError struct {
	ArticleCode string
	Raw         string
}

func (e *PriceError) Error() string {
	return fmt.Sprintf("invalid price %q for article %q", e.Raw, e.ArticleCode)
}

func (e *PriceError) Unwrap() error { return ErrInvalidPrice }

// UnknownEntityError reports the rejected entity name.
type UnknownEntityError struct {
	Name string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown entity %q", e.Name)
}

func (e *UnknownEntityError) Unwrap() error { return ErrUnknownEntity }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrUnknownEntity)
}

// IsConflict returns true if the error is a constraint conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrForeignKeyViolation)
}

// IsNotFound returns true if the error indicates a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
