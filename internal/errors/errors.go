// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrDataUnavailable marks upstream price or option data that is
	// missing, empty or malformed. Recovered locally by falling back to
	// synthetic data; never surfaced to scoring or selection.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrInsufficientHistory marks a price series shorter than a rolling
	// window needs. Recovered via partial windows or the cautious default.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrNoCandidate marks a chain from which no valid 4-leg condor can be
	// constructed. A normal, expected outcome, not a failure.
	ErrNoCandidate = errors.New("no valid candidate")

	ErrExpirationNotFound = fmt.Errorf("%w: expiration not in chain", ErrNoCandidate)
	ErrNoShortStrike      = fmt.Errorf("%w: no out-of-the-money strikes", ErrNoCandidate)
	ErrNoProtectiveStrike = fmt.Errorf("%w: no further strike for long leg", ErrNoCandidate)

	// Ledger rejections. Portfolio state is unchanged when these are returned.
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPositionNotFound  = errors.New("position not found")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")

	ErrDatabaseError = errors.New("database error")
	ErrConfigInvalid = errors.New("invalid configuration")
)

// LedgerError carries a human-readable rejection reason for a ledger
// operation along with the sentinel it wraps.
type LedgerError struct {
	Op     string // "open", "close"
	Reason string
	Err    error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s rejected: %s", e.Op, e.Reason)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// NewLedgerError creates a new LedgerError.
func NewLedgerError(op, reason string, err error) *LedgerError {
	return &LedgerError{Op: op, Reason: reason, Err: err}
}

// DataError represents a data-related error.
type DataError struct {
	DataType string
	Symbol   string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.DataType, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.DataType, e.Symbol, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(dataType, symbol, message string, err error) *DataError {
	return &DataError{DataType: dataType, Symbol: symbol, Message: message, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
