package cashier

import (
	"errors"
	"fmt"
	"strings"
)

// Domain-level error values returned by the cashier service.
var (
	ErrSessionAlreadyOpen     = errors.New("session already open")
	ErrNoActiveSession        = errors.New("no active session")
	ErrSessionClosed          = errors.New("session closed")
	ErrSessionNotClosed       = errors.New("session not closed")
	ErrUnknownSession         = errors.New("unknown session")
	ErrInsufficientChips      = errors.New("insufficient chips")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrCreditLimitExceeded    = errors.New("credit limit exceeded")
	ErrCreditExceedsReturn    = errors.New("outstanding credit exceeds returned chips")
	ErrChipBreakdownMismatch  = errors.New("chip breakdown mismatch")
	ErrPendingCreditRequests  = errors.New("pending credit requests")
	ErrInventoryAlreadySet    = errors.New("chip inventory already set")
	ErrInventoryLocked        = errors.New("chip inventory locked by recorded transactions")
	ErrSummaryExists          = errors.New("session summary already exists")
	ErrUnknownSummary         = errors.New("unknown session summary")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidChipBreakdown   = errors.New("invalid chip breakdown")
	ErrInvalidPlayerID        = errors.New("invalid player id")
	ErrInvalidSessionID       = errors.New("invalid session id")
	ErrInvalidSessionDate     = errors.New("invalid session date")
	ErrInvalidActor           = errors.New("invalid actor")
	ErrInvalidWallet          = errors.New("invalid wallet")
	ErrInvalidPaymentMode     = errors.New("invalid payment mode")
	ErrInvalidOwnerFloat      = errors.New("invalid owner float")
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")
	ErrInvalidServiceConfig   = errors.New("invalid service config")
)

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}

// InsufficientChipsError reports every denomination short on a give.
type InsufficientChipsError struct {
	Shortages []ChipShortage
}

// Error lists all short denominations, not just the first.
func (chipError InsufficientChipsError) Error() string {
	parts := make([]string, 0, len(chipError.Shortages))
	for _, shortage := range chipError.Shortages {
		parts = append(parts, fmt.Sprintf("%d: need %d have %d", shortage.Denomination, shortage.Requested, shortage.Available))
	}
	return fmt.Sprintf("%v (%s)", ErrInsufficientChips, strings.Join(parts, ", "))
}

// Is matches the ErrInsufficientChips sentinel.
func (chipError InsufficientChipsError) Is(target error) bool {
	return target == ErrInsufficientChips
}

// InsufficientFundsError reports the per-wallet shortfall on a debit.
type InsufficientFundsError struct {
	Requested          Amount
	SecondaryAvailable Amount
	PrimaryAvailable   Amount
}

// Error reports required versus available for both wallets.
func (fundsError InsufficientFundsError) Error() string {
	return fmt.Sprintf("%v: need %d, secondary has %d, primary has %d",
		ErrInsufficientFunds, fundsError.Requested, fundsError.SecondaryAvailable, fundsError.PrimaryAvailable)
}

// Is matches the ErrInsufficientFunds sentinel.
func (fundsError InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// CreditShortfallError reports a cash-out whose returned chips do not
// cover the player's outstanding credit.
type CreditShortfallError struct {
	Outstanding Amount
	Returned    Amount
}

// Error reports the shortfall the player must cover before leaving.
func (creditError CreditShortfallError) Error() string {
	return fmt.Sprintf("%v: outstanding %d, returned %d, short %d",
		ErrCreditExceedsReturn, creditError.Outstanding, creditError.Returned, creditError.Outstanding-creditError.Returned)
}

// Is matches the ErrCreditExceedsReturn sentinel.
func (creditError CreditShortfallError) Is(target error) bool {
	return target == ErrCreditExceedsReturn
}

// BreakdownMismatchError reports a declared amount that does not equal
// the face value of the accompanying chip breakdown.
type BreakdownMismatchError struct {
	Declared  Amount
	ChipValue Amount
}

// Error reports both sides of the mismatch.
func (mismatchError BreakdownMismatchError) Error() string {
	return fmt.Sprintf("%v: declared %d, chips are worth %d", ErrChipBreakdownMismatch, mismatchError.Declared, mismatchError.ChipValue)
}

// Is matches the ErrChipBreakdownMismatch sentinel.
func (mismatchError BreakdownMismatchError) Is(target error) bool {
	return target == ErrChipBreakdownMismatch
}
