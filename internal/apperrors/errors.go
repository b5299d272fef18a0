package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested account, transaction or instrument could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInvalidAmount indicates a non-positive monetary amount.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// ErrInsufficientFunds indicates the debited account does not hold enough to cover the amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrCurrencyMismatch indicates the accounts (or request) do not share a currency.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// ErrAccountNotActive indicates the account status does not permit the movement.
var ErrAccountNotActive = errors.New("account is not active")

// ErrInstrumentNotActive indicates the spending instrument is inactive, blocked or expired.
var ErrInstrumentNotActive = errors.New("instrument is not active")

// ErrAlreadyReversed indicates the transaction has already been reversed.
var ErrAlreadyReversed = errors.New("transaction already reversed")

// ErrNotReversible indicates the transaction type or status cannot be reversed.
var ErrNotReversible = errors.New("transaction is not reversible")

// ErrLimitExceeded indicates the payment would push the daily spend over the instrument limit.
var ErrLimitExceeded = errors.New("daily spend limit exceeded")

// ErrBusy indicates a hold could not be acquired in time. Nothing was applied; retrying is safe.
var ErrBusy = errors.New("account is busy, retry later")

// ErrConflict indicates a uniqueness violation, such as a reference number collision.
var ErrConflict = errors.New("conflict")

// ErrInvalidTransition indicates a status change not allowed by the transition table.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInternal indicates an unexpected failure in a store or the engine itself.
var ErrInternal = errors.New("internal error")

// AppError wraps an underlying cause with an error kind from this package.
// Both the kind and the cause are visible to errors.Is / errors.As.
type AppError struct {
	Kind    error
	Message string
	Err     error
}

// NewAppError creates an AppError of the given kind.
func NewAppError(kind error, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewNotFoundError returns an AppError of kind ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return NewAppError(ErrNotFound, message, nil)
}

// NewInternalError returns an AppError of kind ErrInternal.
func NewInternalError(message string, err error) *AppError {
	return NewAppError(ErrInternal, message, err)
}

// InsufficientFundsError carries the balance that was short.
type InsufficientFundsError struct {
	AccountID string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %s: available %s, requested %s",
		e.AccountID, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// LimitExceededError carries the instrument's daily window at rejection time.
type LimitExceededError struct {
	InstrumentID string
	Limit        decimal.Decimal
	SpentToday   decimal.Decimal
	Requested    decimal.Decimal
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("payment of %s would exceed daily limit %s for instrument %s (spent today %s)",
		e.Requested.StringFixed(2), e.Limit.StringFixed(2), e.InstrumentID, e.SpentToday.StringFixed(2))
}

func (e *LimitExceededError) Unwrap() error {
	return ErrLimitExceeded
}

// CurrencyMismatchError reports the two currencies that disagreed.
type CurrencyMismatchError struct {
	Expected string
	Actual   string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: cannot move %s into %s", e.Actual, e.Expected)
}

func (e *CurrencyMismatchError) Unwrap() error {
	return ErrCurrencyMismatch
}

// NotActiveError reports an account or instrument whose status blocks the operation.
// Kind is "account" or "instrument".
type NotActiveError struct {
	Kind   string
	ID     string
	Status string
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("%s %s is %s", e.Kind, e.ID, e.Status)
}

func (e *NotActiveError) Unwrap() error {
	if e.Kind == "instrument" {
		return ErrInstrumentNotActive
	}
	return ErrAccountNotActive
}

// IsRetryable returns true if the operation may succeed when repeated unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBusy) || errors.Is(err, ErrConflict)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is caused by the request or the current ledger state
// rather than by infrastructure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrCurrencyMismatch) ||
		errors.Is(err, ErrAccountNotActive) ||
		errors.Is(err, ErrInstrumentNotActive) ||
		errors.Is(err, ErrAlreadyReversed) ||
		errors.Is(err, ErrNotReversible) ||
		errors.Is(err, ErrLimitExceeded) ||
		errors.Is(err, ErrInvalidTransition)
}
