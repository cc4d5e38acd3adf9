package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	AccountNotFound   ErrorCode = "account_not_found"
	InsufficientFunds ErrorCode = "insufficient_funds"
	InvalidAmount     ErrorCode = "invalid_amount"
	SelfTransfer      ErrorCode = "self_transfer"
	IOError           ErrorCode = "io_error"
	DecodeError       ErrorCode = "decode_error"
	InvalidInput      ErrorCode = "invalid_input"
	InternalError     ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, typically an *os.PathError or *pq.Error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *AppError with the same code, so callers can
// match against the sentinels below regardless of message or details.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// HTTPStatus maps the error code onto the response status used by the handlers.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case AccountNotFound:
		return http.StatusNotFound
	case InsufficientFunds:
		return http.StatusUnprocessableEntity
	case InvalidAmount, SelfTransfer, InvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is. Never return these directly; use the constructors so
// each failure carries its own account id and amount.
var (
	ErrAccountNotFound   = NewAppError(AccountNotFound, "account not found")
	ErrInsufficientFunds = NewAppError(InsufficientFunds, "insufficient funds")
	ErrInvalidAmount     = NewAppError(InvalidAmount, "amount must be greater than zero")
	ErrSelfTransfer      = NewAppError(SelfTransfer, "sender and receiver must differ")
	ErrIO                = NewAppError(IOError, "storage failure")
	ErrDecode            = NewAppError(DecodeError, "stored data is corrupt")
	ErrInvalidInput      = NewAppError(InvalidInput, "invalid input")
)

func NewAccountNotFound(id int64) *AppError {
	return NewAppErrorf(AccountNotFound, "account %d not found", id)
}

func NewInsufficientFunds(id int64, balance, amount fmt.Stringer) *AppError {
	return NewAppErrorf(InsufficientFunds, "account %d has balance %s, cannot debit %s", id, balance, amount)
}

func NewInvalidAmount(amount fmt.Stringer) *AppError {
	return NewAppErrorf(InvalidAmount, "amount %s must be greater than zero", amount)
}

func NewSelfTransfer(id int64) *AppError {
	return NewAppErrorf(SelfTransfer, "account %d cannot transfer to itself", id)
}

func NewIOError(op string, err error) *AppError {
	return NewAppErrorf(IOError, "failed to %s", op).WithCause(err)
}

func NewDecodeError(reason string, err error) *AppError {
	return NewAppError(DecodeError, reason).WithCause(err)
}

// AsAppError returns err as an *AppError, wrapping anything else as an internal error.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewAppError(InternalError, "an unexpected error occurred").WithCause(err)
}
