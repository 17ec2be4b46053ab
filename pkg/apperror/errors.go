package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match two AppErrors by code, so callers can compare
// against the constructor values without caring about wrapped causes.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Transfer Ledger (XFER) ----

// ErrInsufficientFunds is the expected business rejection: no balances
// change and no log record is written.
func ErrInsufficientFunds() *AppError {
	return New("XFER_001", "Insufficient funds in the wallet", http.StatusUnprocessableEntity)
}

// ErrConcurrentConflict surfaces after the bounded lock/retry budget is
// exhausted.
func ErrConcurrentConflict(err error) *AppError {
	return Wrap("XFER_002", "Transfer conflicted with a concurrent update", http.StatusConflict, err)
}

func ErrInvalidAmount(message string) *AppError {
	return New("XFER_003", message, http.StatusBadRequest)
}

// ---- Exchange Rates (RATE) ----

func ErrUnknownCurrency(currency string) *AppError {
	return New("RATE_001", fmt.Sprintf("Unknown currency %q", currency), http.StatusNotAcceptable)
}

func ErrProviderUnavailable(err error) *AppError {
	return Wrap("RATE_002", "Exchange rate provider unavailable", http.StatusServiceUnavailable, err)
}

// ---- Wallets & Users (WAL) ----

func ErrNotFound(entity string) *AppError {
	return New("WAL_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrDuplicateCurrencyWallet(currency string) *AppError {
	return New("WAL_002", fmt.Sprintf("User already holds a %s wallet", currency), http.StatusBadRequest)
}

func ErrInvalidCurrencyFormat() *AppError {
	return New("WAL_003", "Currency must be a 3-letter code", http.StatusBadRequest)
}

func ErrEmailExists() *AppError {
	return New("WAL_004", "Email already registered", http.StatusConflict)
}

func ErrInvalidOperationTypes() *AppError {
	return New("WAL_005", "Invalid operation types", http.StatusExpectationFailed)
}

func ErrInvalidDateTime(value string) *AppError {
	return New("WAL_006", fmt.Sprintf("Time data %q does not match format '2006-01-02 15:04:05'", value), http.StatusExpectationFailed)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic bad-request validation error.
func Validation(message string) *AppError {
	return New("XFER_003", message, http.StatusBadRequest)
}
