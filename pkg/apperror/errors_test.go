package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("XFER_001", "Insufficient funds in the wallet", http.StatusUnprocessableEntity),
			expected: "[XFER_001] Insufficient funds in the wallet",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("XFER_003", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	// Wrapped causes must not break code comparison.
	wrapped := ErrConcurrentConflict(fmt.Errorf("deadlock detected"))
	assert.True(t, errors.Is(wrapped, ErrConcurrentConflict(nil)))
	assert.False(t, errors.Is(wrapped, ErrInsufficientFunds()))
}

func TestTransferErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InsufficientFunds", ErrInsufficientFunds(), "XFER_001", 422},
		{"ConcurrentConflict", ErrConcurrentConflict(fmt.Errorf("lock timeout")), "XFER_002", 409},
		{"InvalidAmount", ErrInvalidAmount("amount must be positive"), "XFER_003", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestRateErrors(t *testing.T) {
	unknown := ErrUnknownCurrency("XYZ")
	assert.Equal(t, "RATE_001", unknown.Code)
	assert.Equal(t, 406, unknown.HTTPStatus)
	assert.Contains(t, unknown.Message, "XYZ")

	inner := fmt.Errorf("dial tcp: connection refused")
	unavailable := ErrProviderUnavailable(inner)
	assert.Equal(t, "RATE_002", unavailable.Code)
	assert.Equal(t, 503, unavailable.HTTPStatus)
	assert.True(t, errors.Is(unavailable, inner))
}

func TestWalletErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"NotFound", ErrNotFound("wallet"), "WAL_001", 404},
		{"DuplicateCurrencyWallet", ErrDuplicateCurrencyWallet("USD"), "WAL_002", 400},
		{"InvalidCurrencyFormat", ErrInvalidCurrencyFormat(), "WAL_003", 400},
		{"EmailExists", ErrEmailExists(), "WAL_004", 409},
		{"InvalidOperationTypes", ErrInvalidOperationTypes(), "WAL_005", 417},
		{"InvalidDateTime", ErrInvalidDateTime("01/02/2003"), "WAL_006", 417},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	sysErr := InternalError(inner)
	assert.Equal(t, "SYS_001", sysErr.Code)
	assert.Equal(t, 500, sysErr.HTTPStatus)
	assert.True(t, errors.Is(sysErr, inner))

	valErr := Validation("limit must be a positive integer")
	assert.Equal(t, "XFER_003", valErr.Code)
	assert.Equal(t, 400, valErr.HTTPStatus)
}

func TestNotFoundEntity(t *testing.T) {
	err := ErrNotFound("user")
	assert.Contains(t, err.Message, "user")
	assert.Equal(t, "WAL_001", err.Code)
}
