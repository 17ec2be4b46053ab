package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// WalletNumberPrefix starts every wallet number.
	WalletNumberPrefix = "WLT"
	// WalletNumberDigits is the count of random digits between prefix and currency code.
	WalletNumberDigits = 10
	// CurrencyCodeLength is the fixed length of an ISO-style currency code.
	CurrencyCodeLength = 3
)

// WalletNumberLength is the total length of a well-formed wallet number.
const WalletNumberLength = len(WalletNumberPrefix) + WalletNumberDigits + CurrencyCodeLength

// Wallet represents a user's wallet in a single currency.
// The wallet number ("WLT" + 10 digits + currency code) is globally unique
// and never reused; the currency is immutable after creation.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	Number    string          `json:"number"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CanDebit reports whether the wallet holds enough balance to send amount.
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}
