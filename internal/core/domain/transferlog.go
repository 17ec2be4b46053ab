package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationType classifies a transfer log relative to a given wallet.
type OperationType string

const (
	// OperationIn selects logs where the wallet is the receiver.
	OperationIn OperationType = "in"
	// OperationOut selects logs where the wallet is the sender.
	OperationOut OperationType = "out"
)

// Valid reports whether t is one of the known operation types.
func (t OperationType) Valid() bool {
	return t == OperationIn || t == OperationOut
}

// TransferLog is an immutable, append-only record of one completed money
// movement between two wallets. Wallets are referenced by number value,
// not by foreign key, so logs outlive wallet deletion.
type TransferLog struct {
	TransferID       uuid.UUID       `json:"transfer_id"`
	Sender           string          `json:"sender"`
	Receiver         string          `json:"receiver"`
	CurrencySent     string          `json:"currency_sent"`
	CurrencyReceived string          `json:"currency_received"`
	MoneySent        decimal.Decimal `json:"money_sent"`
	MoneyReceived    decimal.Decimal `json:"money_received"`
	PaidOn           time.Time       `json:"paid_on"`
}

// DirectionFor returns the operation type of this log from the point of
// view of walletNumber, or "" if the wallet took no part in the transfer.
func (l *TransferLog) DirectionFor(walletNumber string) OperationType {
	switch walletNumber {
	case l.Sender:
		return OperationOut
	case l.Receiver:
		return OperationIn
	default:
		return ""
	}
}
