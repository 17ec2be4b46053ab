package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateProvider fetches the full currency-code -> rate-to-reference-unit
// table from the external exchange rate feed.
type RateProvider interface {
	FetchRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// RateCache serves rates relative to the reference unit. The table is
// fetched at most once per process lifetime and reused until restart, so
// callers must expect rates to go stale indefinitely.
type RateCache interface {
	// GetRate returns the rate for currency relative to the reference unit.
	GetRate(ctx context.Context, currency string) (decimal.Decimal, error)
	// HasCurrency reports whether currency appears in the rate table.
	HasCurrency(ctx context.Context, currency string) (bool, error)
}

// CurrencyConverter converts amounts between currencies using memoized
// per-ordered-pair rates derived from the rate cache.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// --- Service Ports (Business Logic) ---

// TransferRequest holds validated input for a wallet-to-wallet transfer.
type TransferRequest struct {
	SenderNumber   string
	ReceiverNumber string
	Amount         decimal.Decimal
}

// TransferService is the transfer/ledger core: funds check, currency
// conversion, both balance mutations and the immutable log record, all
// within one transactional scope.
type TransferService interface {
	Transfer(ctx context.Context, req TransferRequest) (*domain.TransferLog, error)
}

// WalletService defines wallet lifecycle and balance operations.
type WalletService interface {
	CreateWallet(ctx context.Context, ownerID uuid.UUID, currency string) (*domain.Wallet, error)
	// TopUp credits amount to the owner's wallet and returns the new balance.
	TopUp(ctx context.Context, ownerID uuid.UUID, walletNumber string, amount decimal.Decimal) (decimal.Decimal, error)
	BalancesForOwner(ctx context.Context, ownerID uuid.UUID) (map[string]decimal.Decimal, error)
	GetByNumber(ctx context.Context, number string) (*domain.Wallet, error)
}

// LogQuery holds validated filters for transfer history retrieval.
type LogQuery struct {
	WalletNumber string
	Operations   []domain.OperationType
	DateFrom     time.Time
	DateTo       time.Time
	Limit        int
}

// HistoryService provides read-only, filtered, newest-first retrieval of
// transfer logs for a wallet. It never writes.
type HistoryService interface {
	Logs(ctx context.Context, q LogQuery) ([]domain.TransferLog, error)
}

// CreateUserRequest holds validated input for user registration.
type CreateUserRequest struct {
	Name    string
	Surname string
	Email   string
}

// UserService defines user lifecycle operations.
type UserService interface {
	Create(ctx context.Context, req CreateUserRequest) (*domain.User, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
