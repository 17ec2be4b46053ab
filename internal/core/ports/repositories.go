package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// Delete removes the user and cascades to their wallets.
	// Transfer logs are never touched.
	Delete(ctx context.Context, id uuid.UUID) error
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for
// pessimistic locking; AdjustBalance is a non-validating mutator —
// funds sufficiency is the caller's responsibility.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByNumber(ctx context.Context, number string) (*domain.Wallet, error)
	GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, number string) (*domain.Wallet, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	BalancesForOwner(ctx context.Context, ownerID uuid.UUID) (map[string]decimal.Decimal, error)
	CurrenciesForOwner(ctx context.Context, ownerID uuid.UUID) ([]string, error)
	// AdjustBalance atomically applies balance += delta (rounded to 2dp)
	// to the wallet row identified by number.
	AdjustBalance(ctx context.Context, tx pgx.Tx, number string, delta decimal.Decimal) error
}

// TransferLogListParams holds filters for transfer history queries.
// DateFrom/DateTo bounds are strictly exclusive on both ends.
// Limit <= 0 returns the full filtered set.
type TransferLogListParams struct {
	WalletNumber string
	Operations   []domain.OperationType
	DateFrom     time.Time
	DateTo       time.Time
	Limit        int
}

// TransferLogRepository defines persistence for the append-only transfer log.
type TransferLogRepository interface {
	// Create appends a log record within the transfer's database transaction.
	Create(ctx context.Context, tx pgx.Tx, log *domain.TransferLog) error
	// List returns matching records ordered newest first.
	List(ctx context.Context, params TransferLogListParams) ([]domain.TransferLog, error)
}

// RateSnapshotStore is a best-effort shared cache of the provider's rate
// table. Get returns nil, nil on a miss.
type RateSnapshotStore interface {
	Get(ctx context.Context) (map[string]decimal.Decimal, error)
	Set(ctx context.Context, rates map[string]decimal.Decimal) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
