package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
// Balances are stored as NUMERIC(18,2) and moved over the wire as text so
// no floating point ever touches a stored amount.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, number, owner_id, currency, balance::text, is_active, created_at, updated_at`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	var balance string
	err := row.Scan(
		&w.ID, &w.Number, &w.OwnerID, &w.Currency,
		&balance, &w.IsActive, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	w.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse wallet balance: %w", err)
	}
	return w, nil
}

// Create inserts a new wallet into the database.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, number, owner_id, currency, balance, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.Number, w.OwnerID, w.Currency,
		w.Balance.StringFixed(2), w.IsActive, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByNumber fetches a wallet by its number (without locking).
func (r *WalletRepo) GetByNumber(ctx context.Context, number string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE number = $1`

	w, err := scanWallet(r.pool.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by number: %w", err)
	}
	return w, nil
}

// GetByNumberForUpdate fetches a wallet by number with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, number string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE number = $1 FOR UPDATE`

	w, err := scanWallet(tx.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// NumberExists reports whether a wallet number is already taken.
// Numbers are never reused, so deleted wallets keep blocking their number.
func (r *WalletRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM wallets WHERE number = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("check wallet number: %w", err)
	}
	return exists, nil
}

// BalancesForOwner returns a wallet-number -> balance mapping for the
// owner. An owner with no wallets yields an empty map, not an error.
func (r *WalletRepo) BalancesForOwner(ctx context.Context, ownerID uuid.UUID) (map[string]decimal.Decimal, error) {
	query := `SELECT number, balance::text FROM wallets WHERE owner_id = $1`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list balances for owner: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]decimal.Decimal)
	for rows.Next() {
		var number, balance string
		if err := rows.Scan(&number, &balance); err != nil {
			return nil, fmt.Errorf("scan wallet balance: %w", err)
		}
		b, err := decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("parse wallet balance: %w", err)
		}
		balances[number] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet balances: %w", err)
	}
	return balances, nil
}

// CurrenciesForOwner returns the currency codes the owner already holds.
func (r *WalletRepo) CurrenciesForOwner(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	query := `SELECT currency FROM wallets WHERE owner_id = $1`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list currencies for owner: %w", err)
	}
	defer rows.Close()

	var currencies []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate currencies: %w", err)
	}
	return currencies, nil
}

// AdjustBalance atomically applies balance += delta to one wallet row
// within a transaction. It does not validate sufficiency — that is the
// transfer ledger's job before any mutation.
func (r *WalletRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, number string, delta decimal.Decimal) error {
	query := `UPDATE wallets SET balance = round(balance + $1::numeric, 2), updated_at = NOW() WHERE number = $2`

	tag, err := tx.Exec(ctx, query, delta.StringFixed(2), number)
	if err != nil {
		return fmt.Errorf("adjust wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", number)
	}
	return nil
}
