package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	rateCache  ports.RateCache
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	rateCache ports.RateCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		rateCache:  rateCache,
		transactor: transactor,
		log:        log,
	}
}

// CreateWallet opens a wallet for the owner in the given currency.
// One wallet per (owner, currency); the currency must exist in the rate
// table or transfers from the wallet could never convert.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, ownerID uuid.UUID, currency string) (*domain.Wallet, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != domain.CurrencyCodeLength {
		return nil, apperror.ErrInvalidCurrencyFormat()
	}

	known, err := s.rateCache.HasCurrency(ctx, currency)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, apperror.ErrUnknownCurrency(currency)
	}

	held, err := s.walletRepo.CurrenciesForOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list owner currencies: %w", err))
	}
	for _, c := range held {
		if c == currency {
			return nil, apperror.ErrDuplicateCurrencyWallet(currency)
		}
	}

	number, err := s.generateNumber(ctx, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate wallet number: %w", err))
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:        uuid.New(),
		Number:    number,
		OwnerID:   ownerID,
		Currency:  currency,
		Balance:   decimal.Zero,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("wallet_number", wallet.Number).
		Str("owner_id", ownerID.String()).
		Str("currency", currency).
		Msg("wallet created")

	return wallet, nil
}

// generateNumber draws random wallet numbers until one is free. The
// number space (10^10 per currency) makes a second draw already rare.
func (s *WalletServiceImpl) generateNumber(ctx context.Context, currency string) (string, error) {
	for {
		number := domain.WalletNumberPrefix + randomDigits(domain.WalletNumberDigits) + currency
		taken, err := s.walletRepo.NumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
}

func randomDigits(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}

// TopUp credits amount to the owner's wallet and returns the new balance.
// The adjustment runs inside a transaction with the row locked so
// concurrent top-ups and transfers never lose an update.
func (s *WalletServiceImpl) TopUp(ctx context.Context, ownerID uuid.UUID, walletNumber string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Decimal{}, apperror.ErrInvalidAmount("top-up amount must be positive")
	}
	if !domain.HasAtMostTwoDecimals(amount) {
		return decimal.Decimal{}, apperror.ErrInvalidAmount("top-up amount must have at most 2 decimal places")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return decimal.Decimal{}, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByNumberForUpdate(ctx, dbTx, walletNumber)
	if err != nil {
		return decimal.Decimal{}, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil || wallet.OwnerID != ownerID {
		return decimal.Decimal{}, apperror.ErrNotFound("wallet")
	}

	if err := s.walletRepo.AdjustBalance(ctx, dbTx, walletNumber, amount); err != nil {
		return decimal.Decimal{}, apperror.InternalError(fmt.Errorf("adjust balance: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return decimal.Decimal{}, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	newBalance := domain.RoundMoney(wallet.Balance.Add(amount))

	s.log.Info().
		Str("wallet_number", walletNumber).
		Str("amount", amount.StringFixed(2)).
		Str("balance", newBalance.StringFixed(2)).
		Msg("wallet topped up")

	return newBalance, nil
}

// BalancesForOwner returns wallet-number -> balance for the owner.
// An owner with no wallets gets an empty map.
func (s *WalletServiceImpl) BalancesForOwner(ctx context.Context, ownerID uuid.UUID) (map[string]decimal.Decimal, error) {
	balances, err := s.walletRepo.BalancesForOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list balances: %w", err))
	}
	return balances, nil
}

// GetByNumber fetches a wallet by number.
func (s *WalletServiceImpl) GetByNumber(ctx context.Context, number string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	return wallet, nil
}
