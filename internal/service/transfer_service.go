package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// maxTransferAttempts bounds the retry loop around lock conflicts before
// the transfer surfaces as a transient failure.
const maxTransferAttempts = 3

// TransferServiceImpl implements ports.TransferService — the ledger core.
//
// A transfer is one atomic unit: the sender debit, the receiver credit
// and the transfer log either all land or none do. Both wallet rows are
// locked FOR UPDATE in ascending wallet-number order so concurrent
// transfers over the same wallets serialize without deadlocking, while
// transfers over disjoint wallet pairs never block each other.
//
// Sender policy: the sender is debited by the sent amount (conventional
// ledger semantics), identically for same-currency and cross-currency
// transfers.
type TransferServiceImpl struct {
	walletRepo ports.WalletRepository
	logRepo    ports.TransferLogRepository
	converter  ports.CurrencyConverter
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewTransferService creates a new TransferServiceImpl.
func NewTransferService(
	walletRepo ports.WalletRepository,
	logRepo ports.TransferLogRepository,
	converter ports.CurrencyConverter,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		walletRepo: walletRepo,
		logRepo:    logRepo,
		converter:  converter,
		transactor: transactor,
		log:        log,
	}
}

// Transfer moves req.Amount from the sender wallet to the receiver
// wallet, converting into the receiver's currency, and returns the
// persisted log record. Insufficient funds is a normal negative result:
// no balances change and no log is written.
//
// The boundary validates wallet existence and amount format before
// calling here; the ledger still fails closed if those invariants are
// violated.
func (s *TransferServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.TransferLog, error) {
	if req.SenderNumber == req.ReceiverNumber {
		return nil, apperror.Validation("sender and receiver wallets must differ")
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount("transfer amount must be positive")
	}
	if !domain.HasAtMostTwoDecimals(req.Amount) {
		return nil, apperror.ErrInvalidAmount("transfer amount must have at most 2 decimal places")
	}

	var lastErr error
	for attempt := 1; attempt <= maxTransferAttempts; attempt++ {
		entry, err := s.attempt(ctx, req)
		if err == nil {
			return entry, nil
		}
		if !retryableConflict(err) {
			return nil, err
		}
		lastErr = err
		s.log.Warn().
			Err(err).
			Int("attempt", attempt).
			Str("sender", req.SenderNumber).
			Str("receiver", req.ReceiverNumber).
			Msg("transfer hit a lock conflict, retrying")
	}
	return nil, apperror.ErrConcurrentConflict(lastErr)
}

// attempt runs one full transfer inside a single database transaction.
func (s *TransferServiceImpl) attempt(ctx context.Context, req ports.TransferRequest) (*domain.TransferLog, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock both rows in ascending wallet-number order.
	first, second := req.SenderNumber, req.ReceiverNumber
	if second < first {
		first, second = second, first
	}

	firstWallet, err := s.walletRepo.GetByNumberForUpdate(ctx, dbTx, first)
	if err != nil {
		return nil, fmt.Errorf("lock wallet %s: %w", first, err)
	}
	secondWallet, err := s.walletRepo.GetByNumberForUpdate(ctx, dbTx, second)
	if err != nil {
		return nil, fmt.Errorf("lock wallet %s: %w", second, err)
	}

	sender, receiver := firstWallet, secondWallet
	if first != req.SenderNumber {
		sender, receiver = secondWallet, firstWallet
	}
	if sender == nil {
		return nil, apperror.ErrNotFound("sender wallet")
	}
	if receiver == nil {
		return nil, apperror.ErrNotFound("receiver wallet")
	}

	// The only expected rejection inside the core.
	if !sender.CanDebit(req.Amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	// Debit the sender in the sender's currency.
	if err := s.walletRepo.AdjustBalance(ctx, dbTx, sender.Number, req.Amount.Neg()); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit sender: %w", err))
	}

	// Convert into the receiver's currency. A conversion failure aborts
	// the transaction, rolling the debit back.
	moneyReceived, err := s.converter.Convert(ctx, req.Amount, sender.Currency, receiver.Currency)
	if err != nil {
		return nil, err
	}

	if err := s.walletRepo.AdjustBalance(ctx, dbTx, receiver.Number, moneyReceived); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit receiver: %w", err))
	}

	entry := &domain.TransferLog{
		TransferID:       uuid.New(),
		Sender:           sender.Number,
		Receiver:         receiver.Number,
		CurrencySent:     sender.Currency,
		CurrencyReceived: receiver.Currency,
		MoneySent:        req.Amount,
		MoneyReceived:    moneyReceived,
		PaidOn:           time.Now().UTC(),
	}

	if err := s.logRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transfer log: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transfer: %w", err)
	}

	s.log.Info().
		Str("transfer_id", entry.TransferID.String()).
		Str("sender", entry.Sender).
		Str("receiver", entry.Receiver).
		Str("money_sent", entry.MoneySent.StringFixed(2)).
		Str("money_received", entry.MoneyReceived.StringFixed(2)).
		Msg("transfer committed")

	return entry, nil
}

// retryableConflict reports whether err is a lock or serialization
// conflict worth another attempt.
func retryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", // serialization_failure
		"40P01", // deadlock_detected
		"55P03": // lock_not_available
		return true
	}
	return false
}
