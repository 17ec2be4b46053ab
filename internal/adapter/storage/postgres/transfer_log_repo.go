package postgres

import (
	"context"
	"fmt"
	"strconv"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransferLogRepo implements ports.TransferLogRepository.
// The transfer_logs table is append-only: the ledger never updates or
// deletes a row, and wallets are referenced by number value so records
// survive wallet deletion.
type TransferLogRepo struct {
	pool Pool
}

// NewTransferLogRepo creates a new TransferLogRepo.
func NewTransferLogRepo(pool Pool) *TransferLogRepo {
	return &TransferLogRepo{pool: pool}
}

// Create appends a transfer log within the transfer's database transaction.
func (r *TransferLogRepo) Create(ctx context.Context, tx pgx.Tx, l *domain.TransferLog) error {
	query := `INSERT INTO transfer_logs
		(transfer_id, sender, receiver, currency_sent, currency_received, money_sent, money_received, paid_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		l.TransferID, l.Sender, l.Receiver, l.CurrencySent, l.CurrencyReceived,
		l.MoneySent.StringFixed(2), l.MoneyReceived.StringFixed(2), l.PaidOn,
	)
	if err != nil {
		return fmt.Errorf("insert transfer log: %w", err)
	}
	return nil
}

// List returns logs for the wallet matching the operation-type filter,
// with paid_on strictly between DateFrom and DateTo, newest first.
// An empty effective operation filter returns an empty result.
func (r *TransferLogRepo) List(ctx context.Context, params ports.TransferLogListParams) ([]domain.TransferLog, error) {
	var asReceiver, asSender bool
	for _, op := range params.Operations {
		switch op {
		case domain.OperationIn:
			asReceiver = true
		case domain.OperationOut:
			asSender = true
		}
	}
	if !asReceiver && !asSender {
		return []domain.TransferLog{}, nil
	}

	query := `SELECT transfer_id, sender, receiver, currency_sent, currency_received,
		money_sent::text, money_received::text, paid_on
		FROM transfer_logs
		WHERE paid_on > $1 AND paid_on < $2 AND `
	args := []interface{}{params.DateFrom, params.DateTo, params.WalletNumber}

	switch {
	case asSender && asReceiver:
		query += `(sender = $3 OR receiver = $3)`
	case asSender:
		query += `sender = $3`
	default:
		query += `receiver = $3`
	}

	query += ` ORDER BY paid_on DESC`
	if params.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1)
		args = append(args, params.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfer logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.TransferLog{}
	for rows.Next() {
		var l domain.TransferLog
		var sent, received string
		err := rows.Scan(
			&l.TransferID, &l.Sender, &l.Receiver, &l.CurrencySent, &l.CurrencyReceived,
			&sent, &received, &l.PaidOn,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transfer log: %w", err)
		}
		if l.MoneySent, err = decimal.NewFromString(sent); err != nil {
			return nil, fmt.Errorf("parse money sent: %w", err)
		}
		if l.MoneyReceived, err = decimal.NewFromString(received); err != nil {
			return nil, fmt.Errorf("parse money received: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer logs: %w", err)
	}
	return logs, nil
}
