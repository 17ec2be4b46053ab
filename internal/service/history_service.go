package service

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// HistoryServiceImpl implements ports.HistoryService: read-only filtered
// retrieval of transfer logs. It never writes.
type HistoryServiceImpl struct {
	logRepo ports.TransferLogRepository
	log     zerolog.Logger
}

// NewHistoryService creates a new HistoryServiceImpl.
func NewHistoryService(logRepo ports.TransferLogRepository, log zerolog.Logger) *HistoryServiceImpl {
	return &HistoryServiceImpl{logRepo: logRepo, log: log}
}

// Logs returns the wallet's transfer history, newest first, filtered by
// operation type and the strictly-exclusive (DateFrom, DateTo) window.
// Unknown operation types are dropped from the effective filter; an
// empty effective filter yields an empty result, matching the boundary
// contract that rejects such input before it gets here.
func (s *HistoryServiceImpl) Logs(ctx context.Context, q ports.LogQuery) ([]domain.TransferLog, error) {
	effective := make([]domain.OperationType, 0, len(q.Operations))
	for _, op := range q.Operations {
		if op.Valid() {
			effective = append(effective, op)
		}
	}

	logs, err := s.logRepo.List(ctx, ports.TransferLogListParams{
		WalletNumber: q.WalletNumber,
		Operations:   effective,
		DateFrom:     q.DateFrom,
		DateTo:       q.DateTo,
		Limit:        q.Limit,
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transfer logs: %w", err))
	}
	return logs, nil
}
