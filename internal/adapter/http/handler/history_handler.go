package handler

import (
	"strconv"
	"strings"
	"time"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// historyUpperBound is the default exclusive upper bound when the client
// supplies no date_to. Bounds are strictly exclusive, so "no bound" has
// to be a value later than any log can carry.
var historyUpperBound = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// HistoryHandler serves the transfer history of a wallet.
type HistoryHandler struct {
	historySvc ports.HistoryService
	walletSvc  ports.WalletService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historySvc ports.HistoryService, walletSvc ports.WalletService) *HistoryHandler {
	return &HistoryHandler{historySvc: historySvc, walletSvc: walletSvc}
}

// Logs handles GET /api/v1/users/:id/wallets/:number/logs.
//
// Query parameters:
//
//	operations  comma-separated "in"/"out" filter, default both
//	date_from   exclusive lower bound, "2006-01-02 15:04:05"
//	date_to     exclusive upper bound, same format
//	limit       cap on returned records, default unlimited
func (h *HistoryHandler) Logs(c *gin.Context) {
	ownerID, err := parseUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	number := c.Param("number")

	wallet, err := h.walletSvc.GetByNumber(c.Request.Context(), number)
	if err != nil {
		response.Error(c, err)
		return
	}
	if wallet.OwnerID != ownerID {
		response.Error(c, apperror.ErrNotFound("wallet"))
		return
	}

	operations, err := parseOperations(c.Query("operation_types"))
	if err != nil {
		response.Error(c, err)
		return
	}

	dateFrom, err := parseHistoryTime(c.Query("date_from"), time.Time{})
	if err != nil {
		response.Error(c, err)
		return
	}
	dateTo, err := parseHistoryTime(c.Query("date_to"), historyUpperBound)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			response.Error(c, apperror.Validation("limit must be a positive integer"))
			return
		}
	}

	logs, err := h.historySvc.Logs(c.Request.Context(), ports.LogQuery{
		WalletNumber: number,
		Operations:   operations,
		DateFrom:     dateFrom,
		DateTo:       dateTo,
		Limit:        limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.TransferLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, toTransferLogResponse(&logs[i]))
	}
	response.OK(c, out)
}

// parseOperations splits and validates the operations filter. An absent
// parameter selects both directions; an unknown value is rejected.
func parseOperations(raw string) ([]domain.OperationType, error) {
	if raw == "" {
		return []domain.OperationType{domain.OperationIn, domain.OperationOut}, nil
	}

	var ops []domain.OperationType
	for _, part := range strings.Split(raw, ",") {
		op := domain.OperationType(strings.TrimSpace(part))
		if !op.Valid() {
			return nil, apperror.ErrInvalidOperationTypes()
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func parseHistoryTime(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, apperror.ErrInvalidDateTime(raw)
	}
	return t.UTC(), nil
}
