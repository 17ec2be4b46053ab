package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferHandler handles wallet-to-wallet transfers.
type TransferHandler struct {
	transferSvc ports.TransferService
	walletSvc   ports.WalletService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferSvc ports.TransferService, walletSvc ports.WalletService) *TransferHandler {
	return &TransferHandler{transferSvc: transferSvc, walletSvc: walletSvc}
}

// Send handles POST /api/v1/users/:id/wallets/:number/send.
// The sender wallet must belong to the user in the path; the receiver is
// any wallet in the system.
func (h *TransferHandler) Send(c *gin.Context) {
	ownerID, err := parseUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	senderNumber := c.Param("number")

	var req dto.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount("amount must be a decimal number"))
		return
	}

	if err := h.ensureOwnership(c, ownerID, senderNumber); err != nil {
		response.Error(c, err)
		return
	}

	entry, err := h.transferSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		SenderNumber:   senderNumber,
		ReceiverNumber: req.Receiver,
		Amount:         amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransferLogResponse(entry))
}

// ensureOwnership confirms the sender wallet exists and belongs to the
// path user before any locking starts.
func (h *TransferHandler) ensureOwnership(c *gin.Context, ownerID uuid.UUID, number string) error {
	wallet, err := h.walletSvc.GetByNumber(c.Request.Context(), number)
	if err != nil {
		return err
	}
	if wallet.OwnerID != ownerID {
		return apperror.ErrNotFound("wallet")
	}
	return nil
}

func toTransferLogResponse(l *domain.TransferLog) dto.TransferLogResponse {
	return dto.TransferLogResponse{
		TransferID:       l.TransferID.String(),
		Sender:           l.Sender,
		Receiver:         l.Receiver,
		CurrencySent:     l.CurrencySent,
		CurrencyReceived: l.CurrencyReceived,
		MoneySent:        l.MoneySent.StringFixed(2),
		MoneyReceived:    l.MoneyReceived.StringFixed(2),
		PaidOn:           l.PaidOn.Format(timeLayout),
	}
}
