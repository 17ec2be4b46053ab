package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// WalletHandler handles wallet endpoints nested under a user.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// Create handles POST /api/v1/users/:id/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	ownerID, err := parseUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrInvalidCurrencyFormat())
		return
	}
	dto.SanitizeStruct(&req)

	wallet, err := h.walletSvc.CreateWallet(c.Request.Context(), ownerID, req.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.WalletResponse{
		Number:   wallet.Number,
		Currency: wallet.Currency,
		Balance:  wallet.Balance.StringFixed(2),
	})
}

// Balances handles GET /api/v1/users/:id/wallets.
func (h *WalletHandler) Balances(c *gin.Context) {
	ownerID, err := parseUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	balances, err := h.walletSvc.BalancesForOwner(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make(map[string]string, len(balances))
	for number, balance := range balances {
		out[number] = balance.StringFixed(2)
	}
	response.OK(c, dto.BalancesResponse{Wallets: out})
}

// TopUp handles POST /api/v1/users/:id/wallets/:number/top-up.
func (h *WalletHandler) TopUp(c *gin.Context) {
	ownerID, err := parseUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	number := c.Param("number")

	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrInvalidAmount("amount must be a positive decimal with at most 2 decimal places"))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount("amount must be a decimal number"))
		return
	}

	balance, err := h.walletSvc.TopUp(c.Request.Context(), ownerID, number, amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.TopUpResponse{
		Number:  number,
		Balance: balance.StringFixed(2),
	})
}
