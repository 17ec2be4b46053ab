package handler

import (
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	UserSvc        ports.UserService
	WalletSvc      ports.WalletService
	TransferSvc    ports.TransferService
	HistorySvc     ports.HistoryService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	userHandler := NewUserHandler(deps.UserSvc)
	walletHandler := NewWalletHandler(deps.WalletSvc)
	transferHandler := NewTransferHandler(deps.TransferSvc, deps.WalletSvc)
	historyHandler := NewHistoryHandler(deps.HistorySvc, deps.WalletSvc)

	v1 := r.Group("/api/v1")

	users := v1.Group("/users")
	{
		users.POST("", userHandler.Create)
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.DELETE("/:id", userHandler.Delete)
	}

	wallets := v1.Group("/users/:id/wallets")
	{
		wallets.POST("", walletHandler.Create)
		wallets.GET("", walletHandler.Balances)
		wallets.POST("/:number/top-up", walletHandler.TopUp)
		wallets.POST("/:number/send", transferHandler.Send)
		wallets.GET("/:number/logs", historyHandler.Logs)
	}

	return r
}
