package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MarkoPoloResearchLab/cashier/internal/approval"
	"github.com/MarkoPoloResearchLab/cashier/internal/directory"
	"github.com/MarkoPoloResearchLab/cashier/pkg/cashier"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps carries the in-process services the API fronts.
type Deps struct {
	Logger    *zap.Logger
	Ledger    *cashier.Service
	Directory *directory.Service
	Approval  *approval.Service
}

// Run boots the HTTP façade using the supplied configuration.
func Run(ctx context.Context, cfg Config, deps Deps) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	handler := &httpHandler{deps: deps}
	router := setupRouter(cfg, handler)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		deps.Logger.Info("cashier api listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			deps.Logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func setupRouter(cfg Config, handler *httpHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept", actorHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	api.POST("/sessions", handler.handleOpenSession)
	api.POST("/sessions/reopen", handler.handleReopenSession)
	api.GET("/sessions/active", handler.handleActiveSession)
	api.POST("/sessions/:id/close", handler.handleCloseSession)
	api.GET("/sessions/:id/dashboard", handler.handleDashboard)
	api.GET("/sessions/:id/summary", handler.handleSummary)
	api.POST("/sessions/:id/inventory", handler.handleSetInventory)
	api.GET("/sessions/:id/transactions", handler.handleListTransactions)
	api.GET("/sessions/:id/floats", handler.handleListFloats)
	api.POST("/sessions/:id/buy-ins", handler.handleBuyIn)
	api.POST("/sessions/:id/payouts", handler.handlePayout)
	api.POST("/sessions/:id/deposits/chips", handler.handleDepositChips)
	api.POST("/sessions/:id/deposits/cash", handler.handleDepositCash)
	api.POST("/sessions/:id/credits", handler.handleIssueCredit)
	api.POST("/sessions/:id/settlements", handler.handleSettleCredit)
	api.POST("/sessions/:id/expenses", handler.handleExpense)
	api.POST("/sessions/:id/floats", handler.handleAddFloat)
	api.POST("/sessions/:id/adjustments", handler.handleAdjustBalance)

	api.POST("/players/resolve", handler.handleResolvePlayer)
	api.POST("/credit-requests", handler.handleCreditRequest)
	api.POST("/credit-requests/:id/approve", handler.handleApproveRequest)
	api.POST("/credit-requests/:id/reject", handler.handleRejectRequest)
	api.GET("/sessions/:id/credit-requests", handler.handleListPending)

	return router
}
