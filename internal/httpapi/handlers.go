package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/MarkoPoloResearchLab/cashier/internal/approval"
	"github.com/MarkoPoloResearchLab/cashier/internal/directory"
	"github.com/MarkoPoloResearchLab/cashier/pkg/cashier"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type httpHandler struct {
	deps Deps
}

func errorResponse(code string, message string) gin.H {
	return gin.H{"error": code, "message": message}
}

// writeError maps domain errors onto HTTP statuses: unknown things are
// 404, malformed input is 400, business-rule rejections are 409.
func (handler *httpHandler) writeError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal"
	switch {
	case errors.Is(err, cashier.ErrNoActiveSession),
		errors.Is(err, cashier.ErrUnknownSession),
		errors.Is(err, cashier.ErrUnknownSummary),
		errors.Is(err, directory.ErrUnknownPlayer),
		errors.Is(err, approval.ErrUnknownRequest):
		status = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, cashier.ErrInvalidAmount),
		errors.Is(err, cashier.ErrInvalidChipBreakdown),
		errors.Is(err, cashier.ErrInvalidSessionDate),
		errors.Is(err, cashier.ErrInvalidSessionID),
		errors.Is(err, cashier.ErrInvalidPlayerID),
		errors.Is(err, cashier.ErrInvalidActor),
		errors.Is(err, cashier.ErrInvalidOwnerFloat),
		errors.Is(err, cashier.ErrInvalidWallet),
		errors.Is(err, cashier.ErrInvalidPaymentMode),
		errors.Is(err, cashier.ErrChipBreakdownMismatch),
		errors.Is(err, directory.ErrInvalidPlayer),
		errors.Is(err, approval.ErrInvalidRequest):
		status = http.StatusBadRequest
		code = "bad_request"
	case errors.Is(err, cashier.ErrSessionAlreadyOpen),
		errors.Is(err, cashier.ErrSessionClosed),
		errors.Is(err, cashier.ErrSessionNotClosed),
		errors.Is(err, cashier.ErrInsufficientChips),
		errors.Is(err, cashier.ErrInsufficientFunds),
		errors.Is(err, cashier.ErrCreditLimitExceeded),
		errors.Is(err, cashier.ErrCreditExceedsReturn),
		errors.Is(err, cashier.ErrPendingCreditRequests),
		errors.Is(err, cashier.ErrInventoryAlreadySet),
		errors.Is(err, cashier.ErrInventoryLocked),
		errors.Is(err, cashier.ErrSummaryExists),
		errors.Is(err, approval.ErrRequestClosed):
		status = http.StatusConflict
		code = "conflict"
	default:
		handler.deps.Logger.Error("unhandled api error", zap.Error(err))
	}
	ctx.JSON(status, errorResponse(code, err.Error()))
}

func (handler *httpHandler) actor(ctx *gin.Context) (cashier.Actor, bool) {
	actor, err := cashier.NewActor(ctx.GetHeader(actorHeader))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", "missing "+actorHeader+" header"))
		return cashier.Actor{}, false
	}
	return actor, true
}

func (handler *httpHandler) sessionID(ctx *gin.Context) (cashier.SessionID, bool) {
	sessionID, err := cashier.NewSessionID(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", "missing session id"))
		return cashier.SessionID{}, false
	}
	return sessionID, true
}

type openSessionRequest struct {
	Date       string                 `json:"date" binding:"required"`
	OwnerFloat int64                  `json:"owner_float" binding:"required"`
	Chips      *cashier.ChipBreakdown `json:"chips"`
}

func (handler *httpHandler) handleOpenSession(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	var request openSessionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	date, err := cashier.NewSessionDate(request.Date)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	result, err := handler.deps.Ledger.OpenSession(ctx.Request.Context(), date, cashier.Amount(request.OwnerFloat), request.Chips, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"session": result.Session, "message": result.Message})
}

func (handler *httpHandler) handleReopenSession(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	var request openSessionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	date, err := cashier.NewSessionDate(request.Date)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	result, err := handler.deps.Ledger.ReopenSession(ctx.Request.Context(), date, cashier.Amount(request.OwnerFloat), request.Chips, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"session": result.Session, "message": result.Message})
}

// handleActiveSession defaults to today's date (UTC) when the query
// parameter is absent.
func (handler *httpHandler) handleActiveSession(ctx *gin.Context) {
	date := cashier.SessionDateOf(time.Now().Unix())
	if raw := ctx.Query("date"); raw != "" {
		parsed, err := cashier.NewSessionDate(raw)
		if err != nil {
			handler.writeError(ctx, err)
			return
		}
		date = parsed
	}
	session, err := handler.deps.Ledger.ActiveSession(ctx.Request.Context(), date)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": session})
}

func (handler *httpHandler) handleCloseSession(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	result, err := handler.deps.Ledger.CloseSession(ctx.Request.Context(), sessionID, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"summary": result.Summary, "warnings": result.Warnings, "message": result.Message})
}

func (handler *httpHandler) handleDashboard(ctx *gin.Context) {
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	dashboard, err := handler.deps.Ledger.GetDashboard(ctx.Request.Context(), sessionID)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"dashboard": dashboard})
}

func (handler *httpHandler) handleSummary(ctx *gin.Context) {
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	summary, err := handler.deps.Ledger.Summary(ctx.Request.Context(), sessionID)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"summary": summary})
}

type inventoryRequest struct {
	Chips cashier.ChipBreakdown `json:"chips" binding:"required"`
}

func (handler *httpHandler) handleSetInventory(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	var request inventoryRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	result, err := handler.deps.Ledger.SetOpeningInventory(ctx.Request.Context(), sessionID, request.Chips, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": result.Session, "message": result.Message})
}

func (handler *httpHandler) handleListTransactions(ctx *gin.Context) {
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	transactions, err := handler.deps.Ledger.ListTransactions(ctx.Request.Context(), sessionID)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

func (handler *httpHandler) handleListFloats(ctx *gin.Context) {
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	additions, err := handler.deps.Ledger.ListFloatAdditions(ctx.Request.Context(), sessionID)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"float_additions": additions})
}

type playerAmountRequest struct {
	PlayerID string                `json:"player_id" binding:"required"`
	Amount   int64                 `json:"amount"`
	Chips    cashier.ChipBreakdown `json:"chips"`
}

func (handler *httpHandler) handleBuyIn(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	var request playerAmountRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	playerID, err := cashier.NewPlayerID(request.PlayerID)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	amount, err := cashier.NewAmount(request.Amount)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	result, err := handler.deps.Ledger.RecordBuyIn(ctx.Request.Context(), sessionID, playerID, amount, request.Chips, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"transaction": result.Transaction, "session": result.Session, "message": result.Message})
}

func (handler *httpHandler) handlePayout(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	var request playerAmountRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	playerID, err := cashier.NewPlayerID(request.PlayerID)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	result, err := handler.deps.Ledger.RecordCashPayout(ctx.Request.Context(), sessionID, playerID, request.Chips, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"transaction":    result.Transaction,
		"chips_value":    result.ChipsValue,
		"credit_settled": result.CreditSettled,
		"net_payout":     result.NetPayout,
		"message":        result.Message,
	})
}

func (handler *httpHandler) handleDepositChips(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	var request playerAmountRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	playerID, err := cashier.NewPlayerID(request.PlayerID)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	result, err := handler.deps.Ledger.DepositChips(ctx.Request.Context(), sessionID, playerID, request.Chips, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"transaction": result.Transaction, "message": result.Message})
}

func (handler *httpHandler) handleDepositCash(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	var request playerAmountRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	playerID, err := cashier.NewPlayerID(request.PlayerID)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	amount, err := cashier.NewAmount(request.Amount)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	result, err := handler.deps.Ledger.DepositCash(ctx.Request.Context(), sessionID, playerID, amount, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"transaction": result.Transaction, "message": result.Message})
}

type issueCreditRequest struct {
	PlayerID   string                `json:"player_id" binding:"required"`
	Chips      cashier.ChipBreakdown `json:"chips" binding:"required"`
	ApprovalID string                `json:"approval_id"`
}

func (handler *httpHandler) handleIssueCredit(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	var request issueCreditRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	playerID, err := cashier.NewPlayerID(request.PlayerID)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	result, err := handler.deps.Ledger.IssueCredit(ctx.Request.Context(), sessionID, playerID, request.Chips, request.ApprovalID, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"credit": result.Record, "available": result.Available, "message": result.Message})
}

type settleCreditRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	Amount   int64  `json:"amount" binding:"required"`
	Mode     string `json:"mode" binding:"required"`
}

func (handler *httpHandler) handleSettleCredit(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	var request settleCreditRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	playerID, err := cashier.NewPlayerID(request.PlayerID)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	mode, err := cashier.ParsePaymentMode(request.Mode)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	amount, err := cashier.NewAmount(request.Amount)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	result, err := handler.deps.Ledger.SettleCredit(ctx.Request.Context(), sessionID, playerID, amount, mode, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"settled":     result.Settled,
		"outstanding": result.Outstanding,
		"message":     result.Message,
	})
}

type expenseRequest struct {
	Amount   int64  `json:"amount" binding:"required"`
	Category string `json:"category"`
	Note     string `json:"note"`
}

func (handler *httpHandler) handleExpense(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	var request expenseRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	amount, err := cashier.NewAmount(request.Amount)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	result, err := handler.deps.Ledger.RecordExpense(ctx.Request.Context(), sessionID, amount, request.Category, request.Note, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"transaction": result.Transaction, "message": result.Message})
}

type addFloatRequest struct {
	Amount int64                  `json:"amount" binding:"required"`
	Chips  *cashier.ChipBreakdown `json:"chips"`
	Note   string                 `json:"note"`
}

func (handler *httpHandler) handleAddFloat(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	var request addFloatRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	amount, err := cashier.NewAmount(request.Amount)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	result, err := handler.deps.Ledger.AddFloat(ctx.Request.Context(), sessionID, amount, request.Chips, request.Note, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"transaction": result.Transaction, "addition": result.Addition, "message": result.Message})
}

type adjustRequest struct {
	Wallet string `json:"wallet" binding:"required"`
	Delta  int64  `json:"delta" binding:"required"`
	Note   string `json:"note"`
}

func (handler *httpHandler) handleAdjustBalance(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	var request adjustRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	wallet, err := cashier.ParseWalletName(request.Wallet)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	result, err := handler.deps.Ledger.AdjustBalance(ctx.Request.Context(), sessionID, wallet, request.Delta, request.Note, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"transaction": result.Transaction, "message": result.Message})
}

type resolvePlayerRequest struct {
	PlayerID string `json:"player_id"`
	Code     string `json:"code"`
	Phone    string `json:"phone"`
	Name     string `json:"name"`
}

func (handler *httpHandler) handleResolvePlayer(ctx *gin.Context) {
	var request resolvePlayerRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	resolved, err := handler.deps.Directory.Resolve(ctx.Request.Context(), directory.Ref{
		PlayerID: request.PlayerID,
		Code:     request.Code,
		Phone:    request.Phone,
		Name:     request.Name,
	})
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"player_id": resolved.PlayerID, "player_name": resolved.Name})
}

type creditRequestBody struct {
	SessionID string                `json:"session_id" binding:"required"`
	PlayerID  string                `json:"player_id" binding:"required"`
	Chips     cashier.ChipBreakdown `json:"chips" binding:"required"`
}

func (handler *httpHandler) handleCreditRequest(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	var request creditRequestBody
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	sessionID, err := cashier.NewSessionID(request.SessionID)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	playerID, err := cashier.NewPlayerID(request.PlayerID)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	created, err := handler.deps.Approval.Request(ctx.Request.Context(), sessionID, playerID, request.Chips, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"request": created})
}

func (handler *httpHandler) handleApproveRequest(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	request, err := handler.deps.Approval.Approve(ctx.Request.Context(), ctx.Param("id"), actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

type rejectRequestBody struct {
	Reason string `json:"reason"`
}

func (handler *httpHandler) handleRejectRequest(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	var body rejectRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}
	request, err := handler.deps.Approval.Reject(ctx.Request.Context(), ctx.Param("id"), body.Reason, actor)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

func (handler *httpHandler) handleListPending(ctx *gin.Context) {
	sessionID, ok := handler.sessionID(ctx)
	if !ok {
		return
	}
	requests, err := handler.deps.Approval.ListPending(ctx.Request.Context(), sessionID)
	if err != nil {
		handler.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"requests": requests})
}
