package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
	"github.com/SscSPs/referral_ledger/internal/dto"
	"github.com/SscSPs/referral_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// walletHandler serves the caller's own balance, rows and requests.
type walletHandler struct {
	ledger   portssvc.LedgerSvc
	requests portssvc.RequestWriterSvc
}

func newWalletHandler(ledger portssvc.LedgerSvc, requests portssvc.RequestWriterSvc) *walletHandler {
	return &walletHandler{ledger: ledger, requests: requests}
}

// registerWalletRoutes registers the wallet routes. triggers guard the routes that open requests.
func registerWalletRoutes(rg *gin.RouterGroup, ledger portssvc.LedgerSvc, requests portssvc.RequestWriterSvc, triggers []gin.HandlerFunc) {
	h := newWalletHandler(ledger, requests)

	wallet := rg.Group("/wallet")
	{
		wallet.GET("/balance", h.getBalance)
		wallet.GET("/transactions", h.listTransactions)
		wallet.GET("/transactions/:transactionID", h.getTransaction)
		wallet.GET("/commissions", h.listCommissions)
		wallet.POST("/deposits", withTriggers(triggers, h.requestDeposit)...)
		wallet.POST("/withdrawals", withTriggers(triggers, h.requestWithdrawal)...)
	}
}

func (h *walletHandler) getBalance(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	balance, err := h.ledger.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve balance")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{Principal: userID, Balance: balance})
}

// listTransactions pages through the caller's ledger rows, newest first.
func (h *walletHandler) listTransactions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	var nextToken *string
	if params.NextToken != "" {
		nextToken = &params.NextToken
	}
	txns, next, err := h.ledger.ListTransactions(c.Request.Context(), userID, params.Limit, nextToken)
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    next,
	})
}

func (h *walletHandler) getTransaction(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	txn, err := h.ledger.GetTransaction(c.Request.Context(), userID, c.Param("transactionID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *walletHandler) listCommissions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	commissions, err := h.ledger.ListCommissions(c.Request.Context(), userID, params.Limit)
	if err != nil {
		respondError(c, err, "Failed to list commissions")
		return
	}
	c.JSON(http.StatusOK, dto.ToCommissionResponses(commissions))
}

// requestDeposit opens a pending deposit. The balance changes when a reviewer approves it.
func (h *walletHandler) requestDeposit(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.WalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	txn, err := h.requests.RequestDeposit(c.Request.Context(), userID, req.Amount, req.Description)
	if err != nil {
		respondError(c, err, "Failed to request deposit")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Deposit request created", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// requestWithdrawal debits the amount now and opens a pending withdrawal.
func (h *walletHandler) requestWithdrawal(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.WalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	txn, err := h.requests.RequestWithdrawal(c.Request.Context(), userID, req.Amount, req.Description)
	if err != nil {
		respondError(c, err, "Failed to request withdrawal")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Withdrawal request created", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}
