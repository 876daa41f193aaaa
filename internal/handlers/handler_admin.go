package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
	"github.com/SscSPs/referral_ledger/internal/dto"
	"github.com/SscSPs/referral_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// adminHandler serves the reviewer and operator routes.
type adminHandler struct {
	requests portssvc.RequestReviewerSvc
	users    portssvc.UserSvcFacade
	funds    portssvc.FundSvc
}

func newAdminHandler(requests portssvc.RequestReviewerSvc, users portssvc.UserSvcFacade, funds portssvc.FundSvc) *adminHandler {
	return &adminHandler{requests: requests, users: users, funds: funds}
}

func registerAdminRoutes(rg *gin.RouterGroup, adminUserIDs []string, service *portssvc.ServiceContainer) {
	h := newAdminHandler(service.Requests, service.Users, service.Funds)

	admin := rg.Group("/admin", middleware.RequireAdmin(adminUserIDs))
	{
		requests := admin.Group("/requests")
		requests.GET("/pending", h.listPending)
		requests.POST("/:transactionID/approve", h.approve)
		requests.POST("/:transactionID/reject", h.reject)

		users := admin.Group("/users")
		users.GET("/:userID", h.getUser)
		users.PUT("/:userID", h.upsertUser)

		funds := admin.Group("/funds")
		funds.GET("", h.listFunds)
		funds.GET("/:name", h.getFund)
	}
}

func (h *adminHandler) listPending(c *gin.Context) {
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	pending, err := h.requests.ListPending(c.Request.Context(), params.Limit)
	if err != nil {
		respondError(c, err, "Failed to list pending requests")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponses(pending))
}

func (h *adminHandler) approve(c *gin.Context) {
	h.review(c, h.requests.Approve, "Failed to approve request")
}

func (h *adminHandler) reject(c *gin.Context) {
	h.review(c, h.requests.Reject, "Failed to reject request")
}

// review moves a pending request to a terminal status. The caller is recorded as reviewer.
func (h *adminHandler) review(c *gin.Context, transition func(ctx context.Context, transactionID, reviewer string) (*domain.Transaction, error), failure string) {
	reviewer, ok := requireUserID(c)
	if !ok {
		return
	}
	transactionID := c.Param("transactionID")

	txn, err := transition(c.Request.Context(), transactionID, reviewer)
	if err != nil {
		respondError(c, err, failure)
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Request reviewed",
		slog.String("transaction_id", transactionID),
		slog.String("status", string(txn.Status)))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *adminHandler) getUser(c *gin.Context) {
	user, err := h.users.GetUserByID(c.Request.Context(), c.Param("userID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// upsertUser registers a user or replaces its referral edge and transact flag.
func (h *adminHandler) upsertUser(c *gin.Context) {
	var req dto.UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.users.UpsertUser(c.Request.Context(), c.Param("userID"), req.ReferrerID, *req.CanTransact)
	if err != nil {
		respondError(c, err, "Failed to save user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *adminHandler) listFunds(c *gin.Context) {
	accounts, err := h.funds.ListFunds(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list funds")
		return
	}
	res := make([]dto.FundResponse, 0, len(accounts))
	for i := range accounts {
		fund, _ := domain.FundFromPrincipal(accounts[i].Principal)
		res = append(res, dto.ToFundResponse(string(fund), &accounts[i]))
	}
	c.JSON(http.StatusOK, res)
}

func (h *adminHandler) getFund(c *gin.Context) {
	name := c.Param("name")
	acc, err := h.funds.GetFund(c.Request.Context(), name)
	if err != nil {
		respondError(c, err, "Failed to retrieve fund")
		return
	}
	c.JSON(http.StatusOK, dto.ToFundResponse(name, acc))
}
