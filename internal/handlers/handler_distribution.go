package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
	"github.com/SscSPs/referral_ledger/internal/dto"
	"github.com/SscSPs/referral_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// distributionHandler handles the routes that move money through the distributor.
type distributionHandler struct {
	distributor portssvc.DistributorSvc
}

func newDistributionHandler(distributor portssvc.DistributorSvc) *distributionHandler {
	return &distributionHandler{distributor: distributor}
}

// registerDistributionRoutes registers the money-moving trigger routes. triggers run before each handler.
func registerDistributionRoutes(rg *gin.RouterGroup, distributor portssvc.DistributorSvc, triggers []gin.HandlerFunc) {
	h := newDistributionHandler(distributor)

	rg.POST("/mlm/upgrade", withTriggers(triggers, h.upgrade)...)
	bets := rg.Group("/bets")
	{
		bets.POST("/loss", withTriggers(triggers, h.betLoss)...)
		bets.POST("/win", withTriggers(triggers, h.betWin)...)
	}
	rg.POST("/wallet/registration-fee", withTriggers(triggers, h.registrationFee)...)
}

func withTriggers(triggers []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(triggers)+1)
	out = append(out, triggers...)
	return append(out, h)
}

// upgrade buys a catalog level for the caller and pays the upgrade commission.
func (h *distributionHandler) upgrade(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received level upgrade", slog.Int("level", req.Level))

	result, err := h.distributor.ApplyUpgrade(c.Request.Context(), userID, req.Level)
	if err != nil {
		respondError(c, err, "Failed to apply level upgrade")
		return
	}
	h.respond(c, result)
}

// betLoss settles a lost stake and splits it across the upline and the funds.
func (h *distributionHandler) betLoss(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.BetLossRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.distributor.ApplyBetLoss(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, err, "Failed to apply bet loss")
		return
	}
	h.respond(c, result)
}

func (h *distributionHandler) betWin(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.BetWinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.distributor.ApplyBetWin(c.Request.Context(), userID, req.Stake, req.Payout)
	if err != nil {
		respondError(c, err, "Failed to apply bet win")
		return
	}
	h.respond(c, result)
}

func (h *distributionHandler) registrationFee(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	result, err := h.distributor.ChargeRegistrationFee(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to charge registration fee")
		return
	}
	h.respond(c, result)
}

func (h *distributionHandler) respond(c *gin.Context, result *domain.DistributionResult) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Distribution applied",
		slog.String("event_id", result.EventID),
		slog.String("debited", result.Debited.String()),
		slog.String("new_balance", result.NewBalance.String()))
	c.JSON(http.StatusOK, dto.ToDistributionResponse(result))
}
