package handlers

import (
	"errors"
	"net/http"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/policy"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
	"github.com/SscSPs/referral_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

// referralHandler serves the level catalog and the caller's place in the referral graph.
type referralHandler struct {
	referrals portssvc.ReferralSvc
	levels    portssvc.LevelReaderSvc
}

func newReferralHandler(referrals portssvc.ReferralSvc, levels portssvc.LevelReaderSvc) *referralHandler {
	return &referralHandler{referrals: referrals, levels: levels}
}

func registerReferralRoutes(rg *gin.RouterGroup, referrals portssvc.ReferralSvc, levels portssvc.LevelReaderSvc) {
	h := newReferralHandler(referrals, levels)

	mlm := rg.Group("/mlm")
	{
		mlm.GET("/levels", h.listLevels)
		mlm.GET("/level", h.getMyLevel)
		mlm.GET("/upline", h.getUpline)
		mlm.GET("/tree", h.getTree)
	}
}

func (h *referralHandler) listLevels(c *gin.Context) {
	levels, err := h.levels.ListLevels(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list levels")
		return
	}
	c.JSON(http.StatusOK, dto.ToLevelResponses(levels))
}

// getMyLevel returns the caller's current level. Users who never upgraded hold level 0.
func (h *referralHandler) getMyLevel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ul, err := h.levels.GetUserLevel(c.Request.Context(), userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusOK, dto.UserLevelResponse{Level: 0})
		return
	}
	if err != nil {
		respondError(c, err, "Failed to retrieve level")
		return
	}

	resp := dto.UserLevelResponse{Level: ul.Level, ActivatedAt: ul.ActivatedAt}
	if level, err := h.levels.GetLevel(c.Request.Context(), ul.Level); err == nil {
		resp.Name = level.Name
	}
	c.JSON(http.StatusOK, resp)
}

// getUpline lists the ancestors that would be paid for the caller's activity.
func (h *referralHandler) getUpline(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	upline, err := h.referrals.Upline(c.Request.Context(), userID, policy.MaxUplineDepth)
	if err != nil {
		respondError(c, err, "Failed to resolve upline")
		return
	}
	if upline == nil {
		upline = []string{}
	}
	c.JSON(http.StatusOK, dto.UplineResponse{UserID: userID, Upline: upline})
}

func (h *referralHandler) getTree(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.TreeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	tree, err := h.referrals.Downline(c.Request.Context(), userID, params.Depth)
	if err != nil {
		respondError(c, err, "Failed to build referral tree")
		return
	}
	c.JSON(http.StatusOK, tree)
}
