package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
	"github.com/SscSPs/referral_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

type reportingHandler struct {
	reporting portssvc.ReportingSvc
}

func newReportingHandler(reporting portssvc.ReportingSvc) *reportingHandler {
	return &reportingHandler{reporting: reporting}
}

func registerReportingRoutes(rg *gin.RouterGroup, reporting portssvc.ReportingSvc) {
	h := newReportingHandler(reporting)

	stats := rg.Group("/stats")
	{
		stats.GET("/dashboard", h.getDashboard)
	}
}

// getDashboard summarises the caller's balance, earnings and referrals.
func (h *reportingHandler) getDashboard(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.reporting.Dashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, dto.ToDashboardResponse(stats))
}
