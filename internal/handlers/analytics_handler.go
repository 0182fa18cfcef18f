package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/examination-service/internal/services"
	"github.com/SAP-F-2025/examination-service/internal/utils"
)

type AnalyticsHandler struct {
	BaseHandler
	service services.AnalyticsService
}

func NewAnalyticsHandler(service services.AnalyticsService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetStats
// @Summary Platform statistics
// @Tags analytics
// @Produce json
// @Success 200 {object} services.Stats
// @Router /analytics/stats [get]
func (h *AnalyticsHandler) GetStats(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	stats, err := h.service.GetStats(c.Request.Context(), requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
