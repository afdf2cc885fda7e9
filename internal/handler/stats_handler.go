package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yildiz-insaat/cms-api/internal/service"
	"github.com/yildiz-insaat/cms-api/pkg/response"
)

// StatsHandler exposes the admin dashboard endpoint.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Dashboard godoc
// @Summary Get admin dashboard statistics
// @Tags Stats
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Router /stats [get]
func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.stats.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}
