package handlers

import (
	"net/http"
	"strconv"

	"pgmanager/services/dashboard"
	"pgmanager/utils"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	Dashboard dashboard.DashboardService
}

func NewDashboardHandler(svc dashboard.DashboardService) *DashboardHandler {
	return &DashboardHandler{Dashboard: svc}
}

func queryInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Query(name))
	return n
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.Dashboard.Stats(c.Request.Context(), c.Query("pgId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) Revenue(c *gin.Context) {
	series, err := h.Dashboard.Revenue(c.Request.Context(), c.Query("pgId"), queryInt(c, "months"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *DashboardHandler) RecentActivities(c *gin.Context) {
	items, err := h.Dashboard.RecentActivities(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
