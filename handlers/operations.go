package handlers

import (
	"net/http"
	"time"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/services/notification"
	"pgmanager/services/resource"
	"pgmanager/utils"

	"github.com/gin-gonic/gin"
)

// VisitorHandler serves visitor check-out.
type VisitorHandler struct {
	Repo resourceRepo.Repository[models.Visitor]
	Now  func() time.Time
}

func NewVisitorHandler(repo resourceRepo.Repository[models.Visitor]) *VisitorHandler {
	return &VisitorHandler{Repo: repo, Now: time.Now}
}

func (h *VisitorHandler) CheckOut(c *gin.Context) {
	v, err := resource.CheckOutVisitor(c.Request.Context(), h.Repo, c.Param("id"), h.Now())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// NotificationHandler serves the read markers.
type NotificationHandler struct {
	Notifications notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: svc}
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, err := h.Notifications.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	count, err := h.Notifications.MarkAllRead(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": count})
}

// Health reports liveness and the latest dependency probe. It answers 200
// while the process runs; "degraded" flags a failing dependency.
func Health(c *gin.Context) {
	checks := utils.GetHealthStatus()
	status := "ok"
	if !checks.Healthy() {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "checks": checks})
}
