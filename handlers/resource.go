package handlers

import (
	"net/http"

	"pgmanager/services/resource"
	"pgmanager/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResourceHandler serves the uniform list/get/create/update/delete endpoints
// of one resource.
type ResourceHandler[T any] struct {
	Service resource.ResourceService[T]
}

func NewResourceHandler[T any](svc resource.ResourceService[T]) *ResourceHandler[T] {
	return &ResourceHandler[T]{Service: svc}
}

func (h *ResourceHandler[T]) List(c *gin.Context) {
	items, err := h.Service.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *ResourceHandler[T]) Get(c *gin.Context) {
	item, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ResourceHandler[T]) Create(c *gin.Context) {
	var doc T
	if !bindJSON(c, &doc) {
		return
	}
	created, err := h.Service.Create(c.Request.Context(), &doc)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ResourceHandler[T]) Update(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		utils.RespondError(c, utils.Validation("failed to read request body"))
		return
	}
	updated, err := h.Service.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *ResourceHandler[T]) Delete(c *gin.Context) {
	deleted, err := h.Service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("Resource deleted",
		zap.String("entity", h.Service.Definition().Spec.Entity),
		zap.String("id", c.Param("id")))
	c.JSON(http.StatusOK, deleted)
}

// Register mounts the handlers under group. Routes named in skip are left out
// so a specialised handler can serve them.
func (h *ResourceHandler[T]) Register(group *gin.RouterGroup, skip ...string) {
	skipped := map[string]bool{}
	for _, s := range skip {
		skipped[s] = true
	}
	if !skipped["list"] {
		group.GET("", h.List)
	}
	if !skipped["get"] {
		group.GET("/:id", h.Get)
	}
	if !skipped["create"] {
		group.POST("", h.Create)
	}
	if !skipped["update"] {
		group.PUT("/:id", h.Update)
	}
	if !skipped["delete"] {
		group.DELETE("/:id", h.Delete)
	}
}
