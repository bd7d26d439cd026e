package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "giftwise-backend/internal/common/errors"
	"giftwise-backend/internal/common/middleware"
	"giftwise-backend/internal/features/list/models"
	"giftwise-backend/internal/features/list/service"
)

type ListHandler struct {
	service service.ListService
}

func NewListHandler(service service.ListService) *ListHandler {
	return &ListHandler{service: service}
}

// RegisterRoutes mounts the owner-facing list endpoints. The group must be
// behind the Telegram auth middleware.
func (h *ListHandler) RegisterRoutes(router *gin.RouterGroup) {
	lists := router.Group("/lists")
	{
		lists.POST("", h.create)
		lists.GET("", h.getMyLists)
		lists.GET("/:id", h.getByID)
		lists.PATCH("/:id", h.update)
		lists.DELETE("/:id", h.delete)
	}
}

func (h *ListHandler) create(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Forbidden("missing caller identity"))
		return
	}

	var req models.ListCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, apperrors.Validationf("invalid request body: %v", err))
		return
	}

	list, err := h.service.CreateList(c.Request.Context(), callerID, req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

func (h *ListHandler) getMyLists(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Forbidden("missing caller identity"))
		return
	}

	lists, err := h.service.GetMyLists(c.Request.Context(), callerID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lists": lists})
}

func (h *ListHandler) getByID(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Forbidden("missing caller identity"))
		return
	}

	list, err := h.service.GetList(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ListHandler) update(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Forbidden("missing caller identity"))
		return
	}

	var update models.ListUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		middleware.AbortWithError(c, apperrors.Validationf("invalid request body: %v", err))
		return
	}

	list, err := h.service.UpdateList(c.Request.Context(), c.Param("id"), callerID, update)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ListHandler) delete(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Forbidden("missing caller identity"))
		return
	}

	if err := h.service.DeleteList(c.Request.Context(), c.Param("id"), callerID); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
