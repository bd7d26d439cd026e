package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "giftwise-backend/internal/common/errors"
	"giftwise-backend/internal/common/middleware"
	"giftwise-backend/internal/features/gift/models"
	"giftwise-backend/internal/features/gift/service"
)

type GiftHandler struct {
	service service.GiftService
}

func NewGiftHandler(service service.GiftService) *GiftHandler {
	return &GiftHandler{service: service}
}

// RegisterRoutes mounts the owner-facing gift endpoints. The group must be
// behind the Telegram auth middleware.
func (h *GiftHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/lists/:id/gifts", h.create)
	router.GET("/lists/:id/gifts", h.getListGifts)

	gifts := router.Group("/gifts")
	{
		gifts.PATCH("/:id", h.update)
		gifts.DELETE("/:id", h.delete)
		gifts.POST("/:id/unclaim", h.unclaim)
	}
}

// RegisterPublicRoutes mounts the anonymous gifter endpoints; the share
// code is the only credential.
func (h *GiftHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	share := router.Group("/share")
	{
		share.GET("/:code", h.getSharedList)
		share.POST("/:code/gifts/:id/claim", h.claim)
	}
}

func (h *GiftHandler) create(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Forbidden("missing caller identity"))
		return
	}

	var input models.GiftCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.AbortWithError(c, apperrors.Validationf("invalid request body: %v", err))
		return
	}

	gift, err := h.service.CreateGift(c.Request.Context(), c.Param("id"), callerID, input)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gift)
}

func (h *GiftHandler) getListGifts(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Forbidden("missing caller identity"))
		return
	}

	gifts, err := h.service.GetListGifts(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gifts": gifts})
}

func (h *GiftHandler) update(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Forbidden("missing caller identity"))
		return
	}

	var update models.GiftUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		middleware.AbortWithError(c, apperrors.Validationf("invalid request body: %v", err))
		return
	}

	gift, err := h.service.UpdateGift(c.Request.Context(), c.Param("id"), callerID, update)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gift)
}

func (h *GiftHandler) delete(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Forbidden("missing caller identity"))
		return
	}

	if err := h.service.DeleteGift(c.Request.Context(), c.Param("id"), callerID); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GiftHandler) unclaim(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Forbidden("missing caller identity"))
		return
	}

	gift, err := h.service.UnclaimGift(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gift)
}

func (h *GiftHandler) getSharedList(c *gin.Context) {
	view, err := h.service.GetSharedList(c.Request.Context(), c.Param("code"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *GiftHandler) claim(c *gin.Context) {
	var req models.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, apperrors.Validationf("invalid request body: %v", err))
		return
	}

	gift, err := h.service.ClaimGift(c.Request.Context(), c.Param("code"), c.Param("id"), req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gift)
}
