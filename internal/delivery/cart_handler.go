package delivery

import (
	"net/http"

	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	useCase domain.CartUseCase
	log     *logrus.Logger
}

func NewCartHandler(uc domain.CartUseCase, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CartHandler) RegisterRoutes(authed gin.IRouter) {
	authed.GET("/cart", h.GetCart)
	authed.PUT("/cart", h.SaveCart)
	authed.DELETE("/cart", h.ClearCart)
}

type saveCartRequest struct {
	Items []domain.LineItem `json:"items"`
}

func (h *CartHandler) GetCart(c *gin.Context) {
	caller, ok := callerOrAbort(c, h.log)
	if !ok {
		return
	}
	cart, err := h.useCase.GetCart(c.Request.Context(), caller)
	if err != nil {
		respondError(c, h.log, "retrieve cart", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", cart)
}

func (h *CartHandler) SaveCart(c *gin.Context) {
	caller, ok := callerOrAbort(c, h.log)
	if !ok {
		return
	}

	var req saveCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for save cart (user %s): %v", caller.Email, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cart, err := h.useCase.SaveCart(c.Request.Context(), caller, req.Items)
	if err != nil {
		respondError(c, h.log, "save cart", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart saved successfully", cart)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	caller, ok := callerOrAbort(c, h.log)
	if !ok {
		return
	}
	if err := h.useCase.ClearCart(c.Request.Context(), caller); err != nil {
		respondError(c, h.log, "clear cart", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart cleared successfully", nil)
}
