package delivery

import (
	"net/http"

	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	useCase domain.OrderUseCase
	carts   domain.CartUseCase
	log     *logrus.Logger
}

// NewOrderHandler clears the caller's cart after a successful order when carts is not nil.
func NewOrderHandler(uc domain.OrderUseCase, carts domain.CartUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		carts:   carts,
		log:     logger,
	}
}

// RegisterRoutes expects authed to sit behind RequireAuth and admin behind RequireRole(ADMIN).
func (h *OrderHandler) RegisterRoutes(authed gin.IRouter, admin gin.IRouter) {
	authed.POST("/placeorder", h.PlaceOrder)
	authed.POST("/create-cashfree-order", h.CreatePaymentSession)
	authed.POST("/verify-payment", h.VerifyPayment)
	authed.GET("/orders", h.ListOrders)
	authed.GET("/orders/:id", h.GetOrder)

	admin.GET("/orders", h.ListAllOrders)
	admin.PUT("/orders/:id", h.UpdateOrderStatus)
}

type placeOrderRequest struct {
	Items           []domain.LineItem      `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
}

type orderReferenceRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	caller, ok := callerOrAbort(c, h.log)
	if !ok {
		return
	}

	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for place order (user %s): %v", caller.Email, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	h.log.Infof("Processing place order request for %s (%d items)", caller.Email, len(req.Items))

	order, err := h.useCase.PlaceOrder(c.Request.Context(), caller, domain.PlaceOrderInput{
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		respondError(c, h.log, "place order", err)
		return
	}

	if h.carts != nil {
		if err := h.carts.ClearCart(c.Request.Context(), caller); err != nil {
			h.log.Warnf("Order %s placed but clearing cart of %s failed: %v", order.ID, caller.Email, err)
		}
	}

	h.log.Infof("Order %s placed successfully for %s", order.ID, caller.Email)
	SuccessResponse(c, http.StatusCreated, "Order placed successfully", order)
}

func (h *OrderHandler) CreatePaymentSession(c *gin.Context) {
	caller, ok := callerOrAbort(c, h.log)
	if !ok {
		return
	}

	var req orderReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for payment session (user %s): %v", caller.Email, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.useCase.CreatePaymentSession(c.Request.Context(), caller, req.OrderID)
	if err != nil {
		respondError(c, h.log, "create payment session", err)
		return
	}

	h.log.Infof("Payment session issued for order %s (user %s)", req.OrderID, caller.Email)
	SuccessResponse(c, http.StatusOK, "Payment session created successfully", session)
}

func (h *OrderHandler) VerifyPayment(c *gin.Context) {
	caller, ok := callerOrAbort(c, h.log)
	if !ok {
		return
	}

	var req orderReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for payment verification (user %s): %v", caller.Email, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.useCase.VerifyPayment(c.Request.Context(), caller, req.OrderID)
	if err != nil {
		respondError(c, h.log, "verify payment", err)
		return
	}

	if !result.Confirmed {
		SuccessResponse(c, http.StatusOK, "Payment not completed yet", result)
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment verified successfully", result)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	caller, ok := callerOrAbort(c, h.log)
	if !ok {
		return
	}
	id := c.Param("id")

	order, err := h.useCase.GetOrder(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, h.log, "retrieve order", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	caller, ok := callerOrAbort(c, h.log)
	if !ok {
		return
	}
	limit, offset := pageParams(c)

	orders, err := h.useCase.ListOrdersForUser(c.Request.Context(), caller, limit, offset)
	if err != nil {
		respondError(c, h.log, "retrieve orders", err)
		return
	}

	h.log.Infof("Retrieved %d orders for %s", len(orders), caller.Email)
	if len(orders) == 0 {
		SuccessResponse(c, http.StatusOK, "No orders found for this user", []domain.Order{})
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	caller, ok := callerOrAbort(c, h.log)
	if !ok {
		return
	}
	limit, offset := pageParams(c)

	orders, err := h.useCase.ListAllOrders(c.Request.Context(), caller, limit, offset)
	if err != nil {
		respondError(c, h.log, "retrieve orders", err)
		return
	}
	if len(orders) == 0 {
		SuccessResponse(c, http.StatusOK, "No orders found", []domain.Order{})
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	caller, ok := callerOrAbort(c, h.log)
	if !ok {
		return
	}
	id := c.Param("id")

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for update order %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	h.log.Infof("%s attempting to update status for order %s to '%s'", caller.Email, id, req.Status)

	order, err := h.useCase.UpdateFulfillmentStatus(c.Request.Context(), caller, id, req.Status)
	if err != nil {
		respondError(c, h.log, "update order status", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order status updated successfully", order)
}
