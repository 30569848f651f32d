/*
Package order checkout, order lifecycle and payment verification endpoints.

Binding errors answer 400 through response.HandleError; everything the
application layer returns goes through response.HandleAppError, which maps
the domain sentinel to a status and passes the reason through.
*/
package order

import (
	"net/http"

	"storefront/api/ctxutil"
	"storefront/api/middleware"
	"storefront/api/response"
	orderapp "storefront/application/order"

	"github.com/gin-gonic/gin"
)

// Controller order and payment controller
type Controller struct {
	orderService *orderapp.ApplicationService
}

func NewController(orderService *orderapp.ApplicationService) *Controller {
	return &Controller{orderService: orderService}
}

// RegisterRoutes static segments are registered next to :orderId; gin
// prefers the static match
func (c *Controller) RegisterRoutes(router *gin.RouterGroup, guards middleware.Guards) {
	orders := router.Group("/orders")
	{
		orders.POST("/user", guards.UserOnly(c.CreateOrder)...)
		orders.POST("/guest", c.CreateGuestOrder)
		orders.GET("/guest/:trackingId", c.GetGuestOrder)
		orders.GET("/my-orders", guards.UserOnly(c.GetUserOrders)...)
		orders.GET("/admin/orders", guards.AdminOnly(c.ListOrders)...)
		orders.PUT("/admin/:orderId", guards.AdminOnly(c.UpdateOrderStatus)...)
		orders.GET("/:orderId", guards.UserOnly(c.GetOrder)...)
		orders.PATCH("/:orderId/cancel", guards.UserOnly(c.CancelOrder)...)
	}

	router.GET("/payments/verify/:reference/:orderId", c.VerifyPayment)
}

// CreateOrder POST /api/v1/orders/user
func (c *Controller) CreateOrder(ctx *gin.Context) {
	var req orderapp.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	created, err := c.orderService.CreateOrder(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, created, "order created successfully")
}

// CreateGuestOrder POST /api/v1/orders/guest
func (c *Controller) CreateGuestOrder(ctx *gin.Context) {
	var req orderapp.CreateGuestOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	created, err := c.orderService.CreateGuestOrder(ctxutil.WithRequestID(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, created, "guest order created successfully")
}

// GetGuestOrder GET /api/v1/orders/guest/:trackingId?email=
func (c *Controller) GetGuestOrder(ctx *gin.Context) {
	o, err := c.orderService.GetGuestOrder(ctxutil.WithRequestID(ctx), ctx.Param("trackingId"), ctx.Query("email"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, o, "order retrieved successfully")
}

// GetUserOrders GET /api/v1/orders/my-orders
func (c *Controller) GetUserOrders(ctx *gin.Context) {
	orders, err := c.orderService.GetUserOrders(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleList(ctx, orders, len(orders), "user orders retrieved successfully")
}

// GetOrder GET /api/v1/orders/:orderId
func (c *Controller) GetOrder(ctx *gin.Context) {
	o, err := c.orderService.GetOrder(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx), ctx.Param("orderId"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, o, "order retrieved successfully")
}

// CancelOrder PATCH /api/v1/orders/:orderId/cancel
func (c *Controller) CancelOrder(ctx *gin.Context) {
	o, err := c.orderService.CancelOrder(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx), ctx.Param("orderId"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, o, "order cancelled successfully")
}

// ListOrders GET /api/v1/orders/admin/orders
func (c *Controller) ListOrders(ctx *gin.Context) {
	var req orderapp.ListOrdersRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.HandleError(ctx, err, "invalid query parameters", http.StatusBadRequest)
		return
	}

	orders, err := c.orderService.ListOrders(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleList(ctx, orders, len(orders), "orders retrieved successfully")
}

// UpdateOrderStatus PUT /api/v1/orders/admin/:orderId
func (c *Controller) UpdateOrderStatus(ctx *gin.Context) {
	var req orderapp.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	o, err := c.orderService.UpdateOrderStatus(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx), ctx.Param("orderId"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, o, "order updated successfully")
}

// VerifyPayment GET /api/v1/payments/verify/:reference/:orderId
func (c *Controller) VerifyPayment(ctx *gin.Context) {
	result, err := c.orderService.VerifyAndSettle(ctxutil.WithRequestID(ctx), ctx.Param("reference"), ctx.Param("orderId"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	message := "payment verified successfully"
	switch {
	case result.AlreadySettled:
		message = "payment already verified"
	case result.RefundRequired():
		message = "payment verified for a cancelled order; a refund is required"
	case !result.Complete():
		message = "payment verified; some follow-up steps need attention"
	}
	response.HandleSuccess(ctx, result, message)
}
