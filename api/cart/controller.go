// Package cart shopping cart endpoints; every route requires a signed-in user.
package cart

import (
	"net/http"

	"storefront/api/ctxutil"
	"storefront/api/middleware"
	"storefront/api/response"
	cartapp "storefront/application/cart"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	cartService *cartapp.ApplicationService
}

func NewController(cartService *cartapp.ApplicationService) *Controller {
	return &Controller{cartService: cartService}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup, guards middleware.Guards) {
	carts := router.Group("/cart", guards.User...)
	{
		carts.GET("", c.GetCart)
		carts.POST("/items", c.AddToCart)
		carts.PUT("/items", c.UpdateCartItem)
		carts.DELETE("/items/:productId", c.RemoveFromCart)
		carts.DELETE("", c.ClearCart)
	}
}

// GetCart GET /api/v1/cart
func (c *Controller) GetCart(ctx *gin.Context) {
	cart, err := c.cartService.GetCart(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, cart, "cart retrieved successfully")
}

// AddToCart POST /api/v1/cart/items
func (c *Controller) AddToCart(ctx *gin.Context) {
	var req cartapp.AddItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cart, err := c.cartService.AddToCart(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, cart, "item added to cart")
}

// UpdateCartItem PUT /api/v1/cart/items
func (c *Controller) UpdateCartItem(ctx *gin.Context) {
	var req cartapp.UpdateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cart, err := c.cartService.UpdateCartItem(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, cart, "cart updated")
}

// RemoveFromCart DELETE /api/v1/cart/items/:productId
func (c *Controller) RemoveFromCart(ctx *gin.Context) {
	cart, err := c.cartService.RemoveFromCart(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx), ctx.Param("productId"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, cart, "item removed from cart")
}

// ClearCart DELETE /api/v1/cart
func (c *Controller) ClearCart(ctx *gin.Context) {
	cart, err := c.cartService.ClearCart(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, cart, "cart cleared")
}
