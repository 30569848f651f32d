// Package newsletter subscription and broadcast endpoints.
package newsletter

import (
	"net/http"

	"storefront/api/ctxutil"
	"storefront/api/middleware"
	"storefront/api/response"
	newsletterapp "storefront/application/newsletter"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	newsletterService *newsletterapp.ApplicationService
}

func NewController(newsletterService *newsletterapp.ApplicationService) *Controller {
	return &Controller{newsletterService: newsletterService}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup, guards middleware.Guards) {
	newsletter := router.Group("/newsletter")
	{
		newsletter.POST("/subscribe", c.Subscribe)
		newsletter.GET("/confirm/:token", c.Confirm)
		newsletter.GET("/unsubscribe/:token", c.Unsubscribe)
		newsletter.POST("/send", guards.AdminOnly(c.Send)...)
	}
}

// Subscribe POST /api/v1/newsletter/subscribe
func (c *Controller) Subscribe(ctx *gin.Context) {
	var req newsletterapp.SubscribeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "email is required", http.StatusBadRequest)
		return
	}

	result, err := c.newsletterService.Subscribe(ctxutil.WithRequestID(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	if result.Outcome == newsletterapp.OutcomeSubscribed {
		response.HandleCreated(ctx, result, result.Message)
		return
	}
	response.HandleSuccess(ctx, result, result.Message)
}

// Confirm GET /api/v1/newsletter/confirm/:token
func (c *Controller) Confirm(ctx *gin.Context) {
	if err := c.newsletterService.Confirm(ctxutil.WithRequestID(ctx), ctx.Param("token")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, nil, "Your subscription has been confirmed. Thank you!")
}

// Unsubscribe GET /api/v1/newsletter/unsubscribe/:token
func (c *Controller) Unsubscribe(ctx *gin.Context) {
	if err := c.newsletterService.Unsubscribe(ctxutil.WithRequestID(ctx), ctx.Param("token")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, nil, "You have been unsubscribed from the newsletter.")
}

// Send POST /api/v1/newsletter/send
func (c *Controller) Send(ctx *gin.Context) {
	var req newsletterapp.SendRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "subject and htmlContent are required", http.StatusBadRequest)
		return
	}

	report, err := c.newsletterService.Send(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, report, "newsletter sent")
}
