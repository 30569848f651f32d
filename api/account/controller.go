// Package account registration, login and logout endpoints.
package account

import (
	"net/http"

	"storefront/api/ctxutil"
	"storefront/api/middleware"
	"storefront/api/response"
	accountapp "storefront/application/account"
	"storefront/domain/account"

	"github.com/gin-gonic/gin"
)

// AdminSignupKeyHeader carries the admin signup key
const AdminSignupKeyHeader = "X-Admin-Signup-Key"

// CookieOptions session cookie attributes
type CookieOptions struct {
	// Secure HTTPS-only, SameSite=Strict; otherwise SameSite=Lax
	Secure bool
	Domain string
}

type Controller struct {
	accountService *accountapp.ApplicationService
	cookies        CookieOptions
}

func NewController(accountService *accountapp.ApplicationService, cookies CookieOptions) *Controller {
	return &Controller{accountService: accountService, cookies: cookies}
}

// RegisterRoutes public routes skip session resolution so a stale cookie
// never blocks a login; admin registration needs the caller's identity.
func (c *Controller) RegisterRoutes(public, authed *gin.RouterGroup, limit gin.HandlerFunc) {
	users := public.Group("/users", limit)
	{
		users.POST("/register", c.Register)
		users.POST("/login", c.Login)
		users.POST("/logout", c.Logout)
		users.GET("/verify-email/:token", c.VerifyEmail)
		users.POST("/resend-verification", c.ResendVerification)
	}

	admin := public.Group("/admin", limit)
	{
		admin.POST("/login", c.AdminLogin)
		admin.POST("/logout", c.AdminLogout)
	}
	authed.POST("/admin/register", limit, c.AdminRegister)
}

// Register POST /api/v1/users/register
func (c *Controller) Register(ctx *gin.Context) {
	var req accountapp.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "Username, email, and password are required", http.StatusBadRequest)
		return
	}

	result, err := c.accountService.Register(ctxutil.WithRequestID(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	message := "User registered successfully"
	if result.VerificationRequired {
		message += ". Please check your email to verify your account."
	}
	response.HandleCreated(ctx, result, message)
}

// Login POST /api/v1/users/login
func (c *Controller) Login(ctx *gin.Context) {
	c.login(ctx, account.RoleUser, middleware.TokenCookie)
}

// AdminLogin POST /api/v1/admin/login
func (c *Controller) AdminLogin(ctx *gin.Context) {
	c.login(ctx, account.RoleAdmin, middleware.AdminTokenCookie)
}

func (c *Controller) login(ctx *gin.Context, role account.Role, cookie string) {
	var req accountapp.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "Email and password are required", http.StatusBadRequest)
		return
	}

	result, err := c.accountService.Login(ctxutil.WithRequestID(ctx), role, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	c.setCookie(ctx, cookie, result.Token, int(c.accountService.SessionTTL().Seconds()))
	response.HandleSuccess(ctx, result, "Login successful")
}

// Logout POST /api/v1/users/logout
func (c *Controller) Logout(ctx *gin.Context) {
	c.logout(ctx, middleware.TokenCookie, "Logout successful")
}

// AdminLogout POST /api/v1/admin/logout
func (c *Controller) AdminLogout(ctx *gin.Context) {
	c.logout(ctx, middleware.AdminTokenCookie, "Logout successful. Please remove the token from your client.")
}

func (c *Controller) logout(ctx *gin.Context, cookie, message string) {
	if err := c.accountService.Logout(ctxutil.WithRequestID(ctx), middleware.SessionToken(ctx)); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	c.setCookie(ctx, cookie, "", -1)
	response.HandleSuccess(ctx, nil, message)
}

// AdminRegister POST /api/v1/admin/register
func (c *Controller) AdminRegister(ctx *gin.Context) {
	var req accountapp.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "Username, email, and password are required", http.StatusBadRequest)
		return
	}

	result, err := c.accountService.RegisterAdmin(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx),
		ctx.GetHeader(AdminSignupKeyHeader), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, result, "Admin registered successfully")
}

// VerifyEmail GET /api/v1/users/verify-email/:token
func (c *Controller) VerifyEmail(ctx *gin.Context) {
	if err := c.accountService.VerifyEmail(ctxutil.WithRequestID(ctx), ctx.Param("token")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, nil, "Email verified successfully. You can now log in.")
}

// ResendVerification POST /api/v1/users/resend-verification
func (c *Controller) ResendVerification(ctx *gin.Context) {
	var req accountapp.ResendVerificationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "email is required", http.StatusBadRequest)
		return
	}
	if err := c.accountService.ResendVerification(ctxutil.WithRequestID(ctx), req); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, nil, "If the account exists and is not verified, a new verification email has been sent.")
}

func (c *Controller) setCookie(ctx *gin.Context, name, value string, maxAge int) {
	if c.cookies.Secure {
		ctx.SetSameSite(http.SameSiteStrictMode)
	} else {
		ctx.SetSameSite(http.SameSiteLaxMode)
	}
	ctx.SetCookie(name, value, maxAge, "/", c.cookies.Domain, c.cookies.Secure, true)
}
