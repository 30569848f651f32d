package api

import (
	"net/http"

	"storefront/api/account"
	"storefront/api/cart"
	"storefront/api/health"
	"storefront/api/middleware"
	"storefront/api/newsletter"
	"storefront/api/order"
	"storefront/api/product"
	"storefront/config"
	"storefront/infrastructure/auth"

	"github.com/gin-gonic/gin"
)

// Controllers every HTTP surface the router mounts
type Controllers struct {
	Health     *health.Controller
	Account    *account.Controller
	Product    *product.Controller
	Cart       *cart.Controller
	Order      *order.Controller
	Newsletter *newsletter.Controller
}

// Options optional collaborators
type Options struct {
	// Observer receives per-request metrics; nil disables them
	Observer middleware.RequestObserver
	// MetricsHandler mounted at cfg.Metrics.Path when metrics are enabled
	MetricsHandler http.Handler
	// MediaRoot served under /media when set
	MediaRoot string
}

// Router Route configuration
type Router struct {
	engine        *gin.Engine
	config        *config.Config
	authenticator auth.Authenticator
	controllers   Controllers
	opts          Options
}

// NewRouter builds the engine and its global middleware
func NewRouter(cfg *config.Config, authenticator auth.Authenticator, controllers Controllers, opts Options) *Router {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.MaxMultipartMemory = 32 << 20

	// order matters: the request id must exist before anything logs
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware(opts.Observer))
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))

	return &Router{
		engine:        engine,
		config:        cfg,
		authenticator: authenticator,
		controllers:   controllers,
		opts:          opts,
	}
}

// SetupRoutes Set up all routes
func (r *Router) SetupRoutes() {
	adminLimit := middleware.RateLimitMiddleware(&r.config.Server.AdminRateLimit,
		"Too many admin requests from this IP, please try again later.")
	guards := middleware.NewGuards(adminLimit)

	apiGroup := r.engine.Group("/api/v1")
	apiGroup.Use(middleware.RateLimitMiddleware(&r.config.Server.RateLimit,
		"Too many requests from this IP, please try again later."))

	// health stays reachable without credentials
	r.controllers.Health.RegisterRoutes(apiGroup)

	authed := apiGroup.Group("", middleware.Authenticate(r.authenticator))
	{
		r.controllers.Product.RegisterRoutes(authed)
		r.controllers.Product.RegisterAdminRoutes(authed, guards)
		r.controllers.Cart.RegisterRoutes(authed, guards)
		r.controllers.Order.RegisterRoutes(authed, guards)
		r.controllers.Newsletter.RegisterRoutes(authed, guards)
	}

	if r.controllers.Account != nil {
		authLimit := middleware.RateLimitMiddleware(&r.config.Server.AuthRateLimit,
			"Too many authentication attempts from this IP, please try again later.")
		r.controllers.Account.RegisterRoutes(apiGroup, authed, authLimit)
	}

	if r.config.Metrics.Enabled && r.opts.MetricsHandler != nil {
		r.engine.GET(r.config.Metrics.Path, gin.WrapH(r.opts.MetricsHandler))
	}
	if r.opts.MediaRoot != "" {
		r.engine.Static("/media", r.opts.MediaRoot)
	}

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/v1/health",
		})
	})
}

// GetEngine Get Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
