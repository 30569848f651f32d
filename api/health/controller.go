package health

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"storefront/config"
	"storefront/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Checker checks one dependency
type Checker func(ctx context.Context) error

// Controller Health check controller
type Controller struct {
	config    *config.Config
	checks    map[string]Checker
	startTime time.Time
	timeout   time.Duration
}

// NewController checks are keyed by dependency name, e.g. "database" or "redis"
func NewController(cfg *config.Config, checks map[string]Checker) *Controller {
	if checks == nil {
		checks = map[string]Checker{}
	}
	return &Controller{
		config:    cfg,
		checks:    checks,
		startTime: time.Now(),
		timeout:   2 * time.Second,
	}
}

// RegisterRoutes Register health check routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", c.Health)
	router.GET("/health/live", c.Liveness)
	router.GET("/health/ready", c.Readiness)
}

// HealthResponse Health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Uptime    string           `json:"uptime"`
	Timestamp string           `json:"timestamp"`
	Checks    map[string]Check `json:"checks,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check Check item
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo System information
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
}

// Health Complete health check
func (c *Controller) Health(ctx *gin.Context) {
	checks := c.runChecks(ctx.Request.Context())
	overallStatus := "healthy"
	for _, check := range checks {
		if check.Status != "healthy" {
			overallStatus = "unhealthy"
		}
	}

	response := HealthResponse{
		Status:    overallStatus,
		Version:   c.config.App.Version,
		Uptime:    time.Since(c.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	// system info only in development
	if c.config.IsDevelopment() {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		response.System = &SystemInfo{
			GoVersion:    runtime.Version(),
			NumCPU:       runtime.NumCPU(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     memStats.Alloc,
		}
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	ctx.JSON(statusCode, response)
}

// Liveness Liveness check (Kubernetes liveness)
func (c *Controller) Liveness(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// Readiness Readiness check (Kubernetes readiness)
func (c *Controller) Readiness(ctx *gin.Context) {
	for name, check := range c.runChecks(ctx.Request.Context()) {
		if check.Status != "healthy" {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"message": name + " not available",
			})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

func (c *Controller) runChecks(ctx context.Context) map[string]Check {
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]Check, len(names))
	for _, name := range names {
		results[name] = c.runCheck(ctx, name, c.checks[name])
	}
	return results
}

func (c *Controller) runCheck(ctx context.Context, name string, check Checker) Check {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := check(ctx)
	latency := time.Since(start)

	if err != nil {
		logger.FromContext(ctx).Warn("dependency check failed",
			zap.String("dependency", name), zap.Error(err), zap.Duration("latency", latency))
		return Check{
			Status:  "unhealthy",
			Message: "dependency check failed",
			Latency: latency.String(),
		}
	}

	return Check{
		Status:  "healthy",
		Latency: latency.String(),
	}
}
