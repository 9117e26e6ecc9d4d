package http

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/todo/metrics"
	"github.com/layer-3/todo/service"
)

// RouterConfig holds the dependencies of the HTTP API
type RouterConfig struct {
	AuthService *service.AuthService
	TaskService *service.TaskService
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	CORSOrigin  string
}

// SetupRouter sets up the Gin router
func SetupRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(cfg.Logger), CORSMiddleware(cfg.CORSOrigin))

	// Create handlers
	authHandlers := NewAuthHandlers(cfg.AuthService)
	itemHandlers := NewItemHandlers(cfg.TaskService)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	router.POST("/api/auth", authHandlers.Auth)
	allowOnly(router, "/api/auth", http.MethodPost)

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(cfg.AuthService))
	{
		api.GET("/me", authHandlers.Me)

		api.GET("/items", itemHandlers.List)
		api.POST("/items", itemHandlers.Create)
		api.PUT("/items", itemHandlers.Update)
		api.DELETE("/items", itemHandlers.Delete)
		api.POST("/items/:id/toggle", itemHandlers.Toggle)
	}
	allowOnly(router, "/api/items", http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete)

	return router
}

var routableMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodConnect,
	http.MethodTrace,
}

// allowOnly answers every other method on path with 405 and an Allow header.
// OPTIONS is left to the CORS middleware.
func allowOnly(router *gin.Engine, path string, allowed ...string) {
	handler := methodNotAllowed(allowed...)
	for _, method := range routableMethods {
		if slices.Contains(allowed, method) {
			continue
		}
		router.Handle(method, path, handler)
	}
}

func methodNotAllowed(allowed ...string) gin.HandlerFunc {
	allow := strings.Join(allowed, ", ")
	return func(c *gin.Context) {
		c.Header("Allow", allow)
		c.String(http.StatusMethodNotAllowed, "Method %s Not Allowed", c.Request.Method)
	}
}
