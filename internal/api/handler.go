package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rongwang/sitecrew-server/internal/ledger"
	"github.com/rongwang/sitecrew-server/internal/models"
	"github.com/rongwang/sitecrew-server/internal/service"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler serves the HTTP API
type Handler struct {
	svc    service.Service
	health HealthChecker
	logger *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(svc service.Service, health HealthChecker, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		health: health,
		logger: logger.Named("api"),
	}
}

// SetupRoutes registers every route on router. SecretMiddleware must already
// be installed.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	// Open to anyone: picking a crew member happens before a session exists
	api.POST("/session", h.CreateSession)
	api.GET("/users", h.ListUsers)
	api.POST("/users", h.CreateUser)
	api.GET("/companies", h.ListCompanies)
	api.POST("/companies", h.CreateCompany)

	authed := api.Group("")
	authed.Use(AuthMiddleware())
	{
		authed.GET("/users/:id", h.GetUser)
		authed.PATCH("/users/:id", h.UpdateUser)

		authed.GET("/projects", h.ListProjects)
		authed.POST("/projects", h.CreateProject)
		authed.GET("/projects/:id", h.GetProject)

		authed.GET("/projects/:id/tasks", h.ListTasks)
		authed.POST("/projects/:id/tasks", h.CreateTask)
		authed.PATCH("/tasks/:id/status", h.UpdateTaskStatus)

		authed.POST("/projects/:id/punch-list", h.AddPunchListItem)
		authed.POST("/projects/:id/punch-list/:itemId/toggle", h.TogglePunchListItem)

		authed.GET("/projects/:id/photos", h.ListPhotos)
		authed.POST("/projects/:id/photos", h.AddPhoto)

		authed.POST("/time/clock-in", h.ClockIn)
		authed.POST("/time/clock-out", h.ClockOut)
		authed.GET("/time/status", h.ClockStatus)
		authed.GET("/time/logs", h.TimeLogs)
	}
}

// Health reports store reachability
func (h *Handler) Health(c *gin.Context) {
	if err := h.health.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Status:  "error",
			Code:    "STORE_ERROR",
			Message: "Database unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return false
	}
	return true
}

// respondError maps service and ledger errors onto the API error codes
func (h *Handler) respondError(c *gin.Context, err error) {
	var storeErr *ledger.StoreError

	status, code, message := http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, code, message = http.StatusBadRequest, "INVALID_REQUEST", err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status, code, message = http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error()
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, ledger.ErrProjectNotFound):
		status, code, message = http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, ledger.ErrInvalidTransition):
		status, code, message = http.StatusConflict, "INVALID_TRANSITION", err.Error()
	case errors.As(err, &storeErr):
		status, code, message = http.StatusServiceUnavailable, "STORE_ERROR", "Could not save the change, please retry"
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}

	c.JSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}

func currentUserID(c *gin.Context) string {
	return c.GetString(contextUserID)
}
