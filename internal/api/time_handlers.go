package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rongwang/sitecrew-server/internal/location"
	"github.com/rongwang/sitecrew-server/internal/models"
)

const defaultTimeLogsLimit = 50

// ClockIn starts a shift for the authenticated user
func (h *Handler) ClockIn(c *gin.Context) {
	var req models.ClockInRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.ClockIn(locationContext(c), currentUserID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ClockOut ends the authenticated user's shift. The body is optional.
func (h *Handler) ClockOut(c *gin.Context) {
	var req models.ClockOutRequest
	if c.Request.ContentLength != 0 {
		if !h.bindJSON(c, &req) {
			return
		}
	}

	resp, err := h.svc.ClockOut(locationContext(c), currentUserID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ClockStatus(c *gin.Context) {
	resp, err := h.svc.ClockStatus(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// TimeLogs lists the authenticated user's logs, most recent first
func (h *Handler) TimeLogs(c *gin.Context) {
	var query models.TimeLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}
	if query.Limit == 0 {
		query.Limit = defaultTimeLogsLimit
	}

	resp, err := h.svc.TimeLogs(c.Request.Context(), currentUserID(c), query.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func locationContext(c *gin.Context) context.Context {
	return location.WithClientIP(c.Request.Context(), c.ClientIP())
}
