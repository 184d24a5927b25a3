package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rongwang/sitecrew-server/internal/models"
)

// CreateSession switches to a crew member and returns a token acting as them
func (h *Handler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.CreateSession(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateCompany(c *gin.Context) {
	var req models.CreateCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	company, err := h.svc.CreateCompany(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "company": company})
}

func (h *Handler) ListCompanies(c *gin.Context) {
	companies, err := h.svc.ListCompanies(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "companies": companies})
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "user": user})
}

// ListUsers lists crew members, filtered by the companyId query parameter when given
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context(), c.Query("companyId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "users": users})
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "user": user})
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "user": user})
}
