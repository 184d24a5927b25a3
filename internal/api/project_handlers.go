package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rongwang/sitecrew-server/internal/models"
)

func (h *Handler) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	project, err := h.svc.CreateProject(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "project": project})
}

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context(), c.Query("companyId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "projects": projects})
}

func (h *Handler) GetProject(c *gin.Context) {
	project, err := h.svc.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "project": project})
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req models.CreateTaskRequest
	if !h.bindJSON(c, &req) {
		return
	}

	task, err := h.svc.CreateTask(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "task": task})
}

func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.svc.ListTasks(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "tasks": tasks})
}

func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	var req models.UpdateTaskStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.svc.UpdateTaskStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "taskStatus": req.Status})
}

func (h *Handler) AddPunchListItem(c *gin.Context) {
	var req models.AddPunchListItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.svc.AddPunchListItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "item": item})
}

func (h *Handler) TogglePunchListItem(c *gin.Context) {
	item, err := h.svc.TogglePunchListItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "item": item})
}

func (h *Handler) AddPhoto(c *gin.Context) {
	var req models.AddPhotoRequest
	if !h.bindJSON(c, &req) {
		return
	}

	photo, err := h.svc.AddPhoto(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "photo": photo})
}

func (h *Handler) ListPhotos(c *gin.Context) {
	photos, err := h.svc.ListPhotos(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "photos": photos})
}
