package task

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/crm-api/internal/middleware"
	"github.com/jwalitptl/crm-api/internal/model"
	taskService "github.com/jwalitptl/crm-api/internal/service/task"
	"github.com/jwalitptl/crm-api/pkg/httputil"
)

type Handler struct {
	service *taskService.Service
}

func NewHandler(service *taskService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/tasks", h.Create)
}

func (h *Handler) Create(c *gin.Context) {
	orgID, ok := middleware.CurrentOrganizationID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "unauthenticated"})
		return
	}
	creatorID, _ := middleware.CurrentUserID(c)

	var req model.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), orgID, creatorID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": task})
}
