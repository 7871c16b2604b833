package reminder

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/crm-api/internal/middleware"
	dealService "github.com/jwalitptl/crm-api/internal/service/deal"
	taskService "github.com/jwalitptl/crm-api/internal/service/task"
)

// Handler exposes the reminder sweeps. Sweeps run on demand from a
// request, never from a scheduler, so a user only pays the cost when
// their client asks.
type Handler struct {
	dealSvc *dealService.Service
	taskSvc *taskService.Service
}

func NewHandler(dealSvc *dealService.Service, taskSvc *taskService.Service) *Handler {
	return &Handler{dealSvc: dealSvc, taskSvc: taskSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/reminders/run", h.Run)
}

func (h *Handler) Run(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "unauthenticated"})
		return
	}

	ctx := c.Request.Context()
	closing := h.dealSvc.CheckClosingDeals(ctx, userID)
	due := h.taskSvc.CheckDueTasks(ctx, userID)

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{
		"closing_deal_notices": closing,
		"due_task_notices":     due,
	}})
}
