package lead

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/crm-api/internal/middleware"
	"github.com/jwalitptl/crm-api/internal/model"
	leadService "github.com/jwalitptl/crm-api/internal/service/lead"
	"github.com/jwalitptl/crm-api/pkg/httputil"
)

type Handler struct {
	service *leadService.Service
}

func NewHandler(service *leadService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	leads := r.Group("/leads")
	{
		leads.POST("", h.Create)
		leads.GET("/:id", h.Get)
		leads.POST("/:id/reassign", h.RequestReassignment)
	}
}

func (h *Handler) Create(c *gin.Context) {
	orgID, ok := middleware.CurrentOrganizationID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "unauthenticated"})
		return
	}
	actorID, _ := middleware.CurrentUserID(c)

	var req model.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	lead, err := h.service.CreateLead(c.Request.Context(), orgID, actorID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": lead})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid lead ID"})
		return
	}

	lead, err := h.service.GetLead(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": lead})
}

func (h *Handler) RequestReassignment(c *gin.Context) {
	requesterID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "unauthenticated"})
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid lead ID"})
		return
	}

	var req model.ReassignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	assigneeID, _ := uuid.Parse(req.AssigneeID)

	if err := h.service.RequestReassignment(c.Request.Context(), leadID, requesterID, assigneeID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "success"})
}
