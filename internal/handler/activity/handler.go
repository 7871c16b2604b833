package activity

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/crm-api/internal/middleware"
	"github.com/jwalitptl/crm-api/internal/model"
	activityService "github.com/jwalitptl/crm-api/internal/service/activity"
)

type Handler struct {
	service *activityService.Service
}

func NewHandler(service *activityService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/activities", h.List)
}

type listQuery struct {
	EntityKind string `form:"entity_kind"`
	EntityID   string `form:"entity_id"`
	ActorID    string `form:"actor_id"`
	Limit      int    `form:"limit"`
}

func (h *Handler) List(c *gin.Context) {
	orgID, ok := middleware.CurrentOrganizationID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "unauthenticated"})
		return
	}

	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	filters := &model.ActivityFilters{
		OrganizationID: orgID,
		EntityKind:     model.EntityKind(query.EntityKind),
		Limit:          query.Limit,
	}
	if query.EntityID != "" {
		id, err := uuid.Parse(query.EntityID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid entity ID"})
			return
		}
		filters.EntityID = &id
	}
	if query.ActorID != "" {
		id, err := uuid.Parse(query.ActorID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid actor ID"})
			return
		}
		filters.ActorID = &id
	}

	entries, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": entries})
}
