package deal

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/crm-api/internal/middleware"
	"github.com/jwalitptl/crm-api/internal/model"
	dealService "github.com/jwalitptl/crm-api/internal/service/deal"
	"github.com/jwalitptl/crm-api/pkg/httputil"
)

type Handler struct {
	service *dealService.Service
}

func NewHandler(service *dealService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	deals := r.Group("/deals")
	{
		deals.POST("", h.Create)
		deals.GET("/:id", h.Get)
		deals.PATCH("/:id/stage", h.UpdateStage)
	}
}

func (h *Handler) Create(c *gin.Context) {
	orgID, ok := middleware.CurrentOrganizationID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "unauthenticated"})
		return
	}
	actorID, _ := middleware.CurrentUserID(c)

	var req model.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	deal, err := h.service.CreateDeal(c.Request.Context(), orgID, actorID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": deal})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid deal ID"})
		return
	}

	deal, err := h.service.GetDeal(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": deal})
}

func (h *Handler) UpdateStage(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "unauthenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid deal ID"})
		return
	}

	var req model.UpdateDealStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	deal, err := h.service.UpdateStage(c.Request.Context(), actorID, id, model.DealStage(req.Stage))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": deal})
}
