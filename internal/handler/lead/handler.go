package lead

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hebamio/midwife-api/internal/middleware"
	"github.com/hebamio/midwife-api/internal/model"
	"github.com/hebamio/midwife-api/internal/service/lead"
	apperrors "github.com/hebamio/midwife-api/pkg/errors"
	"github.com/hebamio/midwife-api/pkg/httputil"
)

type Handler struct {
	service *lead.Service
}

func NewHandler(service *lead.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public intake endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/public")
	{
		public.POST("/client-requests", h.CreateClientRequest)
		public.GET("/clients/names", h.ClientNames)
	}
}

// RegisterProtectedRoutes mounts the midwife-facing lead management.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	leads := r.Group("/leads")
	{
		leads.GET("", h.ListLeads)
		leads.GET("/:id", h.GetLead)
		leads.PUT("/:id/status", h.UpdateLeadStatus)
		leads.POST("/:id/convert", h.ConvertLead)
	}
}

func (h *Handler) CreateClientRequest(c *gin.Context) {
	var req model.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) ClientNames(c *gin.Context) {
	midwifeID, err := uuid.Parse(c.Query("midwife_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid midwife ID", err))
		return
	}

	names, err := h.service.ClientNames(c.Request.Context(), midwifeID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, names)
}

func (h *Handler) ListLeads(c *gin.Context) {
	midwifeID, ok := middleware.MidwifeID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	leads, err := h.service.List(c.Request.Context(), midwifeID, model.LeadStatus(c.Query("status")))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, leads)
}

func (h *Handler) GetLead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid lead ID", err))
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdateLeadStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid lead ID", err))
		return
	}

	var req model.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) ConvertLead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid lead ID", err))
		return
	}

	converted, err := h.service.Convert(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, converted)
}
