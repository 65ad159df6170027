package midwife

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hebamio/midwife-api/internal/middleware"
	"github.com/hebamio/midwife-api/internal/model"
	"github.com/hebamio/midwife-api/internal/service/midwife"
	apperrors "github.com/hebamio/midwife-api/pkg/errors"
	"github.com/hebamio/midwife-api/pkg/httputil"
)

type Handler struct {
	service *midwife.Service
}

func NewHandler(service *midwife.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public midwife directory.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	midwives := r.Group("/midwives")
	{
		midwives.GET("", h.ListMidwives)
		midwives.GET("/:id", h.GetMidwife)
	}
}

// RegisterProtectedRoutes mounts the self-service profile endpoints.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	profile := r.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.PUT("/timetable", h.UpdateTimetable)
	}
}

func (h *Handler) ListMidwives(c *gin.Context) {
	midwives, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, midwives)
}

func (h *Handler) GetMidwife(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid midwife ID", err))
		return
	}

	mw, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, mw)
}

func (h *Handler) GetProfile(c *gin.Context) {
	midwifeID, ok := middleware.MidwifeID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	mw, err := h.service.Get(c.Request.Context(), midwifeID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, mw)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	midwifeID, ok := middleware.MidwifeID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	var req model.UpdateMidwifeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	mw, err := h.service.Update(c.Request.Context(), midwifeID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, mw)
}

type updateTimetableRequest struct {
	Timetable model.Timetable        `json:"timetable" binding:"required"`
	Durations model.ServiceDurations `json:"service_durations" binding:"required"`
}

func (h *Handler) UpdateTimetable(c *gin.Context) {
	midwifeID, ok := middleware.MidwifeID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	var req updateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	if err := h.service.UpdateTimetable(c.Request.Context(), midwifeID, req.Timetable, req.Durations); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "timetable updated")
}
