package appointment

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hebamio/midwife-api/internal/middleware"
	"github.com/hebamio/midwife-api/internal/model"
	"github.com/hebamio/midwife-api/internal/service/appointment"
	apperrors "github.com/hebamio/midwife-api/pkg/errors"
	"github.com/hebamio/midwife-api/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public availability and cancellation surface
// used by the booking screens.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/public/appointments")
	{
		public.GET("/monthly-view", h.MonthlyView)
		public.GET("/slots", h.AvailableSlots)
		public.POST("/bulk-cancel", h.BulkCancel)
	}
}

// RegisterProtectedRoutes mounts the midwife-facing appointment CRUD.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
		appointments.POST("/:id/reschedule", h.RescheduleAppointment)
		appointments.POST("/:id/reactivate", h.ReactivateAppointment)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	// A midwife only books into her own calendar.
	if midwifeID, ok := middleware.MidwifeID(c); ok {
		req.MidwifeID = midwifeID.String()
	}

	appt, err := h.service.Create(c.Request.Context(), &req, model.AppointmentStatusActive)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, appt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	appt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{
		ServiceCode: c.Query("service"),
		Status:      model.AppointmentStatus(c.Query("status")),
		FromDate:    c.Query("from"),
		ToDate:      c.Query("to"),
	}

	if midwifeID, ok := middleware.MidwifeID(c); ok {
		filters.MidwifeID = midwifeID
	}
	if id := c.Query("client_id"); id != "" {
		clientID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid client ID", err))
			return
		}
		filters.ClientID = clientID
	}

	appointments, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	appt, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	appt, err := h.service.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	var req model.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	appt, err := h.service.Reschedule(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) ReactivateAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	var req model.ReactivateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	appt, err := h.service.Reactivate(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) MonthlyView(c *gin.Context) {
	midwifeID, err := uuid.Parse(c.Query("midwife_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid midwife ID", err))
		return
	}
	serviceCode := c.Query("service")
	if serviceCode == "" {
		httputil.RespondWithError(c, apperrors.BadRequest("service is required", nil))
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid year", err))
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid month", err))
		return
	}

	view, err := h.service.MonthlyView(c.Request.Context(), midwifeID, serviceCode, year, time.Month(month))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, view)
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	midwifeID, err := uuid.Parse(c.Query("midwife_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid midwife ID", err))
		return
	}
	serviceCode := c.Query("service")
	if serviceCode == "" {
		httputil.RespondWithError(c, apperrors.BadRequest("service is required", nil))
		return
	}
	date := c.Query("date")
	if date == "" {
		httputil.RespondWithError(c, apperrors.BadRequest("date is required", nil))
		return
	}

	slots, err := h.service.AvailableSlots(c.Request.Context(), midwifeID, serviceCode, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slots)
}

func (h *Handler) BulkCancel(c *gin.Context) {
	var req model.BulkCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	result, err := h.service.BulkCancel(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}
