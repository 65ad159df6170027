package booking

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hebamio/midwife-api/internal/middleware"
	"github.com/hebamio/midwife-api/internal/model"
	"github.com/hebamio/midwife-api/internal/service/booking"
	"github.com/hebamio/midwife-api/internal/service/midwife"
	apperrors "github.com/hebamio/midwife-api/pkg/errors"
	"github.com/hebamio/midwife-api/pkg/httputil"
)

type Handler struct {
	service    *booking.Service
	midwifeSvc *midwife.Service
}

func NewHandler(service *booking.Service, midwifeSvc *midwife.Service) *Handler {
	return &Handler{service: service, midwifeSvc: midwifeSvc}
}

// RegisterRoutes mounts the public booking surface.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/public")
	{
		public.GET("/booking/:midwifeID", h.BookingPage)
		public.POST("/phone-bookings", h.CreatePhoneBooking)
		public.GET("/private-service-bookings/:midwifeID/options", h.PrivateServiceOptions)
		public.POST("/private-service-bookings/:midwifeID", h.CreatePrivateServiceBooking)
	}
}

// RegisterProtectedRoutes mounts the midwife-facing callback queue.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	phone := r.Group("/phone-bookings")
	{
		phone.GET("", h.ListPhoneBookings)
		phone.POST("/:id/close", h.ClosePhoneBooking)
	}
}

func (h *Handler) BookingPage(c *gin.Context) {
	midwifeID, err := uuid.Parse(c.Param("midwifeID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid midwife ID", err))
		return
	}

	page, err := h.midwifeSvc.BookingPage(c.Request.Context(), midwifeID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, page)
}

func (h *Handler) CreatePhoneBooking(c *gin.Context) {
	var req model.CreatePhoneBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	created, err := h.service.CreatePhoneBooking(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) PrivateServiceOptions(c *gin.Context) {
	midwifeID, err := uuid.Parse(c.Param("midwifeID"))
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

	options, err := h.service.PrivateServiceOptions(c.Request.Context(), midwifeID, serviceCode, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, options)
}

func (h *Handler) CreatePrivateServiceBooking(c *gin.Context) {
	midwifeID, err := uuid.Parse(c.Param("midwifeID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid midwife ID", err))
		return
	}

	var req model.CreatePrivateServiceBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	appt, err := h.service.CreatePrivateServiceBooking(c.Request.Context(), midwifeID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, appt)
}

func (h *Handler) ListPhoneBookings(c *gin.Context) {
	midwifeID, ok := middleware.MidwifeID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	bookings, err := h.service.ListPhoneBookings(c.Request.Context(), midwifeID, c.Query("status"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, bookings)
}

func (h *Handler) ClosePhoneBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid phone booking ID", err))
		return
	}

	if err := h.service.ClosePhoneBooking(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "phone booking closed")
}
