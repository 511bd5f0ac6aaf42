package booking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ruanmelo/agenda-api/internal/handler"
	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/service/booking"
)

// Handler serves the public, unauthenticated guest booking surface.
type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/public")
	{
		public.GET("/providers/:id", h.GetProvider)
		public.GET("/providers/:id/availability", h.GetAvailability)
		public.POST("/bookings", h.Book)
	}
}

func (h *Handler) GetProvider(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
		return
	}

	provider, err := h.service.Provider(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrUnknownProvider) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("provider not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	// Public view: display data only.
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"id":   provider.ID,
		"name": provider.Name,
	}))
}

func (h *Handler) GetAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
		return
	}
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("date is required"))
		return
	}

	slots, err := h.service.AvailableSlots(c.Request.Context(), id, date)
	if err != nil {
		if errors.Is(err, booking.ErrUnknownProvider) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("provider not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) Book(c *gin.Context) {
	var req model.GuestBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewBindingErrorResponse(err))
		return
	}

	result, err := h.service.Book(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, handler.NewErrorResponse(err.Error()))
		case errors.Is(err, booking.ErrSlotUnavailable):
			c.JSON(http.StatusConflict, handler.NewErrorResponse("Este horário não está mais disponível. Por favor, escolha outro."))
		case errors.Is(err, booking.ErrPastDate):
			c.JSON(http.StatusUnprocessableEntity, handler.NewErrorResponse(err.Error()))
		case errors.Is(err, booking.ErrUnknownProvider):
			c.JSON(http.StatusNotFound, handler.NewErrorResponse(err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		}
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(result))
}
