package appointment

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ruanmelo/agenda-api/internal/handler"
	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/repository"
	"github.com/ruanmelo/agenda-api/internal/service/appointment"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.Create)
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Get)
		appointments.PUT("/:id", h.Update)
		appointments.DELETE("/:id", h.Delete)
		appointments.POST("/:id/confirm", h.Confirm)
		appointments.POST("/:id/cancel", h.Cancel)
		appointments.POST("/:id/webhook-retry", h.RetryWebhook)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewBindingErrorResponse(err))
		return
	}

	session := handler.SessionFromContext(c)
	apt, err := h.service.Create(c.Request.Context(), session, &req)
	if err != nil {
		if errors.Is(err, appointment.ErrPastDate) {
			c.JSON(http.StatusUnprocessableEntity, handler.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("appointment not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.AppointmentFilters{
		Status:    model.AppointmentStatus(c.Query("status")),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	if v := c.Query("provider_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
			return
		}
		filters.ProviderID = &id
	}
	if v := c.Query("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
			return
		}
		filters.UserID = &id
	}

	appointments, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewBindingErrorResponse(err))
		return
	}

	apt, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) Confirm(c *gin.Context) {
	h.transition(c, h.service.Confirm)
}

func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("appointment not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) RetryWebhook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.service.RetryWebhook(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, handler.NewSuccessResponse(gin.H{"message": "webhook re-enqueued"}))
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*model.Appointment, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := fn(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("appointment not found"))
	case errors.Is(err, appointment.ErrInvalidTransition), errors.Is(err, appointment.ErrPastDate):
		c.JSON(http.StatusUnprocessableEntity, handler.NewErrorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
	}
}
