package availability

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ruanmelo/agenda-api/internal/handler"
	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/repository"
	"github.com/ruanmelo/agenda-api/internal/service/availability"
)

type Handler struct {
	service *availability.Service
}

func NewHandler(service *availability.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	availabilities := r.Group("/availabilities")
	{
		availabilities.POST("", h.Create)
		availabilities.GET("", h.List)
		availabilities.GET("/:id", h.Get)
		availabilities.PUT("/:id", h.Update)
		availabilities.DELETE("/:id", h.Delete)
		availabilities.POST("/:id/toggle", h.Toggle)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewBindingErrorResponse(err))
		return
	}

	session := handler.SessionFromContext(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	av, err := h.service.Create(c.Request.Context(), session.UserID, &req)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidWindow) || errors.Is(err, availability.ErrInvalidShape) {
			c.JSON(http.StatusUnprocessableEntity, handler.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(av))
}

func (h *Handler) List(c *gin.Context) {
	session := handler.SessionFromContext(c)
	providerID := session.UserID
	if v := c.Query("provider_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
			return
		}
		providerID = id
	}

	availabilities, err := h.service.ListByProvider(c.Request.Context(), providerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(availabilities))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid availability ID"))
		return
	}

	av, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("availability not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(av))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid availability ID"))
		return
	}

	var req model.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewBindingErrorResponse(err))
		return
	}

	av, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("availability not found"))
		case errors.Is(err, availability.ErrInvalidWindow):
			c.JSON(http.StatusUnprocessableEntity, handler.NewErrorResponse(err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(av))
}

func (h *Handler) Toggle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid availability ID"))
		return
	}

	av, err := h.service.Toggle(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("availability not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(av))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid availability ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("availability not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
