package report

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ruanmelo/agenda-api/internal/handler"
	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/repository"
	"github.com/ruanmelo/agenda-api/internal/service/report"
)

type Handler struct {
	service *report.Service
}

func NewHandler(service *report.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	scheduled := r.Group("/scheduled-reports")
	{
		scheduled.POST("", h.Create)
		scheduled.GET("", h.List)
		scheduled.GET("/:id", h.Get)
		scheduled.PUT("/:id", h.Update)
		scheduled.DELETE("/:id", h.Delete)
		scheduled.POST("/:id/toggle", h.Toggle)
		scheduled.POST("/:id/execute", h.Execute)
		scheduled.GET("/:id/history", h.History)
		scheduled.POST("/executions/:id/complete", h.CompleteExecution)
	}

	reports := r.Group("/reports")
	{
		reports.GET("/appointments", h.Appointments)
		reports.GET("/clients", h.Clients)
		reports.GET("/summary", h.Summary)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateScheduledReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewBindingErrorResponse(err))
		return
	}

	session := handler.SessionFromContext(c)
	r, err := h.service.Create(c.Request.Context(), session.UserID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(r))
}

func (h *Handler) List(c *gin.Context) {
	session := handler.SessionFromContext(c)
	reports, err := h.service.List(c.Request.Context(), session.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(reports))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	r, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(r))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	var req model.UpdateScheduledReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewBindingErrorResponse(err))
		return
	}

	r, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(r))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) Toggle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	r, err := h.service.Toggle(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(r))
}

func (h *Handler) Execute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	exec, err := h.service.RunNow(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, handler.NewSuccessResponse(exec))
}

func (h *Handler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	executions, err := h.service.History(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(executions))
}

type completeExecutionRequest struct {
	Status  string  `json:"status" binding:"required,oneof=sent failed"`
	FileURL *string `json:"file_url"`
}

// CompleteExecution closes a pending history row. Called back by the external
// automation system once a run finishes.
func (h *Handler) CompleteExecution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid execution ID"))
		return
	}

	var req completeExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewBindingErrorResponse(err))
		return
	}

	if err := h.service.CompleteExecution(c.Request.Context(), id, model.ExecutionStatus(req.Status), req.FileURL); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) Appointments(c *gin.Context) {
	filters, ok := h.parseFilters(c)
	if !ok {
		return
	}

	rows, err := h.service.QueryAppointments(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rows))
}

func (h *Handler) Clients(c *gin.Context) {
	filters, ok := h.parseFilters(c)
	if !ok {
		return
	}

	rows, err := h.service.QueryClients(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rows))
}

func (h *Handler) Summary(c *gin.Context) {
	filters, ok := h.parseFilters(c)
	if !ok {
		return
	}

	summary, err := h.service.QuerySummary(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(summary))
}

func (h *Handler) parseFilters(c *gin.Context) (*model.ReportQueryFilters, bool) {
	filters := &model.ReportQueryFilters{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Status:    c.Query("status"),
	}
	if v := c.Query("provider_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
			return nil, false
		}
		filters.ProviderID = &id
	}
	return filters, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("report not found"))
		return
	}
	c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
}
