package webhooklog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruanmelo/agenda-api/internal/handler"
	"github.com/ruanmelo/agenda-api/pkg/webhook"
)

// Handler exposes the in-memory webhook delivery log for the debug panel.
type Handler struct {
	log *webhook.DeliveryLog
}

func NewHandler(log *webhook.DeliveryLog) *Handler {
	return &Handler{log: log}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	webhooks := r.Group("/webhooks")
	{
		webhooks.GET("/logs", h.List)
		webhooks.DELETE("/logs", h.Clear)
	}
}

func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.log.List()))
}

func (h *Handler) Clear(c *gin.Context) {
	h.log.Clear()
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
