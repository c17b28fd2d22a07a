package alert

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chronicare/monitor-api/internal/access"
	"github.com/chronicare/monitor-api/internal/handler"
	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/internal/service/alert"
	"github.com/chronicare/monitor-api/pkg/errors"
)

type Handler struct {
	service *alert.Service
}

func NewHandler(service *alert.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	alerts := r.Group("/alerts")
	{
		alerts.POST("/emergency", h.TriggerAlert)
		alerts.GET("/active", h.ListOpen)
		alerts.GET("/patient/:patientId", h.ListHistory)
		alerts.PUT("/:id/acknowledge", h.AcknowledgeAlert)
		alerts.PUT("/:id/resolve", h.ResolveAlert)
		alerts.PUT("/:id/cancel", h.CancelAlert)
	}
}

func (h *Handler) TriggerAlert(c *gin.Context) {
	scope, ok := handler.CallerScope(c)
	if !ok {
		handler.RespondError(c, errors.Unauthorized(nil))
		return
	}

	var req model.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, errors.BadRequest("invalid request body", err))
		return
	}

	created, err := h.service.Trigger(c.Request.Context(), scope, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusCreated, "emergency alert triggered", created)
}

func (h *Handler) ListOpen(c *gin.Context) {
	scope, ok := handler.CallerScope(c)
	if !ok {
		handler.RespondError(c, errors.Unauthorized(nil))
		return
	}

	alerts, err := h.service.ListOpen(c.Request.Context(), scope)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusOK, "", alerts)
}

func (h *Handler) ListHistory(c *gin.Context) {
	scope, ok := handler.CallerScope(c)
	if !ok {
		handler.RespondError(c, errors.Unauthorized(nil))
		return
	}

	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		handler.RespondError(c, errors.BadRequest("invalid patient ID", err))
		return
	}

	alerts, err := h.service.History(c.Request.Context(), scope, patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusOK, "", alerts)
}

func (h *Handler) AcknowledgeAlert(c *gin.Context) {
	h.transition(c, h.service.Acknowledge, "alert acknowledged")
}

func (h *Handler) CancelAlert(c *gin.Context) {
	h.transition(c, h.service.Cancel, "alert cancelled")
}

func (h *Handler) ResolveAlert(c *gin.Context) {
	scope, ok := handler.CallerScope(c)
	if !ok {
		handler.RespondError(c, errors.Unauthorized(nil))
		return
	}

	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, errors.BadRequest("invalid alert ID", err))
		return
	}

	var req model.ResolveAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, errors.BadRequest("invalid request body", err))
		return
	}

	resolved, err := h.service.Resolve(c.Request.Context(), scope, alertID, req.Notes)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusOK, "alert resolved", resolved)
}

func (h *Handler) transition(
	c *gin.Context,
	fn func(ctx context.Context, scope access.Scope, alertID uuid.UUID) (*model.EmergencyAlert, error),
	message string,
) {
	scope, ok := handler.CallerScope(c)
	if !ok {
		handler.RespondError(c, errors.Unauthorized(nil))
		return
	}

	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, errors.BadRequest("invalid alert ID", err))
		return
	}

	updated, err := fn(c.Request.Context(), scope, alertID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusOK, message, updated)
}
