package symptom

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chronicare/monitor-api/internal/handler"
	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/internal/service/symptom"
	"github.com/chronicare/monitor-api/pkg/errors"
)

type Handler struct {
	service *symptom.Service
}

func NewHandler(service *symptom.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	symptoms := r.Group("/symptoms")
	{
		symptoms.POST("/log", h.CreateLog)
		symptoms.GET("/flagged", h.ListFlagged)
		symptoms.GET("/patient/:patientId", h.ListHistory)
		symptoms.PUT("/:id/review", h.ReviewLog)
	}
}

func (h *Handler) CreateLog(c *gin.Context) {
	scope, ok := handler.CallerScope(c)
	if !ok {
		handler.RespondError(c, errors.Unauthorized(nil))
		return
	}

	var req model.CreateSymptomLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, errors.BadRequest("invalid request body", err))
		return
	}

	log, err := h.service.Log(c.Request.Context(), scope, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusCreated, "symptom log recorded", log)
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

	filter, err := historyFilter(c)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	logs, err := h.service.History(c.Request.Context(), scope, patientID, filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusOK, "", logs)
}

// ListFlagged returns the unreviewed flagged logs visible to a clinician,
// most recent first.
func (h *Handler) ListFlagged(c *gin.Context) {
	scope, ok := handler.CallerScope(c)
	if !ok {
		handler.RespondError(c, errors.Unauthorized(nil))
		return
	}

	logs, err := h.service.FlaggedQueue(c.Request.Context(), scope)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusOK, "", logs)
}

func (h *Handler) ReviewLog(c *gin.Context) {
	scope, ok := handler.CallerScope(c)
	if !ok {
		handler.RespondError(c, errors.Unauthorized(nil))
		return
	}

	logID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, errors.BadRequest("invalid log ID", err))
		return
	}

	var req model.ReviewSymptomLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, errors.BadRequest("invalid request body", err))
		return
	}

	log, err := h.service.Review(c.Request.Context(), scope, logID, req.DoctorNotes)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusOK, "symptom log reviewed", log)
}

func historyFilter(c *gin.Context) (*model.SymptomHistoryFilter, error) {
	filter := &model.SymptomHistoryFilter{}

	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.BadRequest("invalid startDate", err)
		}
		filter.StartDate = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.BadRequest("invalid endDate", err)
		}
		filter.EndDate = &t
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, errors.BadRequest("invalid limit", err)
		}
		filter.Limit = n
	}

	return filter, nil
}
