package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chronicare/monitor-api/internal/handler"
	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/internal/service/patient"
	"github.com/chronicare/monitor-api/pkg/errors"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.GET("/user/:userId", h.GetByUser)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
	}
}

// ListPatients returns the caller's visible patients. For a patient caller
// this is their own record only.
func (h *Handler) ListPatients(c *gin.Context) {
	scope, ok := handler.CallerScope(c)
	if !ok {
		handler.RespondError(c, errors.Unauthorized(nil))
		return
	}

	patients, err := h.service.List(c.Request.Context(), scope)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusOK, "", patients)
}

// GetByUser resolves a patient record by owning user ID. Patients use this
// with their own ID; clinicians can look up any assigned patient.
func (h *Handler) GetByUser(c *gin.Context) {
	scope, ok := handler.CallerScope(c)
	if !ok {
		handler.RespondError(c, errors.Unauthorized(nil))
		return
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		handler.RespondError(c, errors.BadRequest("invalid user ID", err))
		return
	}

	detail, err := h.service.GetByUserID(c.Request.Context(), scope, userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusOK, "", detail)
}

func (h *Handler) GetPatient(c *gin.Context) {
	scope, ok := handler.CallerScope(c)
	if !ok {
		handler.RespondError(c, errors.Unauthorized(nil))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, errors.BadRequest("invalid patient ID", err))
		return
	}

	detail, err := h.service.Get(c.Request.Context(), scope, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusOK, "", detail)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	scope, ok := handler.CallerScope(c)
	if !ok {
		handler.RespondError(c, errors.Unauthorized(nil))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, errors.BadRequest("invalid patient ID", err))
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, errors.BadRequest("invalid request body", err))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), scope, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusOK, "patient updated", updated)
}
