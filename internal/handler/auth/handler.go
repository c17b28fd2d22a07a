package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chronicare/monitor-api/internal/handler"
	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/internal/service/auth"
	"github.com/chronicare/monitor-api/pkg/errors"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public auth endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		authGroup.POST("/reset-password", h.ResetPassword)
	}
}

// RegisterProtectedRoutes mounts the endpoints that require a valid token.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/device-token", h.UpdateDeviceToken)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, errors.BadRequest("invalid request body", err))
		return
	}

	result, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	message := "registered"
	if result.EnrollmentPending {
		message = "registered, doctor assignment pending"
	}
	handler.RespondSuccess(c, http.StatusCreated, message, result)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, errors.BadRequest("invalid request body", err))
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusOK, "logged in", result)
}

func (h *Handler) UpdateDeviceToken(c *gin.Context) {
	var req model.DeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, errors.BadRequest("invalid request body", err))
		return
	}

	scope, ok := handler.CallerScope(c)
	if !ok {
		handler.RespondError(c, errors.Unauthorized(nil))
		return
	}

	if err := h.service.UpdateDeviceToken(c.Request.Context(), scope.UserID, req.DeviceToken); err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusOK, "device token updated", nil)
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, errors.BadRequest("invalid request body", err))
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		handler.RespondError(c, err)
		return
	}

	// Same response whether or not the account exists.
	handler.RespondSuccess(c, http.StatusOK, "if the account exists, a reset email was sent", nil)
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, errors.BadRequest("invalid request body", err))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondSuccess(c, http.StatusOK, "password reset", nil)
}
