package model

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest creates a user and, for patients, a clinical enrollment.
type RegisterRequest struct {
	Name      string    `json:"name" binding:"required"`
	Email     string    `json:"email" binding:"required,email"`
	Password  string    `json:"password" binding:"required,min=8"`
	Role      string    `json:"role" binding:"required,oneof=patient nurse doctor"`
	Phone     *string   `json:"phone"`
	Condition Condition `json:"condition" binding:"omitempty,condition"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type DeviceTokenRequest struct {
	DeviceToken string `json:"deviceToken" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// TokenClaims is the authenticated caller identity extracted from a JWT.
type TokenClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegistrationResult is the outcome of a registration. EnrollmentPending is
// set when the user was created but no doctor was available to assign, so no
// patient record exists yet.
type RegistrationResult struct {
	Token             string      `json:"token"`
	User              *PublicUser `json:"user"`
	Patient           *Patient    `json:"patient,omitempty"`
	EnrollmentPending bool        `json:"enrollment_pending,omitempty"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *PublicUser `json:"user"`
}
