package model

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RolePatient = "patient"
	RoleNurse   = "nurse"
	RoleDoctor  = "doctor"
)

// User status constants
const (
	UserStatusActive = "active"
	UserStatusLocked = "locked"
)

// User represents a system user: a patient, nurse or doctor identity.
type User struct {
	Base
	Name             string     `json:"name" db:"name"`
	Email            string     `json:"email" db:"email"`
	Password         string     `json:"password,omitempty" db:"-"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	Role             string     `json:"role" db:"role"`
	Phone            *string    `json:"phone" db:"phone"`
	DeviceToken      *string    `json:"-" db:"device_token"`
	Status           string     `json:"status" db:"status"`
	IsActive         bool       `json:"is_active" db:"is_active"`
	LastLoginAt      *time.Time `json:"last_login_at" db:"last_login_at"`
	LoginAttempts    int        `json:"-" db:"login_attempts"`
	LastLoginAttempt time.Time  `json:"-" db:"last_login_attempt"`
}

func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleNurse, RoleDoctor:
		return true
	}
	return false
}

// DoctorLoad is a doctor candidate with its current assigned-patient count,
// as aggregated for the assignment balancer.
type DoctorLoad struct {
	DoctorID     uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientCount int       `db:"patient_count" json:"patient_count"`
}

// PublicUser is the safe projection returned to callers.
type PublicUser struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Role  string  `json:"role"`
	Phone *string `json:"phone,omitempty"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Phone: u.Phone,
	}
}
