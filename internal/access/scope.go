// Package access builds the capability scope of an authenticated caller
// once per request. Repositories translate the scope into query predicates
// and services check individual records against it, so visibility rules are
// enforced in one place instead of being re-derived per endpoint.
package access

import (
	"github.com/google/uuid"

	"github.com/chronicare/monitor-api/internal/model"
)

// Scope is the patient visibility of a caller. Doctors and nurses see the
// patients they are assigned to; patients see only themselves.
type Scope struct {
	Role   string
	UserID uuid.UUID
}

// ForCaller derives the scope from verified token claims.
func ForCaller(claims *model.TokenClaims) Scope {
	return Scope{Role: claims.Role, UserID: claims.UserID}
}

// Clinician reports whether the caller is part of a care team.
func (s Scope) Clinician() bool {
	return s.Role == model.RoleDoctor || s.Role == model.RoleNurse
}

// Allows reports whether the caller may see or act on the given patient.
func (s Scope) Allows(p *model.Patient) bool {
	switch s.Role {
	case model.RoleDoctor:
		return p.AssignedDoctor == s.UserID
	case model.RoleNurse:
		return p.AssignedNurse != nil && *p.AssignedNurse == s.UserID
	case model.RolePatient:
		return p.UserID == s.UserID
	}
	return false
}
