package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/chronicare/monitor-api/internal/model"
)

func TestScopeAllows(t *testing.T) {
	doctor := uuid.New()
	nurse := uuid.New()
	patientUser := uuid.New()

	patient := &model.Patient{
		UserID:         patientUser,
		AssignedDoctor: doctor,
		AssignedNurse:  &nurse,
	}

	tests := []struct {
		name    string
		scope   Scope
		allowed bool
	}{
		{"assigned doctor", Scope{Role: model.RoleDoctor, UserID: doctor}, true},
		{"other doctor", Scope{Role: model.RoleDoctor, UserID: uuid.New()}, false},
		{"assigned nurse", Scope{Role: model.RoleNurse, UserID: nurse}, true},
		{"other nurse", Scope{Role: model.RoleNurse, UserID: uuid.New()}, false},
		{"owning patient", Scope{Role: model.RolePatient, UserID: patientUser}, true},
		{"other patient", Scope{Role: model.RolePatient, UserID: uuid.New()}, false},
		{"unknown role", Scope{Role: "admin", UserID: doctor}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.scope.Allows(patient))
		})
	}
}

func TestScopeAllowsNoNurseAssigned(t *testing.T) {
	nurse := uuid.New()
	patient := &model.Patient{UserID: uuid.New(), AssignedDoctor: uuid.New()}

	scope := Scope{Role: model.RoleNurse, UserID: nurse}
	assert.False(t, scope.Allows(patient))
}

func TestClinician(t *testing.T) {
	assert.True(t, Scope{Role: model.RoleDoctor}.Clinician())
	assert.True(t, Scope{Role: model.RoleNurse}.Clinician())
	assert.False(t, Scope{Role: model.RolePatient}.Clinician())
}
