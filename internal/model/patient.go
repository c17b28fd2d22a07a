package model

import (
	"github.com/google/uuid"
)

// Patient is the clinical enrollment record backing a user with role patient.
// Condition is fixed at enrollment; AssignedDoctor must reference a user with
// role doctor and is chosen once by the assignment balancer.
type Patient struct {
	Base
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	Condition       Condition       `json:"condition" db:"condition"`
	AssignedDoctor  uuid.UUID       `json:"assigned_doctor" db:"assigned_doctor"`
	AssignedNurse   *uuid.UUID      `json:"assigned_nurse" db:"assigned_nurse"`
	Baseline        *Baseline       `json:"baseline" db:"-"`
	BaselineJSON    string          `json:"-" db:"baseline"`
	MedicalHistory  *MedicalHistory `json:"medical_history" db:"-"`
	MedicalHistJSON string          `json:"-" db:"medical_history"`
	IsActive        bool            `json:"is_active" db:"is_active"`
}

// Baseline is the condition-specific snapshot taken at enrollment. Only the
// fields matching the patient's condition are meaningful.
type Baseline struct {
	HbA1c      *float64 `json:"hba1c,omitempty"`
	Creatinine *float64 `json:"creatinine,omitempty"`
	TBStage    *string  `json:"tbStage,omitempty"`
	TSHLevel   *float64 `json:"tshLevel,omitempty"`
	RehabStage *string  `json:"rehabStage,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

type MedicalHistory struct {
	Allergies          []string `json:"allergies,omitempty"`
	CurrentMedications []string `json:"currentMedications,omitempty"`
	PreviousConditions []string `json:"previousConditions,omitempty"`
}

// UpdatePatientRequest carries the mutable subset of a patient record.
// Condition is deliberately absent: it is immutable after enrollment.
type UpdatePatientRequest struct {
	AssignedNurse  *string         `json:"assigned_nurse"`
	Baseline       *Baseline       `json:"baseline"`
	MedicalHistory *MedicalHistory `json:"medical_history"`
	IsActive       *bool           `json:"is_active"`
}

// PatientDetail joins a patient with its user identity for responses.
type PatientDetail struct {
	Patient
	User *PublicUser `json:"user,omitempty"`
}
