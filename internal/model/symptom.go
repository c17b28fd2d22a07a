package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// FlexNumber accepts a JSON number or a quoted string. Mobile clients have
// historically submitted tshLevel and cravingIntensity as either. A value
// that does not parse as a float is kept verbatim and simply reports !ok.
type FlexNumber string

func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexNumber(s)
		return nil
	}
	*f = FlexNumber(data)
	return nil
}

func (f FlexNumber) MarshalJSON() ([]byte, error) {
	if f == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(string(f), 64); err == nil {
		return []byte(f), nil
	}
	return json.Marshal(string(f))
}

// Float returns the parsed value and whether parsing succeeded.
func (f FlexNumber) Float() (float64, bool) {
	if f == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(string(f), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Symptom scale values shared by renal swelling/fatigue grading.
const (
	ScaleNone     = "none"
	ScaleMild     = "mild"
	ScaleModerate = "moderate"
	ScaleSevere   = "severe"
)

// Cough frequency grading for TB patients.
const (
	CoughNone       = "none"
	CoughOccasional = "occasional"
	CoughFrequent   = "frequent"
	CoughConstant   = "constant"
)

// SymptomReading is the tagged union over per-condition symptom payloads.
// Each variant carries only the fields meaningful for its condition, so a
// reading can never leak thresholds across conditions.
type SymptomReading interface {
	ReadingCondition() Condition
}

type DiabetesSymptoms struct {
	BloodSugarLevel *float64 `json:"bloodSugarLevel"`
	InsulinDosage   *float64 `json:"insulinDosage"`
	DietAdherence   string   `json:"dietAdherence"`
}

func (DiabetesSymptoms) ReadingCondition() Condition { return ConditionDiabetes }

type RenalFailureSymptoms struct {
	FluidIntake   *float64 `json:"fluidIntake"`
	Swelling      string   `json:"swelling"`
	BloodPressure string   `json:"bloodPressure"`
	Fatigue       string   `json:"fatigue"`
}

func (RenalFailureSymptoms) ReadingCondition() Condition { return ConditionRenalFailure }

type TBSymptoms struct {
	CoughFrequency      string   `json:"coughFrequency"`
	Weight              *float64 `json:"weight"`
	NightSweats         *bool    `json:"nightSweats"`
	MedicationAdherence *bool    `json:"medicationAdherence"`
}

func (TBSymptoms) ReadingCondition() Condition { return ConditionTB }

type ThyroidSymptoms struct {
	TSHLevel            FlexNumber `json:"tshLevel"`
	EnergyLevel         string     `json:"energyLevel"`
	HeartRate           *float64   `json:"heartRate"`
	MedicationAdherence *bool      `json:"medicationAdherence"`
}

func (ThyroidSymptoms) ReadingCondition() Condition { return ConditionThyroid }

type SubstanceAbuseSymptoms struct {
	CravingIntensity       FlexNumber `json:"cravingIntensity"`
	MoodRating             *int       `json:"moodRating"`
	WithdrawalSymptoms     []string   `json:"withdrawalSymptoms"`
	SupportGroupAttendance *bool      `json:"supportGroupAttendance"`
}

func (SubstanceAbuseSymptoms) ReadingCondition() Condition { return ConditionSubstanceAbuse }

// DecodeReading unmarshals a raw symptom payload into the variant for the
// patient's condition. Fields belonging to other conditions are dropped.
func DecodeReading(condition Condition, payload json.RawMessage) (SymptomReading, error) {
	var reading SymptomReading
	switch condition {
	case ConditionDiabetes:
		reading = &DiabetesSymptoms{}
	case ConditionRenalFailure:
		reading = &RenalFailureSymptoms{}
	case ConditionTB:
		reading = &TBSymptoms{}
	case ConditionThyroid:
		reading = &ThyroidSymptoms{}
	case ConditionSubstanceAbuse:
		reading = &SubstanceAbuseSymptoms{}
	default:
		return nil, &UnknownConditionError{Condition: condition}
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, reading); err != nil {
			return nil, err
		}
	}
	return reading, nil
}

// UnknownConditionError reports a condition outside the supported enum.
type UnknownConditionError struct {
	Condition Condition
}

func (e *UnknownConditionError) Error() string {
	return "unknown condition: " + string(e.Condition)
}

// SymptomLog is an append-only daily submission. Severity and FlaggedBySystem
// are always computed by the triage classifier at creation; only the doctor
// review fields change afterwards.
type SymptomLog struct {
	Base
	PatientID        uuid.UUID       `json:"patient_id" db:"patient_id"`
	LoggedAt         time.Time       `json:"logged_at" db:"logged_at"`
	Condition        Condition       `json:"condition" db:"condition"`
	Symptoms         json.RawMessage `json:"symptoms" db:"symptoms"`
	Severity         Severity        `json:"severity" db:"severity"`
	FlaggedBySystem  bool            `json:"flagged_by_system" db:"flagged_by_system"`
	Notes            string          `json:"notes" db:"notes"`
	ReviewedByDoctor bool            `json:"reviewed_by_doctor" db:"reviewed_by_doctor"`
	DoctorNotes      string          `json:"doctor_notes" db:"doctor_notes"`
}

// CreateSymptomLogRequest is the inbound submission. Severity is a
// non-binding default: triage rules may escalate it but never consult it to
// decide flagging.
type CreateSymptomLogRequest struct {
	PatientID string          `json:"patientId" binding:"required,uuid"`
	Symptoms  json.RawMessage `json:"symptoms" binding:"required"`
	Severity  *Severity       `json:"severity"`
	Notes     string          `json:"notes" binding:"max=500"`
}

type ReviewSymptomLogRequest struct {
	DoctorNotes string `json:"doctorNotes" binding:"max=1000"`
}

// SymptomHistoryFilter bounds a patient's log history query.
type SymptomHistoryFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}
