package model

import (
	"time"

	"github.com/google/uuid"
)

// AlertStatus is the lifecycle state of an emergency alert.
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
	AlertStatusCancelled    AlertStatus = "cancelled"
)

// Open reports whether the alert still needs clinician attention:
// acknowledged alerts remain visible until resolved.
func (s AlertStatus) Open() bool {
	return s == AlertStatusActive || s == AlertStatusAcknowledged
}

type AlertPriority string

const (
	PriorityLow      AlertPriority = "low"
	PriorityMedium   AlertPriority = "medium"
	PriorityHigh     AlertPriority = "high"
	PriorityCritical AlertPriority = "critical"
)

func (p AlertPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Location is where the SOS was triggered. All fields optional.
type Location struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
}

// EmergencyAlert is a patient-triggered SOS tracked through the lifecycle
// active -> acknowledged -> resolved, with cancelled reachable from active.
type EmergencyAlert struct {
	Base
	PatientID      uuid.UUID     `json:"patient_id" db:"patient_id"`
	TriggeredAt    time.Time     `json:"triggered_at" db:"triggered_at"`
	Location       *Location     `json:"location" db:"-"`
	LocationJSON   string        `json:"-" db:"location"`
	Notes          string        `json:"notes" db:"notes"`
	Priority       AlertPriority `json:"priority" db:"priority"`
	Status         AlertStatus   `json:"status" db:"status"`
	ResponderID    *uuid.UUID    `json:"responder_id" db:"responder_id"`
	ResponseTime   *time.Time    `json:"response_time" db:"response_time"`
	ResolutionTime *time.Time    `json:"resolution_time" db:"resolution_time"`
}

type CreateAlertRequest struct {
	PatientID string        `json:"patientId" binding:"required,uuid"`
	Location  *Location     `json:"location"`
	Notes     string        `json:"notes" binding:"max=1000"`
	Priority  AlertPriority `json:"priority" binding:"omitempty,oneof=low medium high critical"`
}

type ResolveAlertRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}
