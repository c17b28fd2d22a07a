// Package alertflow is the emergency alert lifecycle state machine:
//
//	active -> acknowledged -> resolved
//	active -> cancelled
//
// Resolved and cancelled are terminal. Transition functions mutate the alert
// in place and return an invalid-transition error without touching it when
// the move is not allowed.
package alertflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/pkg/errors"
)

// New builds an alert in the initial active state. Priority defaults to
// high and location to an empty structure when unspecified.
func New(patientID uuid.UUID, location *model.Location, notes string, priority model.AlertPriority, now time.Time) *model.EmergencyAlert {
	if !priority.Valid() {
		priority = model.PriorityHigh
	}
	if location == nil {
		location = &model.Location{}
	}
	return &model.EmergencyAlert{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID:   patientID,
		TriggeredAt: now,
		Location:    location,
		Notes:       notes,
		Priority:    priority,
		Status:      model.AlertStatusActive,
	}
}

// Acknowledge moves an active alert to acknowledged, recording the
// responder and response time. Re-acknowledging an already acknowledged
// alert is idempotent and keeps the original responder. Acknowledging a
// terminal alert is an invalid transition, never a silent no-op.
func Acknowledge(alert *model.EmergencyAlert, responderID uuid.UUID, now time.Time) error {
	switch alert.Status {
	case model.AlertStatusActive:
		alert.Status = model.AlertStatusAcknowledged
		alert.ResponderID = &responderID
		alert.ResponseTime = &now
		alert.UpdatedAt = now
		return nil
	case model.AlertStatusAcknowledged:
		return nil
	default:
		return errors.InvalidTransition(string(alert.Status), string(model.AlertStatusAcknowledged))
	}
}

// Resolve closes an active or acknowledged alert. Notes overwrite only when
// explicitly supplied; an empty notes argument preserves what is there.
func Resolve(alert *model.EmergencyAlert, notes string, now time.Time) error {
	if !alert.Status.Open() {
		return errors.InvalidTransition(string(alert.Status), string(model.AlertStatusResolved))
	}

	alert.Status = model.AlertStatusResolved
	alert.ResolutionTime = &now
	alert.UpdatedAt = now
	if notes != "" {
		alert.Notes = notes
	}
	return nil
}

// Cancel retracts an alert that has not been acknowledged yet.
func Cancel(alert *model.EmergencyAlert, now time.Time) error {
	if alert.Status != model.AlertStatusActive {
		return errors.InvalidTransition(string(alert.Status), string(model.AlertStatusCancelled))
	}

	alert.Status = model.AlertStatusCancelled
	alert.ResolutionTime = &now
	alert.UpdatedAt = now
	return nil
}
