package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chronicare/monitor-api/internal/access"
	"github.com/chronicare/monitor-api/internal/alertflow"
	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/internal/repository"
	"github.com/chronicare/monitor-api/pkg/errors"
	"github.com/chronicare/monitor-api/pkg/logger"
	"github.com/chronicare/monitor-api/pkg/metrics"
)

const patientAlertHistoryLimit = 20

type Service struct {
	repo        repository.AlertRepository
	patientRepo repository.PatientRepository
	outboxRepo  repository.OutboxRepository
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

func NewService(
	repo repository.AlertRepository,
	patientRepo repository.PatientRepository,
	outboxRepo repository.OutboxRepository,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		outboxRepo:  outboxRepo,
		metrics:     metrics,
		logger:      logger,
	}
}

// Trigger raises an SOS alert for the caller's own patient record.
func (s *Service) Trigger(ctx context.Context, scope access.Scope, req *model.CreateAlertRequest) (*model.EmergencyAlert, error) {
	if scope.Role != model.RolePatient {
		return nil, errors.Forbidden("patient role required")
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, errors.BadRequest("invalid patient id", err)
	}

	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(patient) {
		return nil, errors.NotFound("patient", nil)
	}

	alert := alertflow.New(patient.ID, req.Location, req.Notes, req.Priority, time.Now())
	if err := marshalLocation(alert); err != nil {
		return nil, fmt.Errorf("failed to marshal location: %w", err)
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	s.metrics.AlertTransitions.WithLabelValues(string(model.AlertStatusActive)).Inc()
	s.emitEvent(ctx, model.EventAlertCreated, alert)
	return alert, nil
}

// Acknowledge assigns the calling clinician as responder on an active
// alert. The alert must belong to one of the caller's assigned patients.
func (s *Service) Acknowledge(ctx context.Context, scope access.Scope, alertID uuid.UUID) (*model.EmergencyAlert, error) {
	alert, err := s.visibleAlert(ctx, scope, alertID, true)
	if err != nil {
		return nil, err
	}

	if err := alertflow.Acknowledge(alert, scope.UserID, time.Now()); err != nil {
		s.metrics.InvalidTransitions.Inc()
		return nil, err
	}

	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	s.metrics.AlertTransitions.WithLabelValues(string(model.AlertStatusAcknowledged)).Inc()
	s.emitEvent(ctx, model.EventAlertAcknowledged, alert)
	return alert, nil
}

// Resolve closes an alert, preserving existing notes when none are given.
func (s *Service) Resolve(ctx context.Context, scope access.Scope, alertID uuid.UUID, notes string) (*model.EmergencyAlert, error) {
	alert, err := s.visibleAlert(ctx, scope, alertID, true)
	if err != nil {
		return nil, err
	}

	if err := alertflow.Resolve(alert, notes, time.Now()); err != nil {
		s.metrics.InvalidTransitions.Inc()
		return nil, err
	}

	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	s.metrics.AlertTransitions.WithLabelValues(string(model.AlertStatusResolved)).Inc()
	s.emitEvent(ctx, model.EventAlertResolved, alert)
	return alert, nil
}

// Cancel retracts an unacknowledged alert. Only the owning patient may
// cancel.
func (s *Service) Cancel(ctx context.Context, scope access.Scope, alertID uuid.UUID) (*model.EmergencyAlert, error) {
	if scope.Role != model.RolePatient {
		return nil, errors.Forbidden("patient role required")
	}

	alert, err := s.visibleAlert(ctx, scope, alertID, false)
	if err != nil {
		return nil, err
	}

	if err := alertflow.Cancel(alert, time.Now()); err != nil {
		s.metrics.InvalidTransitions.Inc()
		return nil, err
	}

	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	s.metrics.AlertTransitions.WithLabelValues(string(model.AlertStatusCancelled)).Inc()
	s.emitEvent(ctx, model.EventAlertCancelled, alert)
	return alert, nil
}

// ListOpen returns active and acknowledged alerts for the caller's
// assigned patients, newest first.
func (s *Service) ListOpen(ctx context.Context, scope access.Scope) ([]*model.EmergencyAlert, error) {
	if !scope.Clinician() {
		return nil, errors.Forbidden("clinician role required")
	}

	alerts, err := s.repo.ListOpen(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, alert := range alerts {
		if err := unmarshalLocation(alert); err != nil {
			return nil, err
		}
	}
	return alerts, nil
}

// History returns a patient's alert history, newest first, capped at 20.
func (s *Service) History(ctx context.Context, scope access.Scope, patientID uuid.UUID) ([]*model.EmergencyAlert, error) {
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(patient) {
		return nil, errors.NotFound("patient", nil)
	}

	alerts, err := s.repo.ListByPatient(ctx, patientID, patientAlertHistoryLimit)
	if err != nil {
		return nil, err
	}
	for _, alert := range alerts {
		if err := unmarshalLocation(alert); err != nil {
			return nil, err
		}
	}
	return alerts, nil
}

// visibleAlert fetches an alert and verifies the caller may act on it.
// Out-of-scope alerts surface as not found so existence is never leaked.
func (s *Service) visibleAlert(ctx context.Context, scope access.Scope, alertID uuid.UUID, clinicianOnly bool) (*model.EmergencyAlert, error) {
	if clinicianOnly && !scope.Clinician() {
		return nil, errors.Forbidden("clinician role required")
	}

	alert, err := s.repo.Get(ctx, alertID)
	if err != nil {
		return nil, err
	}

	patient, err := s.patientRepo.Get(ctx, alert.PatientID)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(patient) {
		return nil, errors.NotFound("alert", nil)
	}

	if err := unmarshalLocation(alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func (s *Service) emitEvent(ctx context.Context, eventType string, alert *model.EmergencyAlert) {
	event, err := model.NewOutboxEvent(eventType, map[string]interface{}{
		"alert_id":   alert.ID,
		"patient_id": alert.PatientID,
		"status":     alert.Status,
		"priority":   alert.Priority,
	})
	if err != nil {
		s.logger.Error(err, "failed to build outbox event", "type", eventType)
		return
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to write outbox event", "type", eventType)
	}
}

func marshalLocation(alert *model.EmergencyAlert) error {
	data, err := json.Marshal(alert.Location)
	if err != nil {
		return err
	}
	alert.LocationJSON = string(data)
	return nil
}

func unmarshalLocation(alert *model.EmergencyAlert) error {
	if alert.LocationJSON == "" {
		return nil
	}
	var loc model.Location
	if err := json.Unmarshal([]byte(alert.LocationJSON), &loc); err != nil {
		return fmt.Errorf("failed to unmarshal location: %w", err)
	}
	alert.Location = &loc
	return nil
}
