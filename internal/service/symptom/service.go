package symptom

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chronicare/monitor-api/internal/access"
	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/internal/repository"
	"github.com/chronicare/monitor-api/internal/triage"
	"github.com/chronicare/monitor-api/pkg/errors"
	"github.com/chronicare/monitor-api/pkg/logger"
	"github.com/chronicare/monitor-api/pkg/metrics"
)

// flaggedQueueLimit caps the clinician review queue.
const flaggedQueueLimit = 50

type Service struct {
	repo        repository.SymptomLogRepository
	patientRepo repository.PatientRepository
	outboxRepo  repository.OutboxRepository
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

func NewService(
	repo repository.SymptomLogRepository,
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

// Log records a daily symptom submission. The patient's condition selects
// the payload variant, triage computes severity and the review flag, and
// the persisted log carries the computed values regardless of what the
// caller supplied.
func (s *Service) Log(ctx context.Context, scope access.Scope, req *model.CreateSymptomLogRequest) (*model.SymptomLog, error) {
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

	reading, err := model.DecodeReading(patient.Condition, req.Symptoms)
	if err != nil {
		return nil, errors.BadRequest("invalid symptoms payload", err)
	}

	result := triage.Classify(reading, req.Severity)
	s.metrics.TriageClassifications.WithLabelValues(string(patient.Condition), string(result.Severity)).Inc()

	now := time.Now()
	log := &model.SymptomLog{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID:       patient.ID,
		LoggedAt:        now,
		Condition:       patient.Condition,
		Symptoms:        req.Symptoms,
		Severity:        result.Severity,
		FlaggedBySystem: result.Flagged,
		Notes:           req.Notes,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to create symptom log: %w", err)
	}

	if result.Flagged {
		s.metrics.FlaggedLogs.Inc()
		s.emitEvent(ctx, model.EventSymptomFlagged, map[string]interface{}{
			"log_id":     log.ID,
			"patient_id": patient.ID,
			"condition":  patient.Condition,
			"severity":   result.Severity,
		})
	}

	return log, nil
}

// History returns a patient's log history, newest first.
func (s *Service) History(ctx context.Context, scope access.Scope, patientID uuid.UUID, filter *model.SymptomHistoryFilter) ([]*model.SymptomLog, error) {
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(patient) {
		return nil, errors.NotFound("patient", nil)
	}
	return s.repo.ListByPatient(ctx, patientID, filter)
}

// FlaggedQueue returns unreviewed flagged logs for the caller's assigned
// patients, newest first, capped at 50.
func (s *Service) FlaggedQueue(ctx context.Context, scope access.Scope) ([]*model.SymptomLog, error) {
	if !scope.Clinician() {
		return nil, errors.Forbidden("clinician role required")
	}
	return s.repo.ListFlagged(ctx, scope, flaggedQueueLimit)
}

// Review marks a log as reviewed with the doctor's notes. Repeating a
// review is idempotent.
func (s *Service) Review(ctx context.Context, scope access.Scope, logID uuid.UUID, doctorNotes string) (*model.SymptomLog, error) {
	if scope.Role != model.RoleDoctor {
		return nil, errors.Forbidden("doctor role required")
	}

	log, err := s.repo.Get(ctx, logID)
	if err != nil {
		return nil, err
	}

	patient, err := s.patientRepo.Get(ctx, log.PatientID)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(patient) {
		return nil, errors.NotFound("symptom log", nil)
	}

	return s.repo.MarkReviewed(ctx, logID, doctorNotes)
}

func (s *Service) emitEvent(ctx context.Context, eventType string, payload map[string]interface{}) {
	event, err := model.NewOutboxEvent(eventType, payload)
	if err != nil {
		s.logger.Error(err, "failed to build outbox event", "type", eventType)
		return
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to write outbox event", "type", eventType)
	}
}
