package symptom

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronicare/monitor-api/internal/access"
	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/pkg/errors"
	"github.com/chronicare/monitor-api/pkg/logger"
	"github.com/chronicare/monitor-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("symptom_service_test")

type fakeLogRepo struct {
	logs map[uuid.UUID]*model.SymptomLog
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{logs: make(map[uuid.UUID]*model.SymptomLog)}
}

func (r *fakeLogRepo) Create(_ context.Context, log *model.SymptomLog) error {
	r.logs[log.ID] = log
	return nil
}

func (r *fakeLogRepo) Get(_ context.Context, id uuid.UUID) (*model.SymptomLog, error) {
	log, ok := r.logs[id]
	if !ok {
		return nil, errors.NotFound("symptom log", nil)
	}
	return log, nil
}

func (r *fakeLogRepo) ListByPatient(_ context.Context, patientID uuid.UUID, _ *model.SymptomHistoryFilter) ([]*model.SymptomLog, error) {
	var out []*model.SymptomLog
	for _, log := range r.logs {
		if log.PatientID == patientID {
			out = append(out, log)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) ListFlagged(_ context.Context, _ access.Scope, limit int) ([]*model.SymptomLog, error) {
	var out []*model.SymptomLog
	for _, log := range r.logs {
		if log.FlaggedBySystem && !log.ReviewedByDoctor {
			out = append(out, log)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeLogRepo) MarkReviewed(_ context.Context, id uuid.UUID, doctorNotes string) (*model.SymptomLog, error) {
	log, ok := r.logs[id]
	if !ok {
		return nil, errors.NotFound("symptom log", nil)
	}
	log.ReviewedByDoctor = true
	log.DoctorNotes = doctorNotes
	return log, nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func newFakePatientRepo(patients ...*model.Patient) *fakePatientRepo {
	r := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	for _, p := range patients {
		r.patients[p.ID] = p
	}
	return r
}

func (r *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, errors.NotFound("patient", nil)
	}
	return p, nil
}

func (r *fakePatientRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Patient, error) {
	for _, p := range r.patients {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, errors.NotFound("patient", nil)
}

func (r *fakePatientRepo) Update(_ context.Context, _ *model.Patient) error { return nil }

func (r *fakePatientRepo) List(_ context.Context, _ access.Scope) ([]*model.Patient, error) {
	return nil, nil
}

func (r *fakePatientRepo) DoctorLoads(_ context.Context) ([]model.DoctorLoad, error) {
	return nil, nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEvents(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return r.events, nil
}

func (r *fakeOutboxRepo) MarkProcessed(_ context.Context, _ uuid.UUID) error { return nil }

func (r *fakeOutboxRepo) MarkFailed(_ context.Context, _ uuid.UUID, _ string) error { return nil }

func testPatient(condition model.Condition) (*model.Patient, access.Scope, access.Scope) {
	doctorID := uuid.New()
	userID := uuid.New()
	patient := &model.Patient{
		Base:           model.Base{ID: uuid.New()},
		UserID:         userID,
		Condition:      condition,
		AssignedDoctor: doctorID,
		IsActive:       true,
	}
	patientScope := access.Scope{Role: model.RolePatient, UserID: userID}
	doctorScope := access.Scope{Role: model.RoleDoctor, UserID: doctorID}
	return patient, patientScope, doctorScope
}

func newTestService(logRepo *fakeLogRepo, patientRepo *fakePatientRepo, outbox *fakeOutboxRepo) *Service {
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	return NewService(logRepo, patientRepo, outbox, testMetrics, log)
}

func TestLogClassifiesAndFlags(t *testing.T) {
	patient, scope, _ := testPatient(model.ConditionDiabetes)
	logRepo := newFakeLogRepo()
	outbox := &fakeOutboxRepo{}
	svc := newTestService(logRepo, newFakePatientRepo(patient), outbox)

	log, err := svc.Log(context.Background(), scope, &model.CreateSymptomLogRequest{
		PatientID: patient.ID.String(),
		Symptoms:  json.RawMessage(`{"bloodSugarLevel": 260}`),
	})
	require.NoError(t, err)

	assert.Equal(t, model.SeverityCritical, log.Severity)
	assert.True(t, log.FlaggedBySystem)
	assert.Equal(t, model.ConditionDiabetes, log.Condition)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventSymptomFlagged, outbox.events[0].EventType)
}

func TestLogNormalReadingNotFlagged(t *testing.T) {
	patient, scope, _ := testPatient(model.ConditionDiabetes)
	outbox := &fakeOutboxRepo{}
	svc := newTestService(newFakeLogRepo(), newFakePatientRepo(patient), outbox)

	log, err := svc.Log(context.Background(), scope, &model.CreateSymptomLogRequest{
		PatientID: patient.ID.String(),
		Symptoms:  json.RawMessage(`{"bloodSugarLevel": 120}`),
	})
	require.NoError(t, err)

	assert.Equal(t, model.SeverityNormal, log.Severity)
	assert.False(t, log.FlaggedBySystem)
	assert.Empty(t, outbox.events)
}

func TestLogCallerSeverityNeverFlags(t *testing.T) {
	patient, scope, _ := testPatient(model.ConditionDiabetes)
	outbox := &fakeOutboxRepo{}
	svc := newTestService(newFakeLogRepo(), newFakePatientRepo(patient), outbox)

	critical := model.SeverityCritical
	log, err := svc.Log(context.Background(), scope, &model.CreateSymptomLogRequest{
		PatientID: patient.ID.String(),
		Symptoms:  json.RawMessage(`{"bloodSugarLevel": 120}`),
		Severity:  &critical,
	})
	require.NoError(t, err)

	// The caller default raises severity but a normal reading is never
	// queued for review on the caller's say-so.
	assert.Equal(t, model.SeverityCritical, log.Severity)
	assert.False(t, log.FlaggedBySystem)
	assert.Empty(t, outbox.events)
}

func TestLogStringNumberTolerated(t *testing.T) {
	patient, scope, _ := testPatient(model.ConditionSubstanceAbuse)
	svc := newTestService(newFakeLogRepo(), newFakePatientRepo(patient), &fakeOutboxRepo{})

	log, err := svc.Log(context.Background(), scope, &model.CreateSymptomLogRequest{
		PatientID: patient.ID.String(),
		Symptoms:  json.RawMessage(`{"cravingIntensity": "8"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, model.SeverityCritical, log.Severity)
	assert.True(t, log.FlaggedBySystem)
}

func TestLogOutOfScopePatientIsNotFound(t *testing.T) {
	patient, _, _ := testPatient(model.ConditionDiabetes)
	svc := newTestService(newFakeLogRepo(), newFakePatientRepo(patient), &fakeOutboxRepo{})

	stranger := access.Scope{Role: model.RolePatient, UserID: uuid.New()}
	_, err := svc.Log(context.Background(), stranger, &model.CreateSymptomLogRequest{
		PatientID: patient.ID.String(),
		Symptoms:  json.RawMessage(`{"bloodSugarLevel": 120}`),
	})
	assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))
}

func TestLogRequiresPatientRole(t *testing.T) {
	patient, _, doctorScope := testPatient(model.ConditionDiabetes)
	outbox := &fakeOutboxRepo{}
	logRepo := newFakeLogRepo()
	svc := newTestService(logRepo, newFakePatientRepo(patient), outbox)

	// Even the assigned doctor cannot record entries on the patient's behalf.
	_, err := svc.Log(context.Background(), doctorScope, &model.CreateSymptomLogRequest{
		PatientID: patient.ID.String(),
		Symptoms:  json.RawMessage(`{"bloodSugarLevel": 260}`),
	})
	assert.Equal(t, errors.ErrForbidden, errors.CodeOf(err))
	assert.Empty(t, logRepo.logs)
	assert.Empty(t, outbox.events)
}

func TestFlaggedQueueRequiresClinician(t *testing.T) {
	svc := newTestService(newFakeLogRepo(), newFakePatientRepo(), &fakeOutboxRepo{})

	_, err := svc.FlaggedQueue(context.Background(), access.Scope{Role: model.RolePatient, UserID: uuid.New()})
	assert.Equal(t, errors.ErrForbidden, errors.CodeOf(err))
}

func TestReviewDoctorOnly(t *testing.T) {
	patient, patientScope, doctorScope := testPatient(model.ConditionTB)
	logRepo := newFakeLogRepo()
	svc := newTestService(logRepo, newFakePatientRepo(patient), &fakeOutboxRepo{})

	adherence := false
	log, err := svc.Log(context.Background(), patientScope, &model.CreateSymptomLogRequest{
		PatientID: patient.ID.String(),
		Symptoms:  mustJSON(t, model.TBSymptoms{MedicationAdherence: &adherence}),
	})
	require.NoError(t, err)
	require.True(t, log.FlaggedBySystem)

	_, err = svc.Review(context.Background(), patientScope, log.ID, "noted")
	assert.Equal(t, errors.ErrForbidden, errors.CodeOf(err))

	reviewed, err := svc.Review(context.Background(), doctorScope, log.ID, "increase follow-up")
	require.NoError(t, err)
	assert.True(t, reviewed.ReviewedByDoctor)
	assert.Equal(t, "increase follow-up", reviewed.DoctorNotes)

	// Re-review is idempotent.
	again, err := svc.Review(context.Background(), doctorScope, log.ID, "increase follow-up")
	require.NoError(t, err)
	assert.True(t, again.ReviewedByDoctor)
}

func TestReviewUnassignedDoctorIsNotFound(t *testing.T) {
	patient, patientScope, _ := testPatient(model.ConditionDiabetes)
	logRepo := newFakeLogRepo()
	svc := newTestService(logRepo, newFakePatientRepo(patient), &fakeOutboxRepo{})

	log, err := svc.Log(context.Background(), patientScope, &model.CreateSymptomLogRequest{
		PatientID: patient.ID.String(),
		Symptoms:  json.RawMessage(`{"bloodSugarLevel": 40}`),
	})
	require.NoError(t, err)

	otherDoctor := access.Scope{Role: model.RoleDoctor, UserID: uuid.New()}
	_, err = svc.Review(context.Background(), otherDoctor, log.ID, "noted")
	assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
