package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chronicare/monitor-api/internal/access"
	"github.com/chronicare/monitor-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateDeviceToken(ctx context.Context, id uuid.UUID, token string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	// List returns patients visible to the scope, newest first.
	List(ctx context.Context, scope access.Scope) ([]*model.Patient, error)
	// DoctorLoads aggregates active doctors with their current patient
	// counts for the assignment balancer.
	DoctorLoads(ctx context.Context) ([]model.DoctorLoad, error)
}

type SymptomLogRepository interface {
	Create(ctx context.Context, log *model.SymptomLog) error
	Get(ctx context.Context, id uuid.UUID) (*model.SymptomLog, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, filter *model.SymptomHistoryFilter) ([]*model.SymptomLog, error)
	// ListFlagged returns flagged, not-yet-reviewed logs for patients
	// visible to the scope, newest first, capped at limit.
	ListFlagged(ctx context.Context, scope access.Scope, limit int) ([]*model.SymptomLog, error)
	MarkReviewed(ctx context.Context, id uuid.UUID, doctorNotes string) (*model.SymptomLog, error)
}

type AlertRepository interface {
	Create(ctx context.Context, alert *model.EmergencyAlert) error
	Get(ctx context.Context, id uuid.UUID) (*model.EmergencyAlert, error)
	Update(ctx context.Context, alert *model.EmergencyAlert) error
	// ListOpen returns active and acknowledged alerts for patients visible
	// to the scope, newest first.
	ListOpen(ctx context.Context, scope access.Scope) ([]*model.EmergencyAlert, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*model.EmergencyAlert, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

type TokenRepository interface {
	CreateResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	GetResetToken(ctx context.Context, token string) (uuid.UUID, error)
	DeleteResetToken(ctx context.Context, token string) error
}
