package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chronicare/monitor-api/internal/access"
	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/internal/repository"
	apperrors "github.com/chronicare/monitor-api/pkg/errors"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

// patientScopeClause translates a caller scope into a predicate over the
// patients table (aliased p), parameterized as $n.
func patientScopeClause(scope access.Scope, n int) (string, interface{}, error) {
	switch scope.Role {
	case model.RoleDoctor:
		return fmt.Sprintf("p.assigned_doctor = $%d", n), scope.UserID, nil
	case model.RoleNurse:
		return fmt.Sprintf("p.assigned_nurse = $%d", n), scope.UserID, nil
	case model.RolePatient:
		return fmt.Sprintf("p.user_id = $%d", n), scope.UserID, nil
	}
	return "", nil, apperrors.Forbidden("unknown caller role")
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (id, user_id, condition, assigned_doctor, assigned_nurse,
			baseline, medical_history, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.UserID,
		patient.Condition,
		patient.AssignedDoctor,
		patient.AssignedNurse,
		patient.BaselineJSON,
		patient.MedicalHistJSON,
		patient.IsActive,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE user_id = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient by user: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET assigned_nurse = $1, baseline = $2, medical_history = $3,
			is_active = $4, updated_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.AssignedNurse,
		patient.BaselineJSON,
		patient.MedicalHistJSON,
		patient.IsActive,
		time.Now(),
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, scope access.Scope) ([]*model.Patient, error) {
	clause, arg, err := patientScopeClause(scope, 1)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT p.* FROM patients p WHERE %s ORDER BY p.created_at DESC`, clause)
	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, arg); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) DoctorLoads(ctx context.Context) ([]model.DoctorLoad, error) {
	query := `
		SELECT u.id AS doctor_id, COUNT(p.id) AS patient_count
		FROM users u
		LEFT JOIN patients p ON p.assigned_doctor = u.id
		WHERE u.role = $1 AND u.is_active = true
		GROUP BY u.id
		ORDER BY u.created_at
	`
	var loads []model.DoctorLoad
	if err := r.db.SelectContext(ctx, &loads, query, model.RoleDoctor); err != nil {
		return nil, fmt.Errorf("failed to aggregate doctor loads: %w", err)
	}
	return loads, nil
}
