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

const defaultHistoryLimit = 30

type symptomLogRepository struct {
	db *sqlx.DB
}

func NewSymptomLogRepository(db *sqlx.DB) repository.SymptomLogRepository {
	return &symptomLogRepository{db: db}
}

func (r *symptomLogRepository) Create(ctx context.Context, log *model.SymptomLog) error {
	query := `
		INSERT INTO symptom_logs (id, patient_id, logged_at, condition, symptoms,
			severity, flagged_by_system, notes, reviewed_by_doctor, doctor_notes,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.PatientID,
		log.LoggedAt,
		log.Condition,
		[]byte(log.Symptoms),
		log.Severity,
		log.FlaggedBySystem,
		log.Notes,
		log.ReviewedByDoctor,
		log.DoctorNotes,
		log.CreatedAt,
		log.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create symptom log: %w", err)
	}
	return nil
}

func (r *symptomLogRepository) Get(ctx context.Context, id uuid.UUID) (*model.SymptomLog, error) {
	query := `SELECT * FROM symptom_logs WHERE id = $1`
	var log model.SymptomLog
	if err := r.db.GetContext(ctx, &log, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("symptom log", err)
		}
		return nil, fmt.Errorf("failed to get symptom log: %w", err)
	}
	return &log, nil
}

func (r *symptomLogRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, filter *model.SymptomHistoryFilter) ([]*model.SymptomLog, error) {
	query := `SELECT * FROM symptom_logs WHERE patient_id = $1`
	args := []interface{}{patientID}

	if filter != nil && filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += fmt.Sprintf(" AND logged_at >= $%d", len(args))
	}
	if filter != nil && filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += fmt.Sprintf(" AND logged_at <= $%d", len(args))
	}

	limit := defaultHistoryLimit
	if filter != nil && filter.Limit > 0 {
		limit = filter.Limit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY logged_at DESC LIMIT $%d", len(args))

	var logs []*model.SymptomLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list symptom logs: %w", err)
	}
	return logs, nil
}

func (r *symptomLogRepository) ListFlagged(ctx context.Context, scope access.Scope, limit int) ([]*model.SymptomLog, error) {
	clause, arg, err := patientScopeClause(scope, 1)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT s.* FROM symptom_logs s
		JOIN patients p ON p.id = s.patient_id
		WHERE %s AND s.flagged_by_system = true AND s.reviewed_by_doctor = false
		ORDER BY s.logged_at DESC
		LIMIT $2
	`, clause)

	var logs []*model.SymptomLog
	if err := r.db.SelectContext(ctx, &logs, query, arg, limit); err != nil {
		return nil, fmt.Errorf("failed to list flagged symptom logs: %w", err)
	}
	return logs, nil
}

func (r *symptomLogRepository) MarkReviewed(ctx context.Context, id uuid.UUID, doctorNotes string) (*model.SymptomLog, error) {
	query := `
		UPDATE symptom_logs
		SET reviewed_by_doctor = true, doctor_notes = $1, updated_at = $2
		WHERE id = $3
		RETURNING *
	`
	var log model.SymptomLog
	if err := r.db.GetContext(ctx, &log, query, doctorNotes, time.Now(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("symptom log", err)
		}
		return nil, fmt.Errorf("failed to mark symptom log reviewed: %w", err)
	}
	return &log, nil
}
