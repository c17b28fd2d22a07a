package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chronicare/monitor-api/internal/access"
	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/internal/repository"
	apperrors "github.com/chronicare/monitor-api/pkg/errors"
)

type alertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) repository.AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *model.EmergencyAlert) error {
	query := `
		INSERT INTO emergency_alerts (id, patient_id, triggered_at, location, notes,
			priority, status, responder_id, response_time, resolution_time,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.PatientID,
		alert.TriggeredAt,
		alert.LocationJSON,
		alert.Notes,
		alert.Priority,
		alert.Status,
		alert.ResponderID,
		alert.ResponseTime,
		alert.ResolutionTime,
		alert.CreatedAt,
		alert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *alertRepository) Get(ctx context.Context, id uuid.UUID) (*model.EmergencyAlert, error) {
	query := `SELECT * FROM emergency_alerts WHERE id = $1`
	var alert model.EmergencyAlert
	if err := r.db.GetContext(ctx, &alert, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("alert", err)
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &alert, nil
}

func (r *alertRepository) Update(ctx context.Context, alert *model.EmergencyAlert) error {
	query := `
		UPDATE emergency_alerts
		SET status = $1, notes = $2, responder_id = $3, response_time = $4,
			resolution_time = $5, updated_at = $6
		WHERE id = $7
	`
	_, err := r.db.ExecContext(ctx, query,
		alert.Status,
		alert.Notes,
		alert.ResponderID,
		alert.ResponseTime,
		alert.ResolutionTime,
		alert.UpdatedAt,
		alert.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	return nil
}

func (r *alertRepository) ListOpen(ctx context.Context, scope access.Scope) ([]*model.EmergencyAlert, error) {
	clause, arg, err := patientScopeClause(scope, 1)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT a.* FROM emergency_alerts a
		JOIN patients p ON p.id = a.patient_id
		WHERE %s AND a.status IN ($2, $3)
		ORDER BY a.triggered_at DESC
	`, clause)

	var alerts []*model.EmergencyAlert
	err = r.db.SelectContext(ctx, &alerts, query, arg,
		model.AlertStatusActive, model.AlertStatusAcknowledged)
	if err != nil {
		return nil, fmt.Errorf("failed to list open alerts: %w", err)
	}
	return alerts, nil
}

func (r *alertRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*model.EmergencyAlert, error) {
	query := `
		SELECT * FROM emergency_alerts
		WHERE patient_id = $1
		ORDER BY triggered_at DESC
		LIMIT $2
	`
	var alerts []*model.EmergencyAlert
	if err := r.db.SelectContext(ctx, &alerts, query, patientID, limit); err != nil {
		return nil, fmt.Errorf("failed to list patient alerts: %w", err)
	}
	return alerts, nil
}
