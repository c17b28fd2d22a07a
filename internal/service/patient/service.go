package patient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/chronicare/monitor-api/internal/access"
	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/internal/repository"
	"github.com/chronicare/monitor-api/pkg/errors"
)

type Service struct {
	repo     repository.PatientRepository
	userRepo repository.UserRepository
}

func NewService(repo repository.PatientRepository, userRepo repository.UserRepository) *Service {
	return &Service{repo: repo, userRepo: userRepo}
}

// Get returns a patient visible to the caller. Out-of-scope patients
// surface as not found so existence is never leaked.
func (s *Service) Get(ctx context.Context, scope access.Scope, id uuid.UUID) (*model.PatientDetail, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(patient) {
		return nil, errors.NotFound("patient", nil)
	}
	return s.detail(ctx, patient)
}

func (s *Service) GetByUserID(ctx context.Context, scope access.Scope, userID uuid.UUID) (*model.PatientDetail, error) {
	patient, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(patient) {
		return nil, errors.NotFound("patient", nil)
	}
	return s.detail(ctx, patient)
}

// List returns the patients assigned to the calling clinician.
func (s *Service) List(ctx context.Context, scope access.Scope) ([]*model.PatientDetail, error) {
	if !scope.Clinician() {
		return nil, errors.Forbidden("clinician role required")
	}

	patients, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, err
	}

	details := make([]*model.PatientDetail, 0, len(patients))
	for _, p := range patients {
		d, err := s.detail(ctx, p)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// Update applies the mutable patient fields. Only the assigned doctor may
// update; condition is immutable and not part of the request shape.
func (s *Service) Update(ctx context.Context, scope access.Scope, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if scope.Role != model.RoleDoctor || !scope.Allows(patient) {
		return nil, errors.NotFound("patient", nil)
	}

	if err := unmarshalPatientJSON(patient); err != nil {
		return nil, fmt.Errorf("failed to unmarshal patient fields: %w", err)
	}

	if req.AssignedNurse != nil {
		nurseID, err := uuid.Parse(*req.AssignedNurse)
		if err != nil {
			return nil, errors.BadRequest("invalid nurse id", err)
		}
		nurse, err := s.userRepo.Get(ctx, nurseID)
		if err != nil {
			return nil, errors.NotFound("nurse", err)
		}
		if nurse.Role != model.RoleNurse {
			return nil, errors.BadRequest("assigned nurse must have nurse role", nil)
		}
		patient.AssignedNurse = &nurseID
	}
	if req.Baseline != nil {
		patient.Baseline = req.Baseline
	}
	if req.MedicalHistory != nil {
		patient.MedicalHistory = req.MedicalHistory
	}
	if req.IsActive != nil {
		patient.IsActive = *req.IsActive
	}

	if err := marshalPatientJSON(patient); err != nil {
		return nil, fmt.Errorf("failed to marshal patient fields: %w", err)
	}
	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) detail(ctx context.Context, patient *model.Patient) (*model.PatientDetail, error) {
	if err := unmarshalPatientJSON(patient); err != nil {
		return nil, fmt.Errorf("failed to unmarshal patient fields: %w", err)
	}

	detail := &model.PatientDetail{Patient: *patient}
	if user, err := s.userRepo.Get(ctx, patient.UserID); err == nil {
		detail.User = user.Public()
	}
	return detail, nil
}

func marshalPatientJSON(patient *model.Patient) error {
	if patient.Baseline != nil {
		data, err := json.Marshal(patient.Baseline)
		if err != nil {
			return err
		}
		patient.BaselineJSON = string(data)
	}
	if patient.MedicalHistory != nil {
		data, err := json.Marshal(patient.MedicalHistory)
		if err != nil {
			return err
		}
		patient.MedicalHistJSON = string(data)
	}
	return nil
}

func unmarshalPatientJSON(patient *model.Patient) error {
	if patient.BaselineJSON != "" {
		var baseline model.Baseline
		if err := json.Unmarshal([]byte(patient.BaselineJSON), &baseline); err != nil {
			return err
		}
		patient.Baseline = &baseline
	}
	if patient.MedicalHistJSON != "" {
		var history model.MedicalHistory
		if err := json.Unmarshal([]byte(patient.MedicalHistJSON), &history); err != nil {
			return err
		}
		patient.MedicalHistory = &history
	}
	return nil
}
