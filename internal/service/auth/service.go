package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chronicare/monitor-api/internal/assignment"
	"github.com/chronicare/monitor-api/internal/email"
	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/internal/repository"
	"github.com/chronicare/monitor-api/pkg/auth"
	"github.com/chronicare/monitor-api/pkg/errors"
	"github.com/chronicare/monitor-api/pkg/logger"
	"github.com/chronicare/monitor-api/pkg/metrics"
	"github.com/chronicare/monitor-api/pkg/security"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
	bcryptCost       = 12
)

type Service struct {
	userRepo    repository.UserRepository
	patientRepo repository.PatientRepository
	tokenRepo   repository.TokenRepository
	jwtSvc      auth.JWTService
	hasher      security.PasswordHasher
	emailSvc    email.Service
	resetExpiry time.Duration
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

func NewService(
	userRepo repository.UserRepository,
	patientRepo repository.PatientRepository,
	tokenRepo repository.TokenRepository,
	jwtSvc auth.JWTService,
	emailSvc email.Service,
	resetExpiry time.Duration,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Service {
	return &Service{
		userRepo:    userRepo,
		patientRepo: patientRepo,
		tokenRepo:   tokenRepo,
		jwtSvc:      jwtSvc,
		hasher:      security.NewBcryptHasher(bcryptCost),
		emailSvc:    emailSvc,
		resetExpiry: resetExpiry,
		metrics:     metrics,
		logger:      logger,
	}
}

// Register creates a user and, for patients, enrolls them with the
// least-loaded doctor. When no doctor is available the user is still
// created, no patient record is written, and the result reports enrollment
// as pending so the caller knows clinical oversight is not yet in place.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.RegistrationResult, error) {
	if req.Role == model.RolePatient && req.Condition == "" {
		return nil, errors.Validation("condition")
	}
	if req.Role == model.RolePatient && !req.Condition.Valid() {
		return nil, errors.BadRequest(fmt.Sprintf("unknown condition %q", req.Condition), nil)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, errors.Conflict("user with this email already exists")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.BadRequest("invalid password", err)
	}

	now := time.Now()
	user := &model.User{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Phone:        req.Phone,
		Status:       model.UserStatusActive,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	result := &model.RegistrationResult{User: user.Public()}

	if req.Role == model.RolePatient {
		patient, enrollErr := s.enroll(ctx, user, req.Condition)
		if enrollErr != nil {
			if errors.CodeOf(enrollErr) != errors.ErrUnassignable {
				return nil, enrollErr
			}
			// Registration still succeeds; a patient record must never
			// exist without a valid doctor reference.
			result.EnrollmentPending = true
			s.metrics.EnrollmentsPending.Inc()
			s.logger.Warn("no doctor available, enrollment deferred", "user_id", user.ID.String())
		} else {
			result.Patient = patient
		}
	}

	token, _, err := s.jwtSvc.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	result.Token = token

	return result, nil
}

func (s *Service) enroll(ctx context.Context, user *model.User, condition model.Condition) (*model.Patient, error) {
	loads, err := s.patientRepo.DoctorLoads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate doctor loads: %w", err)
	}

	doctorID, ok := assignment.Pick(loads)
	if !ok {
		return nil, errors.Unassignable("no doctor available for assignment")
	}

	now := time.Now()
	patient := &model.Patient{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:         user.ID,
		Condition:      condition,
		AssignedDoctor: doctorID,
		Baseline:       &model.Baseline{},
		MedicalHistory: &model.MedicalHistory{},
		IsActive:       true,
	}
	if err := marshalPatientJSON(patient); err != nil {
		return nil, fmt.Errorf("failed to marshal patient fields: %w", err)
	}

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func marshalPatientJSON(patient *model.Patient) error {
	baseline, err := json.Marshal(patient.Baseline)
	if err != nil {
		return err
	}
	history, err := json.Marshal(patient.MedicalHistory)
	if err != nil {
		return err
	}
	patient.BaselineJSON = string(baseline)
	patient.MedicalHistJSON = string(history)
	return nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.Unauthorized(err)
	}

	if user.Status == model.UserStatusLocked {
		if time.Since(user.LastLoginAttempt) < lockoutDuration {
			return nil, errors.Unauthorized(fmt.Errorf("account locked"))
		}
		user.Status = model.UserStatusActive
		user.LoginAttempts = 0
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		user.LoginAttempts++
		user.LastLoginAttempt = time.Now()
		if user.LoginAttempts >= maxLoginAttempts {
			user.Status = model.UserStatusLocked
		}
		if updateErr := s.userRepo.Update(ctx, user); updateErr != nil {
			return nil, fmt.Errorf("failed to update login attempts: %w", updateErr)
		}
		return nil, errors.Unauthorized(err)
	}

	user.LoginAttempts = 0
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update login timestamp: %w", err)
	}

	token, expiresAt, err := s.jwtSvc.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.LoginResult{Token: token, ExpiresAt: expiresAt, User: user.Public()}, nil
}

// UpdateDeviceToken stores the caller's push token. Delivery to the token
// is handled elsewhere.
func (s *Service) UpdateDeviceToken(ctx context.Context, userID uuid.UUID, token string) error {
	return s.userRepo.UpdateDeviceToken(ctx, userID, token)
}

func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		// Do not reveal whether the address exists.
		return nil
	}

	token := uuid.New().String()
	if err := s.tokenRepo.CreateResetToken(ctx, user.ID, token, time.Now().Add(s.resetExpiry)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.emailSvc.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.logger.Error(err, "failed to send reset mail", "user_id", user.ID.String())
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.tokenRepo.GetResetToken(ctx, token)
	if err != nil {
		return errors.BadRequest("invalid or expired reset token", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return errors.BadRequest("invalid password", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.tokenRepo.DeleteResetToken(ctx, token); err != nil {
		s.logger.Error(err, "failed to delete used reset token")
	}
	return nil
}
