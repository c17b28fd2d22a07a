package patient

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronicare/monitor-api/internal/access"
	"github.com/chronicare/monitor-api/internal/model"
	"github.com/chronicare/monitor-api/pkg/errors"
)

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
	copied := *p
	return &copied, nil
}

func (r *fakePatientRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Patient, error) {
	for _, p := range r.patients {
		if p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, errors.NotFound("patient", nil)
}

func (r *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	copied := *p
	r.patients[p.ID] = &copied
	return nil
}

func (r *fakePatientRepo) List(_ context.Context, scope access.Scope) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range r.patients {
		if scope.Allows(p) {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePatientRepo) DoctorLoads(_ context.Context) ([]model.DoctorLoad, error) {
	return nil, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("user", nil)
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.NotFound("user", nil)
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) UpdateDeviceToken(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

func seedPatient(doctorID uuid.UUID) *model.Patient {
	return &model.Patient{
		Base:           model.Base{ID: uuid.New()},
		UserID:         uuid.New(),
		Condition:      model.ConditionThyroid,
		AssignedDoctor: doctorID,
		IsActive:       true,
	}
}

func TestGetOutOfScopeIsNotFound(t *testing.T) {
	doctorID := uuid.New()
	patient := seedPatient(doctorID)
	svc := NewService(newFakePatientRepo(patient), newFakeUserRepo())

	detail, err := svc.Get(context.Background(), access.Scope{Role: model.RoleDoctor, UserID: doctorID}, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, detail.ID)

	otherDoctor := access.Scope{Role: model.RoleDoctor, UserID: uuid.New()}
	_, err = svc.Get(context.Background(), otherDoctor, patient.ID)
	assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))
}

func TestListRequiresClinician(t *testing.T) {
	svc := NewService(newFakePatientRepo(), newFakeUserRepo())

	_, err := svc.List(context.Background(), access.Scope{Role: model.RolePatient, UserID: uuid.New()})
	assert.Equal(t, errors.ErrForbidden, errors.CodeOf(err))
}

func TestListScopedToAssignedDoctor(t *testing.T) {
	doctorID := uuid.New()
	mine := seedPatient(doctorID)
	other := seedPatient(uuid.New())
	svc := NewService(newFakePatientRepo(mine, other), newFakeUserRepo())

	patients, err := svc.List(context.Background(), access.Scope{Role: model.RoleDoctor, UserID: doctorID})
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, mine.ID, patients[0].ID)
}

func TestUpdateAssignsNurse(t *testing.T) {
	doctorID := uuid.New()
	patient := seedPatient(doctorID)
	nurse := &model.User{Base: model.Base{ID: uuid.New()}, Role: model.RoleNurse}
	svc := NewService(newFakePatientRepo(patient), newFakeUserRepo(nurse))

	nurseID := nurse.ID.String()
	updated, err := svc.Update(context.Background(),
		access.Scope{Role: model.RoleDoctor, UserID: doctorID},
		patient.ID,
		&model.UpdatePatientRequest{AssignedNurse: &nurseID},
	)
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedNurse)
	assert.Equal(t, nurse.ID, *updated.AssignedNurse)
}

func TestUpdateRejectsNonNurseAssignment(t *testing.T) {
	doctorID := uuid.New()
	patient := seedPatient(doctorID)
	doctor := &model.User{Base: model.Base{ID: uuid.New()}, Role: model.RoleDoctor}
	svc := NewService(newFakePatientRepo(patient), newFakeUserRepo(doctor))

	badID := doctor.ID.String()
	_, err := svc.Update(context.Background(),
		access.Scope{Role: model.RoleDoctor, UserID: doctorID},
		patient.ID,
		&model.UpdatePatientRequest{AssignedNurse: &badID},
	)
	assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))
}

func TestUpdateDeniedForNonDoctorRoles(t *testing.T) {
	doctorID := uuid.New()
	patient := seedPatient(doctorID)
	svc := NewService(newFakePatientRepo(patient), newFakeUserRepo())

	active := false
	req := &model.UpdatePatientRequest{IsActive: &active}

	owner := access.Scope{Role: model.RolePatient, UserID: patient.UserID}
	_, err := svc.Update(context.Background(), owner, patient.ID, req)
	assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))

	nurseID := uuid.New()
	patient.AssignedNurse = &nurseID
	nurse := access.Scope{Role: model.RoleNurse, UserID: nurseID}
	_, err = svc.Update(context.Background(), nurse, patient.ID, req)
	assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))
}

func TestUpdateBaselineRoundTrips(t *testing.T) {
	doctorID := uuid.New()
	patient := seedPatient(doctorID)
	repo := newFakePatientRepo(patient)
	svc := NewService(repo, newFakeUserRepo())

	tsh := 2.1
	_, err := svc.Update(context.Background(),
		access.Scope{Role: model.RoleDoctor, UserID: doctorID},
		patient.ID,
		&model.UpdatePatientRequest{Baseline: &model.Baseline{TSHLevel: &tsh, Notes: "stable"}},
	)
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), access.Scope{Role: model.RoleDoctor, UserID: doctorID}, patient.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Baseline)
	require.NotNil(t, detail.Baseline.TSHLevel)
	assert.Equal(t, tsh, *detail.Baseline.TSHLevel)
	assert.Equal(t, "stable", detail.Baseline.Notes)
}
