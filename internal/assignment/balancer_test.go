package assignment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/chronicare/monitor-api/internal/model"
)

func TestPickSelectsMinimumLoad(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	chosen, ok := Pick([]model.DoctorLoad{
		{DoctorID: a, PatientCount: 3},
		{DoctorID: b, PatientCount: 1},
		{DoctorID: c, PatientCount: 1},
	})

	assert.True(t, ok)
	assert.Equal(t, b, chosen, "ties break by input order")
}

func TestPickSingleCandidate(t *testing.T) {
	a := uuid.New()
	chosen, ok := Pick([]model.DoctorLoad{{DoctorID: a, PatientCount: 40}})
	assert.True(t, ok)
	assert.Equal(t, a, chosen)
}

func TestPickEmpty(t *testing.T) {
	chosen, ok := Pick(nil)
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, chosen)
}

func TestPickMinimumLast(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	chosen, ok := Pick([]model.DoctorLoad{
		{DoctorID: a, PatientCount: 2},
		{DoctorID: b, PatientCount: 0},
	})
	assert.True(t, ok)
	assert.Equal(t, b, chosen)
}
