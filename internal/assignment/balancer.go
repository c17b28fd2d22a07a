// Package assignment picks the doctor for a newly enrolled patient.
package assignment

import (
	"github.com/google/uuid"

	"github.com/chronicare/monitor-api/internal/model"
)

// Pick selects the candidate with the fewest currently assigned patients,
// breaking ties by input order. It returns false when no candidate exists;
// the registration flow must then create the user without a patient record
// and report enrollment as pending.
//
// The counts are read before the write that follows, so two concurrent
// registrations can pick the same doctor. Load is approximately balanced,
// not exactly.
func Pick(candidates []model.DoctorLoad) (uuid.UUID, bool) {
	if len(candidates) == 0 {
		return uuid.Nil, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.PatientCount < best.PatientCount {
			best = c
		}
	}
	return best.DoctorID, true
}
