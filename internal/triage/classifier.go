// Package triage computes the severity of a symptom submission from the
// per-condition rule tables. Classification is a pure function: callers
// fetch the patient's condition, decode the payload into its condition
// variant, classify, and persist the result themselves.
package triage

import (
	"github.com/chronicare/monitor-api/internal/model"
)

// Blood sugar thresholds for diabetes, mg/dL.
const (
	bloodSugarCriticalLow  = 70
	bloodSugarWarningLow   = 90
	bloodSugarWarningHigh  = 180
	bloodSugarCriticalHigh = 250
)

// TSH thresholds for thyroid patients, mIU/L. Normal range is 0.4-4.0.
const (
	tshCriticalLow  = 0.1
	tshWarningLow   = 0.4
	tshWarningHigh  = 4.0
	tshCriticalHigh = 10
)

// Craving intensity thresholds on the 0-10 self-reported scale.
const (
	cravingWarning  = 5
	cravingCritical = 7
)

// Result is the classification outcome. Flagged is true iff at least one
// condition rule fired; a caller-supplied default severity never flags.
type Result struct {
	Severity model.Severity
	Flagged  bool
}

// Classify reduces all matched rules for the reading's condition to the
// maximum severity (normal < warning < critical). callerDefault seeds the
// reduction so rules can escalate but never lower it. A nil or invalid
// default means normal.
func Classify(reading model.SymptomReading, callerDefault *model.Severity) Result {
	severity := model.SeverityNormal
	if callerDefault != nil && callerDefault.Valid() {
		severity = *callerDefault
	}

	matched := matchRules(reading)
	for _, s := range matched {
		severity = model.MaxSeverity(severity, s)
	}

	return Result{Severity: severity, Flagged: len(matched) > 0}
}

// matchRules returns the severity of every rule that fired for the reading.
// The type switch is exhaustive over the five condition variants.
func matchRules(reading model.SymptomReading) []model.Severity {
	switch r := reading.(type) {
	case *model.DiabetesSymptoms:
		return diabetesRules(r)
	case *model.RenalFailureSymptoms:
		return renalRules(r)
	case *model.TBSymptoms:
		return tbRules(r)
	case *model.ThyroidSymptoms:
		return thyroidRules(r)
	case *model.SubstanceAbuseSymptoms:
		return substanceAbuseRules(r)
	}
	return nil
}

func diabetesRules(r *model.DiabetesSymptoms) []model.Severity {
	if r.BloodSugarLevel == nil {
		return nil
	}
	v := *r.BloodSugarLevel
	if v < bloodSugarCriticalLow || v > bloodSugarCriticalHigh {
		return []model.Severity{model.SeverityCritical}
	}
	if v < bloodSugarWarningLow || v > bloodSugarWarningHigh {
		return []model.Severity{model.SeverityWarning}
	}
	return nil
}

func renalRules(r *model.RenalFailureSymptoms) []model.Severity {
	if r.Swelling == model.ScaleSevere {
		return []model.Severity{model.SeverityCritical}
	}
	if r.Swelling == model.ScaleModerate || r.Fatigue == model.ScaleSevere {
		return []model.Severity{model.SeverityWarning}
	}
	return nil
}

func tbRules(r *model.TBSymptoms) []model.Severity {
	var matched []model.Severity
	if r.MedicationAdherence != nil && !*r.MedicationAdherence {
		matched = append(matched, model.SeverityCritical)
	}
	if r.CoughFrequency == model.CoughConstant || (r.NightSweats != nil && *r.NightSweats) {
		matched = append(matched, model.SeverityWarning)
	}
	return matched
}

func thyroidRules(r *model.ThyroidSymptoms) []model.Severity {
	var matched []model.Severity
	// Non-numeric TSH values do not fire; they are not an error.
	if tsh, ok := r.TSHLevel.Float(); ok {
		if tsh < tshCriticalLow || tsh > tshCriticalHigh {
			matched = append(matched, model.SeverityCritical)
		} else if tsh < tshWarningLow || tsh > tshWarningHigh {
			matched = append(matched, model.SeverityWarning)
		}
	}
	// Skipping thyroid medication is always critical.
	if r.MedicationAdherence != nil && !*r.MedicationAdherence {
		matched = append(matched, model.SeverityCritical)
	}
	return matched
}

func substanceAbuseRules(r *model.SubstanceAbuseSymptoms) []model.Severity {
	craving, ok := r.CravingIntensity.Float()
	if !ok {
		return nil
	}
	if craving >= cravingCritical {
		return []model.Severity{model.SeverityCritical}
	}
	if craving >= cravingWarning {
		return []model.Severity{model.SeverityWarning}
	}
	return nil
}
