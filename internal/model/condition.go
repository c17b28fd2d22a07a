package model

// Condition is the chronic disease category a patient is enrolled under.
// It fixes which symptom fields and triage thresholds apply.
type Condition string

const (
	ConditionDiabetes       Condition = "diabetes"
	ConditionRenalFailure   Condition = "renal_failure"
	ConditionTB             Condition = "tb"
	ConditionThyroid        Condition = "thyroid"
	ConditionSubstanceAbuse Condition = "substance_abuse"
)

// Conditions lists every supported condition.
var Conditions = []Condition{
	ConditionDiabetes,
	ConditionRenalFailure,
	ConditionTB,
	ConditionThyroid,
	ConditionSubstanceAbuse,
}

func (c Condition) Valid() bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

// Severity is the computed triage level of a symptom submission.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityNormal:   0,
	SeverityWarning:  1,
	SeverityCritical: 2,
}

func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Worse reports whether s ranks above other (normal < warning < critical).
func (s Severity) Worse(other Severity) bool {
	return severityRank[s] > severityRank[other]
}

// MaxSeverity returns the higher-ranked of the two levels.
func MaxSeverity(a, b Severity) Severity {
	if b.Worse(a) {
		return b
	}
	return a
}
