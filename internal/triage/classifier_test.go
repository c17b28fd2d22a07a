package triage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronicare/monitor-api/internal/model"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func severityPtr(s model.Severity) *model.Severity { return &s }

func TestClassifyDiabetesBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		sugar    float64
		severity model.Severity
		flagged  bool
	}{
		{"critical low", 69, model.SeverityCritical, true},
		{"boundary 70 is warning band", 70, model.SeverityWarning, true},
		{"warning low", 89, model.SeverityWarning, true},
		{"boundary 90 normal", 90, model.SeverityNormal, false},
		{"mid range normal", 120, model.SeverityNormal, false},
		{"boundary 180 normal", 180, model.SeverityNormal, false},
		{"warning high", 181, model.SeverityWarning, true},
		{"boundary 250 is warning band", 250, model.SeverityWarning, true},
		{"critical high", 251, model.SeverityCritical, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(&model.DiabetesSymptoms{BloodSugarLevel: floatPtr(tt.sugar)}, nil)
			assert.Equal(t, tt.severity, res.Severity)
			assert.Equal(t, tt.flagged, res.Flagged)
		})
	}
}

func TestClassifyDiabetesMissingReading(t *testing.T) {
	res := Classify(&model.DiabetesSymptoms{}, nil)
	assert.Equal(t, model.SeverityNormal, res.Severity)
	assert.False(t, res.Flagged)
}

func TestClassifyRenalFailure(t *testing.T) {
	tests := []struct {
		name     string
		swelling string
		fatigue  string
		severity model.Severity
		flagged  bool
	}{
		{"severe swelling critical", model.ScaleSevere, model.ScaleNone, model.SeverityCritical, true},
		{"moderate swelling warning", model.ScaleModerate, model.ScaleNone, model.SeverityWarning, true},
		{"severe fatigue warning", model.ScaleNone, model.ScaleSevere, model.SeverityWarning, true},
		{"severe both stays critical", model.ScaleSevere, model.ScaleSevere, model.SeverityCritical, true},
		{"mild is normal", model.ScaleMild, model.ScaleMild, model.SeverityNormal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(&model.RenalFailureSymptoms{Swelling: tt.swelling, Fatigue: tt.fatigue}, nil)
			assert.Equal(t, tt.severity, res.Severity)
			assert.Equal(t, tt.flagged, res.Flagged)
		})
	}
}

func TestClassifyThyroidBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		tsh      string
		severity model.Severity
		flagged  bool
	}{
		{"very low critical", "0.05", model.SeverityCritical, true},
		{"boundary 0.1 warning band", "0.1", model.SeverityWarning, true},
		{"boundary 0.4 normal", "0.4", model.SeverityNormal, false},
		{"normal range", "2.5", model.SeverityNormal, false},
		{"boundary 4.0 normal", "4.0", model.SeverityNormal, false},
		{"elevated warning", "5.5", model.SeverityWarning, true},
		{"boundary 10 warning band", "10", model.SeverityWarning, true},
		{"very high critical", "12", model.SeverityCritical, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(&model.ThyroidSymptoms{TSHLevel: model.FlexNumber(tt.tsh)}, nil)
			assert.Equal(t, tt.severity, res.Severity)
			assert.Equal(t, tt.flagged, res.Flagged)
		})
	}
}

func TestClassifyThyroidNonNumericTSH(t *testing.T) {
	res := Classify(&model.ThyroidSymptoms{TSHLevel: model.FlexNumber("not-a-number")}, nil)
	assert.Equal(t, model.SeverityNormal, res.Severity)
	assert.False(t, res.Flagged)

	// caller default survives when no rule fires
	res = Classify(&model.ThyroidSymptoms{TSHLevel: model.FlexNumber("n/a")}, severityPtr(model.SeverityWarning))
	assert.Equal(t, model.SeverityWarning, res.Severity)
	assert.False(t, res.Flagged)
}

func TestClassifyThyroidAdherenceAlwaysCritical(t *testing.T) {
	res := Classify(&model.ThyroidSymptoms{
		TSHLevel:            model.FlexNumber("2.0"),
		MedicationAdherence: boolPtr(false),
	}, nil)
	assert.Equal(t, model.SeverityCritical, res.Severity)
	assert.True(t, res.Flagged)
}

func TestClassifyTB(t *testing.T) {
	t.Run("missed medication critical", func(t *testing.T) {
		res := Classify(&model.TBSymptoms{MedicationAdherence: boolPtr(false)}, nil)
		assert.Equal(t, model.SeverityCritical, res.Severity)
		assert.True(t, res.Flagged)
	})

	t.Run("constant cough warning", func(t *testing.T) {
		res := Classify(&model.TBSymptoms{
			MedicationAdherence: boolPtr(true),
			CoughFrequency:      model.CoughConstant,
		}, nil)
		assert.Equal(t, model.SeverityWarning, res.Severity)
		assert.True(t, res.Flagged)
	})

	t.Run("night sweats warning", func(t *testing.T) {
		res := Classify(&model.TBSymptoms{NightSweats: boolPtr(true)}, nil)
		assert.Equal(t, model.SeverityWarning, res.Severity)
		assert.True(t, res.Flagged)
	})

	t.Run("warning never downgrades critical", func(t *testing.T) {
		res := Classify(&model.TBSymptoms{
			MedicationAdherence: boolPtr(false),
			CoughFrequency:      model.CoughConstant,
			NightSweats:         boolPtr(true),
		}, nil)
		assert.Equal(t, model.SeverityCritical, res.Severity)
		assert.True(t, res.Flagged)
	})
}

func TestClassifySubstanceAbuse(t *testing.T) {
	tests := []struct {
		craving  string
		severity model.Severity
		flagged  bool
	}{
		{"7", model.SeverityCritical, true},
		{"9", model.SeverityCritical, true},
		{"5", model.SeverityWarning, true},
		{"6", model.SeverityWarning, true},
		{"4", model.SeverityNormal, false},
		{"0", model.SeverityNormal, false},
	}

	for _, tt := range tests {
		res := Classify(&model.SubstanceAbuseSymptoms{CravingIntensity: model.FlexNumber(tt.craving)}, nil)
		assert.Equal(t, tt.severity, res.Severity, "craving %s", tt.craving)
		assert.Equal(t, tt.flagged, res.Flagged, "craving %s", tt.craving)
	}
}

func TestClassifyCallerDefault(t *testing.T) {
	t.Run("default kept when no rule fires", func(t *testing.T) {
		res := Classify(&model.SubstanceAbuseSymptoms{CravingIntensity: "4"}, severityPtr(model.SeverityCritical))
		assert.Equal(t, model.SeverityCritical, res.Severity)
		assert.False(t, res.Flagged, "caller default alone never flags")
	})

	t.Run("rule never lowers caller critical", func(t *testing.T) {
		res := Classify(&model.SubstanceAbuseSymptoms{CravingIntensity: "5"}, severityPtr(model.SeverityCritical))
		assert.Equal(t, model.SeverityCritical, res.Severity)
		assert.True(t, res.Flagged)
	})

	t.Run("rule escalates caller default", func(t *testing.T) {
		res := Classify(&model.SubstanceAbuseSymptoms{CravingIntensity: "8"}, severityPtr(model.SeverityNormal))
		assert.Equal(t, model.SeverityCritical, res.Severity)
		assert.True(t, res.Flagged)
	})
}

func TestClassifyIgnoresForeignFields(t *testing.T) {
	// A diabetes patient submitting thyroid fields: decoding drops them, so
	// no thyroid rule can fire.
	payload := json.RawMessage(`{"tshLevel": "0.05", "bloodSugarLevel": 120}`)
	reading, err := model.DecodeReading(model.ConditionDiabetes, payload)
	require.NoError(t, err)

	res := Classify(reading, nil)
	assert.Equal(t, model.SeverityNormal, res.Severity)
	assert.False(t, res.Flagged)
}

func TestClassifyIsPure(t *testing.T) {
	reading := &model.ThyroidSymptoms{TSHLevel: "11"}
	first := Classify(reading, nil)
	second := Classify(reading, nil)
	assert.Equal(t, first, second)
}
