package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQualification() QualificationData {
	return QualificationData{
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		Company:        "Acme Consulting",
		CompanyWebsite: "https://acme.example.com",
		Role:           "founder-ceo",
		Turnover:       "5m-10m",
		ConsentGiven:   true,
	}
}

func validDiagnostic() DiagnosticData {
	return DiagnosticData{
		FirmType:       "consultancy",
		TeamSize:       "11-25",
		StrategicFocus: StrategicFocus{Primary: "speed", Secondary: "costs"},
		PainPoints: []PainPoint{
			{Area: "onboarding", Symptom: "rework"},
			{Area: "reporting", Symptom: "tool-limitation"},
		},
		AIAdoption:       "partial",
		TechEnvironment:  "integrated",
		ProcessKnowledge: "well-documented",
		DataFoundations:  "strong",
		BillableSplit:    60,
	}
}

func TestQualificationValidation(t *testing.T) {
	q := validQualification()
	assert.NoError(t, q.Validate())

	tests := []struct {
		name   string
		mutate func(*QualificationData)
		field  string
	}{
		{"missing name", func(q *QualificationData) { q.Name = "" }, "name"},
		{"bad email", func(q *QualificationData) { q.Email = "not-an-email" }, "email"},
		{"missing company", func(q *QualificationData) { q.Company = "" }, "company"},
		{"unknown role", func(q *QualificationData) { q.Role = "intern" }, "role"},
		{"unknown turnover", func(q *QualificationData) { q.Turnover = "billions" }, "turnover"},
		{"no consent", func(q *QualificationData) { q.ConsentGiven = false }, "consentGiven"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQualification()
			tt.mutate(&q)
			err := q.Validate()
			require.Error(t, err)
			fe, ok := err.(FieldErrors)
			require.True(t, ok, "expected FieldErrors, got %T", err)
			assert.Contains(t, fe, tt.field)
		})
	}
}

func TestConsentMessageIsSpecific(t *testing.T) {
	q := validQualification()
	q.ConsentGiven = false
	err := q.Validate()
	require.Error(t, err)
	fe := err.(FieldErrors)
	assert.Equal(t, "Please accept the privacy notice to continue", fe["consentGiven"])
}

func TestQualifiedCutoff(t *testing.T) {
	q := validQualification()

	q.Turnover = "under-1m"
	assert.False(t, q.Qualified())

	for _, turnover := range []string{"1m-5m", "5m-10m", "10m-20m", "20m-50m", "50m-plus", "prefer-not-to-say"} {
		q.Turnover = turnover
		assert.True(t, q.Qualified(), "turnover %s should qualify", turnover)
	}
}

func TestDisplayRolePrefersFreeText(t *testing.T) {
	q := validQualification()
	q.Role = "other"
	q.RoleOther = "Head of Operations"
	assert.Equal(t, "Head of Operations", q.DisplayRole())

	q.RoleOther = ""
	assert.Equal(t, "other", q.DisplayRole())
}

func TestDiagnosticValidation(t *testing.T) {
	d := validDiagnostic()
	assert.NoError(t, d.Validate())

	t.Run("too few pain points", func(t *testing.T) {
		d := validDiagnostic()
		d.PainPoints = d.PainPoints[:1]
		err := d.Validate()
		require.Error(t, err)
		assert.Contains(t, err.(FieldErrors), "painPoints")
	})

	t.Run("too many distinct areas", func(t *testing.T) {
		d := validDiagnostic()
		d.PainPoints = []PainPoint{
			{Area: "a", Symptom: "s"},
			{Area: "b", Symptom: "s"},
			{Area: "c", Symptom: "s"},
			{Area: "d", Symptom: "s"},
		}
		err := d.Validate()
		require.Error(t, err)
		assert.Equal(t, "Please select two or three areas", err.(FieldErrors)["painPoints"])
	})

	t.Run("single area", func(t *testing.T) {
		d := validDiagnostic()
		d.PainPoints = []PainPoint{
			{Area: "onboarding", Symptom: "rework"},
			{Area: "onboarding", Symptom: "inconsistency"},
		}
		err := d.Validate()
		require.Error(t, err)
		assert.Contains(t, err.(FieldErrors), "painPoints")
	})

	t.Run("missing focus", func(t *testing.T) {
		d := validDiagnostic()
		d.StrategicFocus = StrategicFocus{}
		err := d.Validate()
		require.Error(t, err)
	})
}

func TestSizingValidation(t *testing.T) {
	entry := SizingEntry{
		ArchetypeID:    "time-invoicing",
		PeopleInvolved: "4-8",
		WeeklyHours:    "5-15",
		CostPerPerson:  "50k-75k",
	}
	assert.NoError(t, entry.Validate())

	assert.Error(t, ValidateSizing([]SizingEntry{entry}))
	assert.Error(t, ValidateSizing([]SizingEntry{entry, entry, entry, entry}))
	assert.NoError(t, ValidateSizing([]SizingEntry{entry, entry, entry}))

	broken := entry
	broken.ArchetypeID = ""
	assert.Error(t, ValidateSizing([]SizingEntry{entry, entry, broken}))
}
