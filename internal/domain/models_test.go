package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymptomSet_AddRemove(t *testing.T) {
	set := NewSymptomSet()

	assert.True(t, set.Add("Fever"))
	assert.True(t, set.Add("  Cough  "), "labels are trimmed on entry")
	assert.False(t, set.Add("Fever"), "exact duplicates are rejected")
	assert.True(t, set.Add("fever"), "dedupe is case-sensitive as entered")
	assert.False(t, set.Add("   "), "blank labels are rejected")

	assert.Equal(t, []string{"Fever", "Cough", "fever"}, set.Labels())
	assert.True(t, set.Contains("Cough"))
	assert.False(t, set.Contains("cough"))

	assert.True(t, set.Remove("Fever"))
	assert.False(t, set.Remove("Fever"))
	assert.Equal(t, []string{"Cough", "fever"}, set.Labels())
}

func TestSymptomSet_MaxCardinality(t *testing.T) {
	set := NewSymptomSet()
	for i := 0; i < MaxSymptoms; i++ {
		require.True(t, set.Add(fmt.Sprintf("Symptom %d", i)))
	}
	assert.False(t, set.Add("One Too Many"))
	assert.Equal(t, MaxSymptoms, set.Len())
}

func TestSymptomSet_LabelsIsACopy(t *testing.T) {
	set := NewSymptomSet("Fever")
	labels := set.Labels()
	labels[0] = "mutated"
	assert.Equal(t, []string{"Fever"}, set.Labels())
}

func TestIntakeState_AnsweredFollowUps(t *testing.T) {
	state := NewIntakeState()
	state.FollowUps = []FollowUpQuestion{
		{Prompt: "Have you measured your temperature?", Kind: QuestionYesNo, Answer: "yes"},
		{Prompt: "Where is the headache located?", Kind: QuestionText},
		{Prompt: "How intense is the pain?", Kind: QuestionScale, Answer: "7"},
	}

	answers := state.AnsweredFollowUps()
	assert.Equal(t, map[string]string{
		"Have you measured your temperature?": "yes",
		"How intense is the pain?":            "7",
	}, answers)
}

func TestAssessmentResult_TaggedUnion(t *testing.T) {
	ml := NewMLResult(&MlResult{Disease: "Typhoid"})
	assert.Equal(t, ResultML, ml.Kind)
	assert.NotNil(t, ml.ML)
	assert.Nil(t, ml.Fallback)

	fb := NewFallbackResult(&FallbackResult{ConcernLevel: ConcernLow})
	assert.Equal(t, ResultFallback, fb.Kind)
	assert.Nil(t, fb.ML)
	assert.NotNil(t, fb.Fallback)
}

func TestHospitalRecord_HasSpecialty(t *testing.T) {
	h := HospitalRecord{Specialties: []string{"Cardiology", "General Medicine"}}

	assert.True(t, h.HasSpecialty("cardiology"))
	assert.True(t, h.HasSpecialty("Cardio"), "substring match")
	assert.False(t, h.HasSpecialty("Neurology"))
	assert.False(t, HospitalRecord{}.HasSpecialty("Cardiology"))
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, SeverityModerate.IsValid())
	assert.False(t, Severity("critical").IsValid())

	assert.True(t, Duration("").IsValid(), "duration is optional")
	assert.True(t, DurationChronic.IsValid())
	assert.False(t, Duration("forever").IsValid())

	assert.Equal(t, "follow_up", StepFollowUp.String())
}

func TestAPIError_Retryable(t *testing.T) {
	assert.True(t, NewAPIError(503, "model warming up").Retryable())
	assert.False(t, NewAPIError(400, "bad request").Retryable())
	assert.False(t, NewAPIError(500, "boom").Retryable())
}
