// Package intake implements the guided symptom-intake state machine: six
// strictly linear steps collecting symptoms, severity, details, generated
// follow-up answers and medical history before submission.
package intake

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/symptoguide-engine/internal/domain"
)

// Machine drives one intake session through its steps. Transitions are
// guarded: an incomplete step yields a ValidationError and the machine stays
// put. Nothing leaves the machine until the orchestrator submits the state.
type Machine struct {
	step   domain.IntakeStep
	state  *domain.IntakeState
	logger *logrus.Logger
}

// NewMachine creates a machine positioned on the first step with an empty
// intake state.
func NewMachine(logger *logrus.Logger) *Machine {
	return &Machine{
		step:   domain.StepSymptoms,
		state:  domain.NewIntakeState(),
		logger: logger,
	}
}

// Step returns the current step.
func (m *Machine) Step() domain.IntakeStep {
	return m.step
}

// State returns the intake state being collected.
func (m *Machine) State() *domain.IntakeState {
	return m.state
}

// Next advances to the following step. It returns a ValidationError and does
// not advance when the current step's guard fails. From the review step it
// returns an error: submission is explicit, never a transition.
func (m *Machine) Next() error {
	switch m.step {
	case domain.StepSymptoms:
		if m.state.Symptoms.Len() == 0 {
			return domain.NewValidationError("symptoms", "select at least one symptom to continue")
		}
	case domain.StepSeverity:
		if m.state.Severity == "" {
			return domain.NewValidationError("severity", "select how severe your symptoms feel")
		}
	case domain.StepDetails:
		// First entry into the follow-up step generates the questions.
		// Re-entry finds them populated and leaves them untouched.
		if len(m.state.FollowUps) == 0 {
			m.state.FollowUps = GenerateFollowUps(m.state.Symptoms)
			m.logger.WithFields(logrus.Fields{
				"symptoms":  m.state.Symptoms.Len(),
				"questions": len(m.state.FollowUps),
			}).Debug("Generated follow-up questions")
		}
	case domain.StepReview:
		return fmt.Errorf("review is the final step; submit the assessment instead")
	}

	m.step++
	return nil
}

// Prev moves back one step. It is legal from every step except the first.
func (m *Machine) Prev() error {
	if m.step == domain.StepSymptoms {
		return fmt.Errorf("already at the first step")
	}
	m.step--
	return nil
}

// AddSymptom adds a symptom label to the set.
func (m *Machine) AddSymptom(label string) error {
	if m.state.Symptoms.Len() >= domain.MaxSymptoms {
		return domain.NewValidationError("symptoms", fmt.Sprintf("at most %d symptoms can be selected", domain.MaxSymptoms))
	}
	if !m.state.Symptoms.Add(label) {
		return domain.NewValidationError("symptoms", "symptom is empty or already selected")
	}
	return nil
}

// RemoveSymptom removes a symptom label from the set.
func (m *Machine) RemoveSymptom(label string) error {
	if !m.state.Symptoms.Remove(label) {
		return domain.NewValidationError("symptoms", "symptom is not selected")
	}
	return nil
}

// SetSeverity records the self-reported severity.
func (m *Machine) SetSeverity(severity domain.Severity) error {
	if !severity.IsValid() {
		return domain.NewValidationError("severity", "severity must be mild, moderate or severe")
	}
	m.state.Severity = severity
	return nil
}

// SetDetails records the free-text description, duration and demographics.
func (m *Machine) SetDetails(description string, duration domain.Duration, age int, gender domain.Gender) error {
	if !duration.IsValid() {
		return domain.NewValidationError("duration", "unknown duration value")
	}
	if !gender.IsValid() {
		return domain.NewValidationError("gender", "unknown gender value")
	}
	if age < 0 || age > 130 {
		return domain.NewValidationError("age", "age must be between 0 and 130")
	}
	m.state.Description = description
	m.state.Duration = duration
	m.state.Age = age
	m.state.Gender = gender
	return nil
}

// SetMedicalHistory records the optional history fields.
func (m *Machine) SetMedicalHistory(history, medications, allergies string) {
	m.state.MedicalHistory = history
	m.state.Medications = medications
	m.state.Allergies = allergies
}

// AnswerFollowUp records the answer for a generated question. Answers may be
// edited freely while the machine sits on the follow-up step; the questions
// themselves are never replaced.
func (m *Machine) AnswerFollowUp(index int, answer string) error {
	if m.step != domain.StepFollowUp {
		return domain.NewValidationError("follow_up", "follow-up answers can only be edited on the follow-up step")
	}
	if index < 0 || index >= len(m.state.FollowUps) {
		return domain.NewValidationError("follow_up", fmt.Sprintf("no question at index %d", index))
	}
	if err := validateAnswer(m.state.FollowUps[index], answer); err != nil {
		return err
	}
	m.state.FollowUps[index].Answer = answer
	return nil
}

// ReadyForSubmission reports whether the intake satisfies the submission
// invariants: severity set, and at least one of symptoms or description
// non-empty.
func (m *Machine) ReadyForSubmission() error {
	if m.state.Severity == "" {
		return domain.NewValidationError("severity", "severity must be set before submission")
	}
	if m.state.Symptoms.Len() == 0 && m.state.Description == "" {
		return domain.NewValidationError("symptoms", "provide at least one symptom or a description")
	}
	return nil
}

// validateAnswer checks the answer shape for the question kind. Free-text
// answers are accepted as-is, including empty (clearing an answer).
func validateAnswer(q domain.FollowUpQuestion, answer string) error {
	if answer == "" {
		return nil
	}
	switch q.Kind {
	case domain.QuestionYesNo:
		if answer != "yes" && answer != "no" {
			return domain.NewValidationError("follow_up", "answer must be yes or no")
		}
	case domain.QuestionScale:
		valid := false
		for i := 1; i <= 10; i++ {
			if answer == fmt.Sprintf("%d", i) {
				valid = true
				break
			}
		}
		if !valid {
			return domain.NewValidationError("follow_up", "answer must be a number from 1 to 10")
		}
	case domain.QuestionChoice:
		for _, opt := range q.Options {
			if answer == opt {
				return nil
			}
		}
		return domain.NewValidationError("follow_up", "answer must be one of the listed options")
	}
	return nil
}
