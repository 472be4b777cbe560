// Package domain contains the core business entities for the SymptoGuide
// engine: the guided symptom intake, the assessment result produced by the
// prediction backend (or its degraded fallback), and the hospital matching
// primitives consumed by the results and hospitals views.
package domain

import "errors"

// IntakeStep identifies one of the six ordinal steps of the guided intake.
// The sequence is strictly linear; there is no skipping in either direction.
type IntakeStep int

const (
	StepSymptoms IntakeStep = iota
	StepSeverity
	StepDetails
	StepFollowUp
	StepMedicalHistory
	StepReview
)

// String returns the step name for logging and API payloads.
func (s IntakeStep) String() string {
	switch s {
	case StepSymptoms:
		return "symptoms"
	case StepSeverity:
		return "severity"
	case StepDetails:
		return "details"
	case StepFollowUp:
		return "follow_up"
	case StepMedicalHistory:
		return "medical_history"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}

// Duration represents how long the user has had their symptoms.
type Duration string

const (
	DurationToday   Duration = "today"
	DurationDays    Duration = "days"
	DurationWeek    Duration = "week"
	DurationWeeks   Duration = "weeks"
	DurationMonth   Duration = "month"
	DurationChronic Duration = "chronic"
)

// IsValid reports whether the duration is one of the accepted values.
// An empty duration is valid: the field is optional during intake.
func (d Duration) IsValid() bool {
	switch d {
	case "", DurationToday, DurationDays, DurationWeek, DurationWeeks, DurationMonth, DurationChronic:
		return true
	default:
		return false
	}
}

// Severity represents the user's self-reported overall severity.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// IsValid reports whether the severity is one of the accepted values.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	default:
		return false
	}
}

// Gender represents the optional demographic field collected during intake.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// IsValid reports whether the gender is one of the accepted values.
// An empty gender is valid: the field is optional.
func (g Gender) IsValid() bool {
	switch g {
	case "", GenderMale, GenderFemale, GenderOther:
		return true
	default:
		return false
	}
}

// QuestionKind identifies how a follow-up question is answered.
type QuestionKind string

const (
	QuestionYesNo  QuestionKind = "yesno"
	QuestionScale  QuestionKind = "scale" // 1-10
	QuestionChoice QuestionKind = "choice"
	QuestionText   QuestionKind = "text"
)

// ConcernLevel is the triage outcome of the degraded assessment path.
type ConcernLevel string

const (
	ConcernLow      ConcernLevel = "low"
	ConcernModerate ConcernLevel = "moderate"
	ConcernHigh     ConcernLevel = "high"
)

// ResultKind discriminates the two variants of an AssessmentResult.
// The orchestrator sets it based on which call succeeded; downstream code
// branches on the tag, never on field presence.
type ResultKind string

const (
	ResultML       ResultKind = "ml"
	ResultFallback ResultKind = "fallback"
)

// MatchPhase is the state of one hospital-matching attempt.
type MatchPhase string

const (
	PhaseIdle         MatchPhase = "idle"
	PhaseLocatingUser MatchPhase = "locating_user"
	PhaseFetching     MatchPhase = "fetching"
	PhaseReady        MatchPhase = "ready"
	PhaseError        MatchPhase = "error"
)

// Sentinel errors shared across the engine.
var (
	ErrNotFound            = errors.New("not found")
	ErrNoAssessment        = errors.New("no assessment available for session")
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrGeolocationUnavailable = errors.New("geolocation not supported")
	ErrNoResults           = errors.New("no hospitals match the current filters")
)
