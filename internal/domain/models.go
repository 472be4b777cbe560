package domain

import "strings"

// MaxSymptoms caps the number of symptoms a single intake session may carry.
const MaxSymptoms = 10

// SymptomSet is an insertion-ordered set of symptom labels. Labels are
// deduplicated case-sensitively as entered; order only matters for stable
// iteration (follow-up generation, concern-area tie breaks).
type SymptomSet struct {
	labels []string
}

// NewSymptomSet builds a set from the given labels, dropping duplicates and
// anything beyond MaxSymptoms.
func NewSymptomSet(labels ...string) *SymptomSet {
	s := &SymptomSet{}
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

// Add appends a symptom label. It reports false when the label is empty after
// trimming, already present, or the set is full.
func (s *SymptomSet) Add(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" || len(s.labels) >= MaxSymptoms {
		return false
	}
	for _, existing := range s.labels {
		if existing == label {
			return false
		}
	}
	s.labels = append(s.labels, label)
	return true
}

// Remove deletes a symptom label, reporting whether it was present.
func (s *SymptomSet) Remove(label string) bool {
	for i, existing := range s.labels {
		if existing == label {
			s.labels = append(s.labels[:i], s.labels[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether the exact label is in the set.
func (s *SymptomSet) Contains(label string) bool {
	for _, existing := range s.labels {
		if existing == label {
			return true
		}
	}
	return false
}

// Labels returns a copy of the labels in insertion order.
func (s *SymptomSet) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Len returns the number of symptoms in the set.
func (s *SymptomSet) Len() int {
	return len(s.labels)
}

// FollowUpQuestion is one dynamically generated intake question. Questions are
// generated once per session from the symptom set and never replaced; only the
// answer may change while the intake sits on the follow-up step.
type FollowUpQuestion struct {
	Prompt  string       `json:"prompt"`
	Kind    QuestionKind `json:"kind"`
	Options []string     `json:"options,omitempty"` // choice questions only
	Answer  string       `json:"answer"`             // empty = unanswered
}

// Answered reports whether the user has provided an answer.
func (q FollowUpQuestion) Answered() bool {
	return strings.TrimSpace(q.Answer) != ""
}

// IntakeState is everything collected across the intake steps. It lives
// client-side for the session duration; nothing is sent until submission.
type IntakeState struct {
	Symptoms       *SymptomSet        `json:"-"`
	Description    string             `json:"description"`
	Duration       Duration           `json:"duration"`
	Severity       Severity           `json:"severity"`
	Age            int                `json:"age,omitempty"` // 0 = not provided
	Gender         Gender             `json:"gender,omitempty"`
	MedicalHistory string             `json:"medical_history,omitempty"`
	Medications    string             `json:"medications,omitempty"`
	Allergies      string             `json:"allergies,omitempty"`
	FollowUps      []FollowUpQuestion `json:"follow_ups"`
}

// NewIntakeState returns an empty intake state ready for the first step.
func NewIntakeState() *IntakeState {
	return &IntakeState{Symptoms: NewSymptomSet()}
}

// AnsweredFollowUps returns a map of prompt text to answer, including only
// answered questions. This is the shape the analyze request carries.
func (s *IntakeState) AnsweredFollowUps() map[string]string {
	answers := make(map[string]string)
	for _, q := range s.FollowUps {
		if q.Answered() {
			answers[q.Prompt] = q.Answer
		}
	}
	return answers
}

// DiseaseAlternative is one lower-probability prediction from the ML model.
type DiseaseAlternative struct {
	Disease     string  `json:"disease"`
	Probability float64 `json:"probability"`
}

// SeverityReport is the per-assessment severity detail produced by the model.
type SeverityReport struct {
	Score           int                `json:"score"`
	Average         float64            `json:"average"`
	IsEmergency     bool               `json:"is_emergency"`
	PerSymptomScore map[string]float64 `json:"symptom_details,omitempty"`
}

// Recommendations carries the care guidance attached to an ML prediction.
type Recommendations struct {
	Specialist  string   `json:"specialist"`
	Description string   `json:"description"`
	Precautions []string `json:"precautions"`
	Medications string   `json:"medications"`
	Diet        string   `json:"diet"`
	Workout     string   `json:"workout"`
}

// MlResult is the rich assessment returned by the primary prediction path.
type MlResult struct {
	Disease         string               `json:"disease"`
	Confidence      float64              `json:"confidence"` // [0,1]
	Alternatives    []DiseaseAlternative `json:"alternatives"`
	Severity        SeverityReport       `json:"severity"`
	Recommendations Recommendations      `json:"recommendations"`
}

// FallbackResult is the degraded assessment produced when the primary
// prediction path is unavailable.
type FallbackResult struct {
	ConcernLevel           ConcernLevel `json:"concern_level"`
	Suggestions            []string     `json:"suggestions"`
	RecommendedDepartments []string     `json:"recommended_departments"`
}

// AssessmentResult is the tagged union of the two assessment variants.
// Exactly one of ML or Fallback is populated, selected by Kind.
type AssessmentResult struct {
	Kind     ResultKind      `json:"kind"`
	ML       *MlResult       `json:"ml,omitempty"`
	Fallback *FallbackResult `json:"fallback,omitempty"`
}

// NewMLResult wraps an ML assessment into the union.
func NewMLResult(ml *MlResult) *AssessmentResult {
	return &AssessmentResult{Kind: ResultML, ML: ml}
}

// NewFallbackResult wraps a degraded assessment into the union.
func NewFallbackResult(fb *FallbackResult) *AssessmentResult {
	return &AssessmentResult{Kind: ResultFallback, Fallback: fb}
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HospitalRecord is one nearby healthcare facility as reported by the
// hospital source. Records are immutable once fetched; a changed department
// filter or position triggers a fresh fetch, never a mutation.
type HospitalRecord struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Address       string       `json:"address"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
	Emergency     bool         `json:"emergency"`
	Phone         string       `json:"phone"`
	Specialties   []string     `json:"specialties"`
	Rating        float64      `json:"rating"`
	DistanceLabel string       `json:"distance"`
}

// HasSpecialty reports whether any listed specialty contains the given
// department name, case-insensitively.
func (h HospitalRecord) HasSpecialty(department string) bool {
	needle := strings.ToLower(department)
	for _, s := range h.Specialties {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}
