package domain

import "context"

// AnalyzeRequest is the full prediction request built from a completed intake.
type AnalyzeRequest struct {
	Symptoms           []string          `json:"symptoms"`
	Description        string            `json:"description,omitempty"`
	Age                int               `json:"age,omitempty"`
	Gender             Gender            `json:"gender,omitempty"`
	Duration           Duration          `json:"duration,omitempty"`
	Severity           Severity          `json:"severity,omitempty"`
	MedicalHistory     string            `json:"medicalHistory,omitempty"`
	CurrentMedications string            `json:"currentMedications,omitempty"`
	Allergies          string            `json:"allergies,omitempty"`
	FollowUpAnswers    map[string]string `json:"followUpAnswers,omitempty"`
}

// AssessRequest is the reduced payload for the degraded triage endpoint.
type AssessRequest struct {
	Symptoms    []string `json:"symptoms"`
	Description string   `json:"description,omitempty"`
	Duration    Duration `json:"duration,omitempty"`
	Severity    Severity `json:"severity,omitempty"`
	Age         int      `json:"age,omitempty"`
	Gender      Gender   `json:"gender,omitempty"`
}

// HealthStatus is the backend liveness report. A transport failure maps to an
// unhealthy status rather than an error.
type HealthStatus struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// ExtractResult is the outcome of NLP symptom extraction from free text.
type ExtractResult struct {
	Success           bool     `json:"success"`
	ExtractedSymptoms []string `json:"extracted_symptoms"`
	RawSymptoms       []string `json:"raw_symptoms"`
	Total             int      `json:"total"`
}

// SymptomList is the catalog of symptoms (or keywords) the backend knows.
type SymptomList struct {
	Symptoms []string `json:"symptoms"`
	Total    int      `json:"total"`
}

// HospitalsPage is one nearby-hospitals response. FallbackUsed means the
// source found no department-exact match and returned general nearby results;
// department filtering must be bypassed for such pages.
type HospitalsPage struct {
	Hospitals    []HospitalRecord `json:"hospitals"`
	FallbackUsed bool             `json:"fallback_used"`
}

// PredictionAPI is the boundary to the remote prediction backend.
type PredictionAPI interface {
	Health(ctx context.Context) HealthStatus
	Analyze(ctx context.Context, req *AnalyzeRequest) (*MlResult, error)
	Assess(ctx context.Context, req *AssessRequest) (*FallbackResult, error)
	ExtractSymptoms(ctx context.Context, text string) (*ExtractResult, error)
	ListSymptoms(ctx context.Context) (*SymptomList, error)
	ListSymptomKeywords(ctx context.Context) (*SymptomList, error)
}

// HospitalSource supplies nearby hospitals for a position and department.
type HospitalSource interface {
	NearbyHospitals(ctx context.Context, pos Coordinates, department string) (*HospitalsPage, error)
}

// Geolocator acquires the user's position. Implementations surface
// ErrGeolocationUnavailable when no capability exists and
// ErrPermissionDenied when the user refused; both are terminal for the
// current hospital-matching attempt.
type Geolocator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// MapRenderer is the map the hospitals view keeps in sync with the filtered
// list. Implementations are presentational and out of scope here.
type MapRenderer interface {
	Center(pos Coordinates)
	SetUserMarker(pos Coordinates)
	ClearHospitalMarkers()
	AddHospitalMarker(h HospitalRecord)
}

// DepartmentStore is the process-wide slot holding the department selection
// shared between the specialists, results and hospitals views. Last writer
// wins; each view writes only from its own user action.
type DepartmentStore interface {
	SelectedDepartment(ctx context.Context) (string, error)
	SetSelectedDepartment(ctx context.Context, department string) error
}
