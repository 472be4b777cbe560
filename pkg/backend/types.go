package backend

import (
	"fmt"

	"github.com/symptoguide-engine/internal/domain"
)

// Wire shapes for the prediction backend's JSON responses. These mirror the
// backend exactly (snake_case field names) and are converted to domain types
// at the boundary.

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

type analyzeResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message,omitempty"`
	Prediction struct {
		Disease      string  `json:"disease"`
		Confidence   float64 `json:"confidence"`
		Alternatives []struct {
			Disease     string  `json:"disease"`
			Probability float64 `json:"probability"`
		} `json:"alternatives"`
	} `json:"prediction"`
	Severity struct {
		Score          int                `json:"score"`
		Average        float64            `json:"average"`
		IsEmergency    bool               `json:"is_emergency"`
		SymptomDetails map[string]float64 `json:"symptom_details"`
	} `json:"severity"`
	Recommendations struct {
		Specialist  string   `json:"specialist"`
		Description string   `json:"description"`
		Precautions []string `json:"precautions"`
		Medications string   `json:"medications"`
		Diet        string   `json:"diet"`
		Workout     string   `json:"workout"`
	} `json:"recommendations"`
}

func (r *analyzeResponse) toMlResult() *domain.MlResult {
	alternatives := make([]domain.DiseaseAlternative, 0, len(r.Prediction.Alternatives))
	for _, alt := range r.Prediction.Alternatives {
		alternatives = append(alternatives, domain.DiseaseAlternative{
			Disease:     alt.Disease,
			Probability: alt.Probability,
		})
	}

	return &domain.MlResult{
		Disease:      r.Prediction.Disease,
		Confidence:   r.Prediction.Confidence,
		Alternatives: alternatives,
		Severity: domain.SeverityReport{
			Score:           r.Severity.Score,
			Average:         r.Severity.Average,
			IsEmergency:     r.Severity.IsEmergency,
			PerSymptomScore: r.Severity.SymptomDetails,
		},
		Recommendations: domain.Recommendations{
			Specialist:  r.Recommendations.Specialist,
			Description: r.Recommendations.Description,
			Precautions: r.Recommendations.Precautions,
			Medications: r.Recommendations.Medications,
			Diet:        r.Recommendations.Diet,
			Workout:     r.Recommendations.Workout,
		},
	}
}

type assessResponse struct {
	ConcernLevel           string   `json:"concern_level"`
	Suggestions            []string `json:"suggestions"`
	RecommendedDepartments []string `json:"recommended_departments"`
}

type extractResponse struct {
	Success           bool     `json:"success"`
	ExtractedSymptoms []string `json:"extracted_symptoms"`
	RawSymptoms       []string `json:"raw_symptoms"`
	Total             int      `json:"total"`
}

type symptomsResponse struct {
	Success  bool     `json:"success"`
	Symptoms []string `json:"symptoms"`
	Total    int      `json:"total"`
}

type keywordsResponse struct {
	Success  bool     `json:"success"`
	Keywords []string `json:"keywords"`
	Total    int      `json:"total"`
}

type hospitalsResponse struct {
	Hospitals []struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Address     string   `json:"address"`
		Lat         *float64 `json:"lat"`
		Lng         *float64 `json:"lng"`
		Emergency   bool     `json:"emergency"`
		Phone       string   `json:"phone"`
		Specialties []string `json:"specialties"`
		Rating      float64  `json:"rating"`
		Distance    string   `json:"distance"`
	} `json:"hospitals"`
	FallbackUsed bool `json:"fallback_used"`
}

func (r *hospitalsResponse) toPage() *domain.HospitalsPage {
	hospitals := make([]domain.HospitalRecord, 0, len(r.Hospitals))
	for i, h := range r.Hospitals {
		record := domain.HospitalRecord{
			ID:            h.ID,
			Name:          h.Name,
			Address:       h.Address,
			Emergency:     h.Emergency,
			Phone:         h.Phone,
			Specialties:   h.Specialties,
			Rating:        h.Rating,
			DistanceLabel: h.Distance,
		}
		if record.ID == "" {
			record.ID = fmt.Sprintf("%d", i)
		}
		if h.Lat != nil && h.Lng != nil {
			record.Coordinates = &domain.Coordinates{Lat: *h.Lat, Lng: *h.Lng}
		}
		hospitals = append(hospitals, record)
	}
	return &domain.HospitalsPage{Hospitals: hospitals, FallbackUsed: r.FallbackUsed}
}
