package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptoguide-engine/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClient(domain.BackendConfig{
		BaseURL:    serverURL,
		Timeout:    5 * time.Second,
		RetryCount: 3,
		RetryDelay: time.Millisecond,
		RateLimit:  1000,
	}, testLogger())
}

const analyzeBody = `{
	"success": true,
	"prediction": {
		"disease": "Typhoid",
		"confidence": 0.873,
		"alternatives": [
			{"disease": "Malaria", "probability": 0.06},
			{"disease": "Dengue", "probability": 0.03}
		]
	},
	"severity": {
		"score": 12,
		"average": 4.0,
		"is_emergency": false,
		"symptom_details": {"Headache": 3, "Fever": 5, "Fatigue": 4}
	},
	"recommendations": {
		"specialist": "Infectious Disease Specialist",
		"description": "An acute illness associated with fever.",
		"precautions": ["eat high calorie vegetables", "antibiotic therapy"],
		"medications": "As prescribed",
		"diet": "Soft diet",
		"workout": "Rest"
	}
}`

func TestClient_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analyze", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(analyzeBody))
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	result, err := client.Analyze(context.Background(), &domain.AnalyzeRequest{
		Symptoms: []string{"Headache", "Fever", "Fatigue"},
		Severity: domain.SeverityModerate,
		Duration: domain.DurationDays,
	})
	require.NoError(t, err)

	assert.Equal(t, "Typhoid", result.Disease)
	assert.InDelta(t, 0.873, result.Confidence, 1e-9)
	require.Len(t, result.Alternatives, 2)
	assert.Equal(t, "Malaria", result.Alternatives[0].Disease)
	assert.Equal(t, "Infectious Disease Specialist", result.Recommendations.Specialist)
	assert.False(t, result.Severity.IsEmergency)
	assert.InDelta(t, 5.0, result.Severity.PerSymptomScore["Fever"], 1e-9)
}

func TestClient_Analyze_RetryOn503(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"success": false, "error": "Service unavailable", "message": "Model is still loading"}`))
			return
		}
		w.Write([]byte(analyzeBody))
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	// Two 503s then a 200 must be indistinguishable from an immediate 200.
	result, err := client.Analyze(context.Background(), &domain.AnalyzeRequest{Symptoms: []string{"Fever"}})
	require.NoError(t, err)
	assert.Equal(t, "Typhoid", result.Disease)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_Analyze_RetriesExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": "Service unavailable", "message": "Model is still loading"}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	_, err := client.Analyze(context.Background(), &domain.AnalyzeRequest{Symptoms: []string{"Fever"}})
	require.Error(t, err)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "Model is still loading", apiErr.Message)
	// Initial attempt plus three retries.
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls))
}

func TestClient_Analyze_NoRetryOn400(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "No symptoms provided", "message": "Please provide at least one symptom or description"}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	_, err := client.Analyze(context.Background(), &domain.AnalyzeRequest{})
	require.Error(t, err)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Please provide at least one symptom or description", apiErr.Message)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "client errors must not be retried")
}

func TestClient_Health_NeverErrors(t *testing.T) {
	client := NewClient(domain.BackendConfig{
		BaseURL:    "http://127.0.0.1:1", // nothing listens here
		Timeout:    200 * time.Millisecond,
		RetryCount: 1,
		RetryDelay: time.Millisecond,
		RateLimit:  1000,
	}, testLogger())

	status := client.Health(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
	assert.False(t, status.ModelLoaded)
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.Write([]byte(`{"status": "healthy", "model_loaded": true}`))
	}))
	defer server.Close()

	status := testClient(t, server.URL).Health(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.True(t, status.ModelLoaded)
}

func TestClient_ExtractSymptoms_ShortText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no network call expected for short text")
	}))
	defer server.Close()

	client := testClient(t, server.URL)

	for _, text := range []string{"", "  ", "ab", " a "} {
		result, err := client.ExtractSymptoms(context.Background(), text)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Zero(t, result.Total)
	}
}

func TestClient_ExtractSymptoms(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/extract-symptoms", r.URL.Path)
		w.Write([]byte(`{"success": true, "extracted_symptoms": ["Headache", "Fatigue"], "raw_symptoms": ["headache", "fatigue"], "total": 2}`))
	}))
	defer server.Close()

	result, err := testClient(t, server.URL).ExtractSymptoms(context.Background(), "I have a headache and feel very tired")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"Headache", "Fatigue"}, result.ExtractedSymptoms)
	assert.Equal(t, 2, result.Total)
}

func TestClient_Assess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/assess", r.URL.Path)
		w.Write([]byte(`{
			"concern_level": "moderate",
			"suggestions": ["This is a preliminary assessment and not a diagnosis."],
			"recommended_departments": ["Neurology"]
		}`))
	}))
	defer server.Close()

	result, err := testClient(t, server.URL).Assess(context.Background(), &domain.AssessRequest{
		Symptoms: []string{"Headache", "Dizziness"},
		Severity: domain.SeverityModerate,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ConcernModerate, result.ConcernLevel)
	assert.Equal(t, []string{"Neurology"}, result.RecommendedDepartments)
}

func TestClient_NearbyHospitals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/nearby-hospitals", r.URL.Path)
		assert.Equal(t, "Cardiology", r.URL.Query().Get("department"))
		assert.NotEmpty(t, r.URL.Query().Get("lat"))
		assert.NotEmpty(t, r.URL.Query().Get("lng"))
		w.Write([]byte(`{
			"hospitals": [
				{"id": "p1", "name": "City Heart Center", "address": "1 Main St", "lat": 52.1, "lng": 4.3,
				 "emergency": true, "phone": "111", "specialties": ["Cardiology", "Emergency"], "rating": 4.5, "distance": "850 m"},
				{"id": "p2", "name": "Rural Clinic", "address": "2 Side St", "lat": null, "lng": null,
				 "emergency": false, "phone": "222", "specialties": [], "rating": 4.0, "distance": ""}
			],
			"fallback_used": false
		}`))
	}))
	defer server.Close()

	page, err := testClient(t, server.URL).NearbyHospitals(context.Background(), domain.Coordinates{Lat: 52.0, Lng: 4.4}, "Cardiology")
	require.NoError(t, err)
	require.Len(t, page.Hospitals, 2)
	assert.False(t, page.FallbackUsed)

	first := page.Hospitals[0]
	require.NotNil(t, first.Coordinates)
	assert.InDelta(t, 52.1, first.Coordinates.Lat, 1e-9)
	assert.Equal(t, "850 m", first.DistanceLabel)

	assert.Nil(t, page.Hospitals[1].Coordinates, "missing coordinates must stay nil")
}

func TestClient_ListSymptomKeywords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/symptom-keywords", r.URL.Path)
		w.Write([]byte(`{"success": true, "keywords": ["Fever", "Headache"], "total": 2}`))
	}))
	defer server.Close()

	list, err := testClient(t, server.URL).ListSymptomKeywords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Fever", "Headache"}, list.Symptoms)
}
