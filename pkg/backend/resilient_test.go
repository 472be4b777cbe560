package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptoguide-engine/internal/domain"
)

func testResilientClient(serverURL string) *ResilientClient {
	return NewResilientClient(domain.BackendConfig{
		BaseURL:       serverURL,
		Timeout:       5 * time.Second,
		RetryCount:    0,
		RetryDelay:    time.Millisecond,
		RateLimit:     1000,
		CacheMaxItems: 10,
		CacheTTL:      time.Minute,
	}, testLogger())
}

func TestResilientClient_SymptomListCached(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"success": true, "symptoms": ["Fever", "Cough"], "total": 2}`))
	}))
	defer server.Close()

	client := testResilientClient(server.URL)
	ctx := context.Background()

	first, err := client.ListSymptoms(ctx)
	require.NoError(t, err)
	second, err := client.ListSymptoms(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "second call must be served from cache")
}

func TestResilientClient_AnalyzeBreakerOpens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Analysis failed", "message": "boom"}`))
	}))
	defer server.Close()

	client := testResilientClient(server.URL)
	ctx := context.Background()
	req := &domain.AnalyzeRequest{Symptoms: []string{"Fever"}}

	// Enough consecutive failures trip the breaker.
	for i := 0; i < 5; i++ {
		_, err := client.Analyze(ctx, req)
		require.Error(t, err)
	}
	assert.NotEqual(t, "closed", client.BreakerState().String())
}

func TestResilientClient_AssessBypassesBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/analyze" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "Analysis failed"}`))
			return
		}
		w.Write([]byte(`{"concern_level": "low", "suggestions": [], "recommended_departments": ["Primary Care"]}`))
	}))
	defer server.Close()

	client := testResilientClient(server.URL)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		client.Analyze(ctx, &domain.AnalyzeRequest{Symptoms: []string{"Fever"}}) //nolint:errcheck
	}

	// The triage path must remain reachable while the analyze breaker is tripped.
	result, err := client.Assess(ctx, &domain.AssessRequest{Symptoms: []string{"Fever"}})
	require.NoError(t, err)
	assert.Equal(t, domain.ConcernLow, result.ConcernLevel)
}
