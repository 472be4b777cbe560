package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/symptoguide-engine/internal/domain"
)

// ResilientClient wraps the raw backend client with a circuit breaker around
// the expensive analyze operation and in-memory caches for the symptom
// catalogs, which change only when the backend model is retrained.
type ResilientClient struct {
	client *Client
	logger *logrus.Logger

	analyzeBreaker *gobreaker.CircuitBreaker

	symptomCache *expirable.LRU[string, *domain.SymptomList]
}

const (
	cacheKeySymptoms = "symptoms"
	cacheKeyKeywords = "symptom-keywords"
)

// NewResilientClient creates the breaker- and cache-wrapped backend client.
func NewResilientClient(cfg domain.BackendConfig, logger *logrus.Logger) *ResilientClient {
	maxItems := cfg.CacheMaxItems
	if maxItems == 0 {
		maxItems = 1000
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	analyzeBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "analyze",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &ResilientClient{
		client:         NewClient(cfg, logger),
		logger:         logger,
		analyzeBreaker: analyzeBreaker,
		symptomCache:   expirable.NewLRU[string, *domain.SymptomList](maxItems, nil, ttl),
	}
}

// Health reports backend liveness.
func (r *ResilientClient) Health(ctx context.Context) domain.HealthStatus {
	return r.client.Health(ctx)
}

// Analyze runs the full prediction behind the circuit breaker. When the
// breaker is open the call fails immediately; the orchestrator then degrades
// to the triage endpoint without waiting out another retry cycle.
func (r *ResilientClient) Analyze(ctx context.Context, req *domain.AnalyzeRequest) (*domain.MlResult, error) {
	result, err := r.analyzeBreaker.Execute(func() (interface{}, error) {
		return r.client.Analyze(ctx, req)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return nil, fmt.Errorf("prediction service unavailable (circuit breaker open)")
		}
		return nil, err
	}
	return result.(*domain.MlResult), nil
}

// Assess runs the degraded triage assessment. It is deliberately not behind
// the analyze breaker: the fallback must stay reachable while the primary
// path is tripped.
func (r *ResilientClient) Assess(ctx context.Context, req *domain.AssessRequest) (*domain.FallbackResult, error) {
	return r.client.Assess(ctx, req)
}

// ExtractSymptoms extracts symptom labels from free text.
func (r *ResilientClient) ExtractSymptoms(ctx context.Context, text string) (*domain.ExtractResult, error) {
	return r.client.ExtractSymptoms(ctx, text)
}

// ListSymptoms returns the symptom catalog, served from cache when fresh.
func (r *ResilientClient) ListSymptoms(ctx context.Context) (*domain.SymptomList, error) {
	if cached, ok := r.symptomCache.Get(cacheKeySymptoms); ok {
		return cached, nil
	}
	list, err := r.client.ListSymptoms(ctx)
	if err != nil {
		return nil, err
	}
	r.symptomCache.Add(cacheKeySymptoms, list)
	return list, nil
}

// ListSymptomKeywords returns the keyword catalog, served from cache when fresh.
func (r *ResilientClient) ListSymptomKeywords(ctx context.Context) (*domain.SymptomList, error) {
	if cached, ok := r.symptomCache.Get(cacheKeyKeywords); ok {
		return cached, nil
	}
	list, err := r.client.ListSymptomKeywords(ctx)
	if err != nil {
		return nil, err
	}
	r.symptomCache.Add(cacheKeyKeywords, list)
	return list, nil
}

// NearbyHospitals fetches hospitals around a position.
func (r *ResilientClient) NearbyHospitals(ctx context.Context, pos domain.Coordinates, department string) (*domain.HospitalsPage, error) {
	return r.client.NearbyHospitals(ctx, pos, department)
}

// BreakerState returns the analyze breaker state for monitoring.
func (r *ResilientClient) BreakerState() gobreaker.State {
	return r.analyzeBreaker.State()
}
