// Package backend implements the typed HTTP client for the SymptoGuide
// prediction backend. Every operation speaks the JSON wire contract of the
// backend's /api endpoints; transient failures (transport errors and 503
// while the model warms up) are retried transparently before any outcome is
// reported to callers.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/symptoguide-engine/internal/domain"
)

// Client is the raw prediction backend client. Use NewResilientClient for the
// breaker- and cache-wrapped variant the orchestrator consumes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryCount int
	retryDelay time.Duration
	logger     *logrus.Logger
}

// NewClient creates a new prediction backend client.
func NewClient(cfg domain.BackendConfig, logger *logrus.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryCount == 0 {
		cfg.RetryCount = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		retryCount: cfg.RetryCount,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// Health reports backend liveness. It never returns an error: any transport
// failure maps to an unhealthy status so callers can branch without error
// handling.
func (c *Client) Health(ctx context.Context) domain.HealthStatus {
	var resp healthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &resp); err != nil {
		c.logger.WithError(err).Warn("Backend health check failed")
		return domain.HealthStatus{Status: "unhealthy", ModelLoaded: false}
	}
	return domain.HealthStatus{Status: resp.Status, ModelLoaded: resp.ModelLoaded}
}

// Analyze runs the full ML prediction for a completed intake.
func (c *Client) Analyze(ctx context.Context, req *domain.AnalyzeRequest) (*domain.MlResult, error) {
	var resp analyzeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/analyze", req, &resp); err != nil {
		return nil, fmt.Errorf("analyze request failed: %w", err)
	}
	if !resp.Success {
		return nil, domain.NewAPIError(http.StatusOK, firstNonEmpty(resp.Message, resp.Error, "analysis unsuccessful"))
	}
	return resp.toMlResult(), nil
}

// Assess runs the simple triage assessment used when the ML path is down.
func (c *Client) Assess(ctx context.Context, req *domain.AssessRequest) (*domain.FallbackResult, error) {
	var resp assessResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/assess", req, &resp); err != nil {
		return nil, fmt.Errorf("assess request failed: %w", err)
	}
	return &domain.FallbackResult{
		ConcernLevel:           domain.ConcernLevel(resp.ConcernLevel),
		Suggestions:            resp.Suggestions,
		RecommendedDepartments: resp.RecommendedDepartments,
	}, nil
}

// ExtractSymptoms extracts symptom labels from free text. Text shorter than
// 3 characters after trimming short-circuits locally without a network call;
// the backend would reject it anyway.
func (c *Client) ExtractSymptoms(ctx context.Context, text string) (*domain.ExtractResult, error) {
	text = strings.TrimSpace(text)
	if len(text) < 3 {
		return &domain.ExtractResult{Success: false, Total: 0}, nil
	}

	var resp extractResponse
	body := map[string]string{"text": text}
	if err := c.doJSON(ctx, http.MethodPost, "/api/extract-symptoms", body, &resp); err != nil {
		return nil, fmt.Errorf("extract-symptoms request failed: %w", err)
	}
	return &domain.ExtractResult{
		Success:           resp.Success,
		ExtractedSymptoms: resp.ExtractedSymptoms,
		RawSymptoms:       resp.RawSymptoms,
		Total:             resp.Total,
	}, nil
}

// ListSymptoms returns the catalog of symptoms the backend model knows.
func (c *Client) ListSymptoms(ctx context.Context) (*domain.SymptomList, error) {
	var resp symptomsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/symptoms", nil, &resp); err != nil {
		return nil, fmt.Errorf("symptoms request failed: %w", err)
	}
	return &domain.SymptomList{Symptoms: resp.Symptoms, Total: resp.Total}, nil
}

// ListSymptomKeywords returns the keyword catalog used for NLP matching.
func (c *Client) ListSymptomKeywords(ctx context.Context) (*domain.SymptomList, error) {
	var resp keywordsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/symptom-keywords", nil, &resp); err != nil {
		return nil, fmt.Errorf("symptom-keywords request failed: %w", err)
	}
	return &domain.SymptomList{Symptoms: resp.Keywords, Total: resp.Total}, nil
}

// NearbyHospitals fetches hospitals around a position, pre-filtered by the
// given department (URL-encoded; empty means no department filter).
func (c *Client) NearbyHospitals(ctx context.Context, pos domain.Coordinates, department string) (*domain.HospitalsPage, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", pos.Lat))
	params.Set("lng", fmt.Sprintf("%f", pos.Lng))
	if department != "" {
		params.Set("department", department)
	}

	var resp hospitalsResponse
	path := "/api/nearby-hospitals?" + params.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("nearby-hospitals request failed: %w", err)
	}
	return resp.toPage(), nil
}

// doJSON executes one JSON request with the fixed retry policy: transport
// errors and 503 responses are retried up to retryCount times with a constant
// delay; the final outcome is propagated unchanged.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"path":    path,
				"attempt": attempt + 1,
			}).Debug("Retrying backend request")
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = c.doOnce(ctx, method, path, payload, out)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// doOnce executes a single attempt.
func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transportError{err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return domain.NewAPIError(resp.StatusCode, serverMessage(respBody, resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// transportError marks network-level failures so the retry loop can
// distinguish them from application errors.
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.err)
}

func (e *transportError) Unwrap() error {
	return e.err
}

// isRetryable reports whether a failed attempt is worth repeating under the
// retry budget: transport errors and 503 (model warming up) only.
func isRetryable(err error) bool {
	if _, ok := err.(*transportError); ok {
		return true
	}
	if apiErr, ok := err.(*domain.APIError); ok {
		return apiErr.Retryable()
	}
	return false
}

// serverMessage extracts the backend-provided message from an error body,
// falling back to the HTTP status text.
func serverMessage(body []byte, statusCode int) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if msg := firstNonEmpty(envelope.Message, envelope.Error); msg != "" {
			return msg
		}
	}
	return http.StatusText(statusCode)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
