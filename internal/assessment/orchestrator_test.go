package assessment

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptoguide-engine/internal/domain"
	"github.com/symptoguide-engine/internal/session"
)

// fakeAPI scripts the two prediction operations and records their payloads.
type fakeAPI struct {
	analyzeResult *domain.MlResult
	analyzeErr    error
	assessResult  *domain.FallbackResult
	assessErr     error

	analyzeCalls   int
	assessCalls    int
	lastAnalyzeReq *domain.AnalyzeRequest
	lastAssessReq  *domain.AssessRequest
}

func (f *fakeAPI) Health(ctx context.Context) domain.HealthStatus {
	return domain.HealthStatus{Status: "healthy", ModelLoaded: true}
}

func (f *fakeAPI) Analyze(ctx context.Context, req *domain.AnalyzeRequest) (*domain.MlResult, error) {
	f.analyzeCalls++
	f.lastAnalyzeReq = req
	return f.analyzeResult, f.analyzeErr
}

func (f *fakeAPI) Assess(ctx context.Context, req *domain.AssessRequest) (*domain.FallbackResult, error) {
	f.assessCalls++
	f.lastAssessReq = req
	return f.assessResult, f.assessErr
}

func (f *fakeAPI) ExtractSymptoms(ctx context.Context, text string) (*domain.ExtractResult, error) {
	return &domain.ExtractResult{}, nil
}

func (f *fakeAPI) ListSymptoms(ctx context.Context) (*domain.SymptomList, error) {
	return &domain.SymptomList{}, nil
}

func (f *fakeAPI) ListSymptomKeywords(ctx context.Context) (*domain.SymptomList, error) {
	return &domain.SymptomList{}, nil
}

type fakeHistory struct {
	records []string
	err     error
}

func (f *fakeHistory) RecordAssessment(ctx context.Context, sessionID string, result *domain.AssessmentResult) error {
	f.records = append(f.records, sessionID)
	return f.err
}

func testLoggerAndSession(t *testing.T) (*logrus.Logger, *session.Store, *session.Session) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	sessions := session.NewStore(logger)
	sess := sessions.Create()

	m := sess.Machine
	require.NoError(t, m.AddSymptom("Headache"))
	require.NoError(t, m.AddSymptom("Fever"))
	require.NoError(t, m.AddSymptom("Fatigue"))
	require.NoError(t, m.Next())
	require.NoError(t, m.SetSeverity(domain.SeverityModerate))
	require.NoError(t, m.Next())
	require.NoError(t, m.SetDetails("feeling unwell for a few days", domain.DurationDays, 28, domain.GenderMale))
	require.NoError(t, m.Next())
	require.NoError(t, m.AnswerFollowUp(0, "yes"))
	require.NoError(t, m.Next())
	m.SetMedicalHistory("none", "ibuprofen", "")
	require.NoError(t, m.Next())

	return logger, sessions, sess
}

func TestOrchestrator_PrimarySuccess(t *testing.T) {
	logger, sessions, sess := testLoggerAndSession(t)
	api := &fakeAPI{
		analyzeResult: &domain.MlResult{
			Disease:    "Typhoid",
			Confidence: 0.873,
			Recommendations: domain.Recommendations{
				Specialist: "Infectious Disease Specialist",
			},
		},
	}
	history := &fakeHistory{}
	orch := NewOrchestrator(api, sessions, history, logger)

	result, err := orch.Submit(context.Background(), sess)
	require.NoError(t, err)

	assert.Equal(t, domain.ResultML, result.Kind)
	assert.Equal(t, "Typhoid", result.ML.Disease)
	assert.Nil(t, result.Fallback, "exactly one variant populated")
	assert.Zero(t, api.assessCalls, "fallback must not run when the primary succeeds")
	assert.Equal(t, []string{sess.ID}, history.records)

	// The full request carries demographics, history and answered follow-ups.
	req := api.lastAnalyzeReq
	assert.Equal(t, []string{"Headache", "Fever", "Fatigue"}, req.Symptoms)
	assert.Equal(t, 28, req.Age)
	assert.Equal(t, "ibuprofen", req.CurrentMedications)
	require.Len(t, req.FollowUpAnswers, 1)
	assert.Equal(t, "yes", req.FollowUpAnswers["Have you measured your temperature?"])

	// The result is persisted on the session for the results view.
	stored, err := sessions.TakeResult(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, result, stored)
}

func TestOrchestrator_FallbackAfterPrimaryFailure(t *testing.T) {
	logger, sessions, sess := testLoggerAndSession(t)
	api := &fakeAPI{
		analyzeErr: errors.New("connection refused"),
		assessResult: &domain.FallbackResult{
			ConcernLevel:           domain.ConcernModerate,
			RecommendedDepartments: []string{"Neurology"},
		},
	}
	orch := NewOrchestrator(api, sessions, nil, logger)

	result, err := orch.Submit(context.Background(), sess)
	require.NoError(t, err)

	assert.Equal(t, domain.ResultFallback, result.Kind)
	assert.Nil(t, result.ML)
	assert.Equal(t, 1, api.analyzeCalls)
	assert.Equal(t, 1, api.assessCalls, "fallback invoked exactly once")

	// The reduced payload carries only symptoms, description, timing and demographics.
	req := api.lastAssessReq
	assert.Equal(t, []string{"Headache", "Fever", "Fatigue"}, req.Symptoms)
	assert.Equal(t, domain.SeverityModerate, req.Severity)
	assert.Equal(t, domain.DurationDays, req.Duration)
	assert.Equal(t, 28, req.Age)
}

func TestOrchestrator_BothPathsFail(t *testing.T) {
	logger, sessions, sess := testLoggerAndSession(t)
	api := &fakeAPI{
		analyzeErr: errors.New("connection refused"),
		assessErr:  errors.New("connection refused"),
	}
	orch := NewOrchestrator(api, sessions, nil, logger)

	_, err := orch.Submit(context.Background(), sess)
	require.ErrorIs(t, err, ErrAnalysisUnavailable)

	// No result is persisted; the results view redirects back to intake.
	_, err = sessions.TakeResult(sess.ID)
	assert.ErrorIs(t, err, domain.ErrNoAssessment)
}

func TestOrchestrator_RejectsIncompleteIntake(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	sessions := session.NewStore(logger)
	sess := sessions.Create()

	api := &fakeAPI{}
	orch := NewOrchestrator(api, sessions, nil, logger)

	_, err := orch.Submit(context.Background(), sess)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, api.analyzeCalls, "validation failure must not reach the network")
}

func TestOrchestrator_HistoryFailureDoesNotFailSubmit(t *testing.T) {
	logger, sessions, sess := testLoggerAndSession(t)
	api := &fakeAPI{analyzeResult: &domain.MlResult{Disease: "Common Cold"}}
	history := &fakeHistory{err: errors.New("disk full")}
	orch := NewOrchestrator(api, sessions, history, logger)

	result, err := orch.Submit(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, domain.ResultML, result.Kind)
}
