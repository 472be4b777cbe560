// Package assessment orchestrates submission of a completed intake: the
// primary ML analysis first, then the degraded triage assessment, strictly in
// that order, persisting exactly one result variant per session.
package assessment

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/symptoguide-engine/internal/domain"
	"github.com/symptoguide-engine/internal/session"
)

// ErrAnalysisUnavailable is the single user-facing error surfaced when both
// the primary and the fallback paths fail. The session is left without a
// result; the results view must redirect back to intake.
var ErrAnalysisUnavailable = errors.New("unable to analyze your symptoms - please ensure the service is reachable and try again")

// HistoryRecorder persists completed assessments for later inspection.
type HistoryRecorder interface {
	RecordAssessment(ctx context.Context, sessionID string, result *domain.AssessmentResult) error
}

// Orchestrator coordinates the submit flow. Single-flight per session is
// caller discipline: the gateway does not start a new submission for a
// session while one is pending.
type Orchestrator struct {
	api      domain.PredictionAPI
	sessions *session.Store
	history  HistoryRecorder
	logger   *logrus.Logger
}

// NewOrchestrator creates a new assessment orchestrator. history may be nil
// when no persistent history is configured.
func NewOrchestrator(api domain.PredictionAPI, sessions *session.Store, history HistoryRecorder, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		api:      api,
		sessions: sessions,
		history:  history,
		logger:   logger,
	}
}

// Submit runs the assessment for a session's completed intake. The fallback
// is attempted only after the primary path has fully failed, never
// concurrently, so mixed results cannot be presented.
func (o *Orchestrator) Submit(ctx context.Context, sess *session.Session) (*domain.AssessmentResult, error) {
	if err := sess.Machine.ReadyForSubmission(); err != nil {
		return nil, err
	}

	state := sess.Machine.State()
	log := o.logger.WithField("session_id", sess.ID)

	ml, err := o.api.Analyze(ctx, buildAnalyzeRequest(state))
	if err == nil {
		result := domain.NewMLResult(ml)
		o.persist(ctx, sess, result, log)
		log.WithFields(logrus.Fields{
			"disease":    ml.Disease,
			"confidence": ml.Confidence,
			"emergency":  ml.Severity.IsEmergency,
		}).Info("Assessment completed via ML prediction")
		return result, nil
	}

	log.WithError(err).Warn("Primary analysis failed, degrading to triage assessment")

	fallback, fbErr := o.api.Assess(ctx, buildAssessRequest(state))
	if fbErr != nil {
		log.WithError(fbErr).Error("Fallback assessment failed; no result persisted")
		return nil, ErrAnalysisUnavailable
	}

	result := domain.NewFallbackResult(fallback)
	o.persist(ctx, sess, result, log)
	log.WithFields(logrus.Fields{
		"concern_level": fallback.ConcernLevel,
		"departments":   fallback.RecommendedDepartments,
	}).Info("Assessment completed via triage fallback")
	return result, nil
}

// persist stores the result on the session and, when configured, in the
// durable history. A history failure is logged but does not fail the submit.
func (o *Orchestrator) persist(ctx context.Context, sess *session.Session, result *domain.AssessmentResult, log *logrus.Entry) {
	if err := o.sessions.SaveResult(sess.ID, result); err != nil {
		log.WithError(err).Warn("Failed to store result on session")
	}
	if o.history != nil {
		if err := o.history.RecordAssessment(ctx, sess.ID, result); err != nil {
			log.WithError(err).Warn("Failed to record assessment history")
		}
	}
}

// buildAnalyzeRequest maps the full intake state onto the prediction request,
// carrying only answered follow-up questions keyed by prompt text.
func buildAnalyzeRequest(state *domain.IntakeState) *domain.AnalyzeRequest {
	return &domain.AnalyzeRequest{
		Symptoms:           state.Symptoms.Labels(),
		Description:        state.Description,
		Age:                state.Age,
		Gender:             state.Gender,
		Duration:           state.Duration,
		Severity:           state.Severity,
		MedicalHistory:     state.MedicalHistory,
		CurrentMedications: state.Medications,
		Allergies:          state.Allergies,
		FollowUpAnswers:    state.AnsweredFollowUps(),
	}
}

// buildAssessRequest maps the intake state onto the reduced triage payload:
// symptoms, description, duration, severity and demographics only.
func buildAssessRequest(state *domain.IntakeState) *domain.AssessRequest {
	return &domain.AssessRequest{
		Symptoms:    state.Symptoms.Labels(),
		Description: state.Description,
		Duration:    state.Duration,
		Severity:    state.Severity,
		Age:         state.Age,
		Gender:      state.Gender,
	}
}
