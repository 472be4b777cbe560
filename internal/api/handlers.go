package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/symptoguide-engine/internal/assessment"
	"github.com/symptoguide-engine/internal/domain"
	"github.com/symptoguide-engine/internal/geo"
	"github.com/symptoguide-engine/internal/results"
	"github.com/symptoguide-engine/internal/session"
)

// sessionView is what session endpoints return after every mutation, so the
// UI always sees the authoritative step and intake state.
type sessionView struct {
	SessionID string                    `json:"session_id"`
	Step      string                    `json:"step"`
	Symptoms  []string                  `json:"symptoms"`
	State     *domain.IntakeState       `json:"state"`
	FollowUps []domain.FollowUpQuestion `json:"follow_ups"`
}

func viewOf(sess *session.Session) sessionView {
	state := sess.Machine.State()
	return sessionView{
		SessionID: sess.ID,
		Step:      sess.Machine.Step().String(),
		Symptoms:  state.Symptoms.Labels(),
		State:     state,
		FollowUps: state.FollowUps,
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	backend := s.backend.Health(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"backend": backend,
	})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess := s.sessions.Create()
	c.JSON(http.StatusCreated, viewOf(sess))
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	s.sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAddSymptom(c *gin.Context) {
	var req struct {
		Symptom string `json:"symptom" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, domain.NewValidationError("symptom", "symptom is required"))
		return
	}
	s.withSession(c, func(sess *session.Session) error {
		return sess.Machine.AddSymptom(req.Symptom)
	})
}

func (s *Server) handleRemoveSymptom(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) error {
		return sess.Machine.RemoveSymptom(c.Param("label"))
	})
}

func (s *Server) handleSetSeverity(c *gin.Context) {
	var req struct {
		Severity domain.Severity `json:"severity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, domain.NewValidationError("severity", "severity is required"))
		return
	}
	s.withSession(c, func(sess *session.Session) error {
		return sess.Machine.SetSeverity(req.Severity)
	})
}

func (s *Server) handleSetDetails(c *gin.Context) {
	var req struct {
		Description string          `json:"description"`
		Duration    domain.Duration `json:"duration"`
		Age         int             `json:"age"`
		Gender      domain.Gender   `json:"gender"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, domain.NewValidationError("details", "invalid details payload"))
		return
	}
	s.withSession(c, func(sess *session.Session) error {
		return sess.Machine.SetDetails(req.Description, req.Duration, req.Age, req.Gender)
	})
}

func (s *Server) handleSetMedicalHistory(c *gin.Context) {
	var req struct {
		MedicalHistory string `json:"medicalHistory"`
		Medications    string `json:"currentMedications"`
		Allergies      string `json:"allergies"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, domain.NewValidationError("medical_history", "invalid medical history payload"))
		return
	}
	s.withSession(c, func(sess *session.Session) error {
		sess.Machine.SetMedicalHistory(req.MedicalHistory, req.Medications, req.Allergies)
		return nil
	})
}

func (s *Server) handleAnswerFollowUp(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		s.renderError(c, domain.NewValidationError("index", "follow-up index must be a number"))
		return
	}
	var req struct {
		Answer string `json:"answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, domain.NewValidationError("answer", "invalid answer payload"))
		return
	}
	s.withSession(c, func(sess *session.Session) error {
		return sess.Machine.AnswerFollowUp(index, req.Answer)
	})
}

func (s *Server) handleNext(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) error {
		return sess.Machine.Next()
	})
}

func (s *Server) handlePrev(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) error {
		return sess.Machine.Prev()
	})
}

// withSession loads the session, applies the mutation and renders either the
// error or the updated session view.
func (s *Server) withSession(c *gin.Context, fn func(sess *session.Session) error) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if err := fn(sess); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

func (s *Server) handleSubmit(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	result, err := s.orchestrator.Submit(c.Request.Context(), sess)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"kind":   result.Kind,
		"result": result,
	})
}

func (s *Server) handleResults(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	result, err := s.sessions.TakeResult(sess.ID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	vm := results.Derive(result, sess.Machine.State())
	c.JSON(http.StatusOK, gin.H{
		"view":                 vm,
		"preferred_department": results.PreferredDepartment(result),
	})
}

func (s *Server) handleExtractSymptoms(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, domain.NewValidationError("text", "invalid extract payload"))
		return
	}
	extracted, err := s.backend.ExtractSymptoms(c.Request.Context(), req.Text)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, extracted)
}

func (s *Server) handleListSymptoms(c *gin.Context) {
	list, err := s.backend.ListSymptoms(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleListSymptomKeywords(c *gin.Context) {
	list, err := s.backend.ListSymptomKeywords(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetDepartment(c *gin.Context) {
	if s.departments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "preferences storage is unavailable"})
		return
	}
	department, err := s.departments.SelectedDepartment(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"department": department})
}

// handleSetDepartment writes the shared department slot and starts a fresh
// hospital-matching attempt for it.
func (s *Server) handleSetDepartment(c *gin.Context) {
	var req struct {
		Department string `json:"department" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, domain.NewValidationError("department", "department is required"))
		return
	}
	if s.departments != nil {
		if err := s.departments.SetSelectedDepartment(c.Request.Context(), req.Department); err != nil {
			s.renderError(c, err)
			return
		}
	}
	s.matcher.SetDepartment(c.Request.Context(), req.Department)
	c.JSON(http.StatusOK, s.matcher.Snapshot())
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history storage is unavailable"})
		return
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := s.history.History(c.Request.Context(), limit)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (s *Server) handleHospitals(c *gin.Context) {
	c.JSON(http.StatusOK, s.matcher.Snapshot())
}

// handleHospitalsRefresh starts a new matching attempt. Coordinates in the
// body pin the position for this attempt; denied=true simulates a refused
// permission prompt; an empty body falls back to the configured locator.
func (s *Server) handleHospitalsRefresh(c *gin.Context) {
	var req struct {
		Lat    *float64 `json:"lat"`
		Lng    *float64 `json:"lng"`
		Denied bool     `json:"denied"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.renderError(c, domain.NewValidationError("position", "invalid position payload"))
			return
		}
	}

	switch {
	case req.Denied:
		s.locator.Use(geo.DeniedLocator())
	case req.Lat != nil && req.Lng != nil:
		s.locator.Use(geo.FixedLocator(domain.Coordinates{Lat: *req.Lat, Lng: *req.Lng}))
	}

	s.matcher.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, s.matcher.Snapshot())
}

func (s *Server) handleHospitalFilters(c *gin.Context) {
	var req struct {
		Search        *string `json:"search"`
		EmergencyOnly *bool   `json:"emergency_only"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, domain.NewValidationError("filters", "invalid filters payload"))
		return
	}
	if req.Search != nil {
		s.matcher.SetSearch(*req.Search)
	}
	if req.EmergencyOnly != nil {
		s.matcher.SetEmergencyOnly(*req.EmergencyOnly)
	}
	c.JSON(http.StatusOK, s.matcher.Snapshot())
}

func (s *Server) handleClearHospitalFilters(c *gin.Context) {
	s.matcher.ClearFilters()
	c.JSON(http.StatusOK, s.matcher.Snapshot())
}

func (s *Server) handleFocusHospital(c *gin.Context) {
	if err := s.matcher.FocusHospital(c.Param("id")); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// renderError maps engine errors onto HTTP statuses with a single
// user-facing message field.
func (s *Server) renderError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var apiErr *domain.APIError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrNoAssessment):
		c.JSON(http.StatusNotFound, gin.H{"error": "no assessment available", "redirect": "intake"})
	case errors.Is(err, assessment.ErrAnalysisUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoResults):
		c.JSON(http.StatusOK, gin.H{"hospitals": []domain.HospitalRecord{}, "message": "no hospitals match the current filters"})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Message})
	default:
		s.logger.WithError(err).Error("unhandled gateway error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
