// Package session holds the ephemeral per-session state: the intake machine
// and the last assessment result. Sessions live in memory only and do not
// survive a restart, mirroring browser session storage.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/symptoguide-engine/internal/domain"
	"github.com/symptoguide-engine/internal/intake"
)

// Session is one intake-to-results journey.
type Session struct {
	ID        string
	Machine   *intake.Machine
	Result    *domain.AssessmentResult
	CreatedAt time.Time
}

// Store is the in-memory session registry.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *logrus.Logger
}

// NewStore creates an empty session store.
func NewStore(logger *logrus.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Create starts a new session with a fresh intake machine.
func (s *Store) Create() *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		Machine:   intake.NewMachine(s.logger),
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.WithField("session_id", sess.ID).Debug("Session created")
	return sess
}

// Get returns a session by id, or ErrNotFound.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

// SaveResult records the session's assessment result.
func (s *Store) SaveResult(id string, result *domain.AssessmentResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	sess.Result = result
	return nil
}

// TakeResult returns the session's assessment result and clears it: the
// results view consumes it exactly once, and navigating back to intake after
// a failed submission finds no stale result to render.
func (s *Store) TakeResult(id string) (*domain.AssessmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if sess.Result == nil {
		return nil, domain.ErrNoAssessment
	}
	result := sess.Result
	sess.Result = nil
	return result, nil
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
